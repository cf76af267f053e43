// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room and observer handlers.
// These give clients a more specific reason than the standard codes.
const (
	BadSubprotocolError   = 3000 // Client connected with an unsupported subprotocol.
	InvalidAuthTokenError = 3001 // Provided session token was invalid or expired.
	NotARoomMemberError   = 3002 // Token holder is not seated in the target room.
	InvalidRoomCodeError  = 3003 // Target room code in the WS URL does not exist.
)
