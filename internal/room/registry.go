// internal/room/registry.go
package room

import (
	"math/rand"
	"sync"
	"time"

	"github.com/stax-cards/stax/internal/models"
)

// Room code alphabet omits easily-confused characters (0/O, 1/I).
const (
	codeLength = 6
	codeChars  = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Registry owns room existence. It is the only long-lived handle to the
// room collection; the engine and session router receive rooms from it
// rather than sharing a package-level map.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rnd   *rand.Rand
}

// NewRegistry returns an empty in-memory registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
		rnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create allocates a fresh room code and builds a Waiting room whose single
// member is also the host.
func (reg *Registry) Create(name, avatar string) (*Room, *models.Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.newCode()
	r := newRoom(code)
	p, _ := r.AddPlayer(name, avatar) // a fresh Waiting room cannot reject
	reg.rooms[code] = r
	return r, p
}

// Get retrieves a room by code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// Delete destroys a room. Called once the member set becomes empty; a room
// with zero members does not exist.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, code)
}

// Rooms returns a snapshot of the current room handles, for listing.
func (reg *Registry) Rooms() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	out := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		out = append(out, r)
	}
	return out
}

// newCode draws codes until one is unused. Assumes registry lock is held.
func (reg *Registry) newCode() string {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			buf[i] = codeChars[reg.rnd.Intn(len(codeChars))]
		}
		code := string(buf)
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}
