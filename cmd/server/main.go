// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/stax-cards/stax/internal/auth"
	"github.com/stax-cards/stax/internal/cache"
	"github.com/stax-cards/stax/internal/database"
	"github.com/stax-cards/stax/internal/handlers"
	"github.com/stax-cards/stax/internal/middleware"
)

func main() {
	logger := logrus.New()
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if err := auth.Init(); err != nil {
		logger.Fatalf("auth init failed: %v", err)
	}

	if err := cache.ConnectRedis(); err != nil {
		logger.Warnf("action history disabled: %v", err)
	}
	ctx := context.Background()
	if err := database.Connect(ctx); err != nil {
		logger.Warnf("match history disabled: %v", err)
	}
	defer database.Close()

	srv, err := handlers.NewServer(logger)
	if err != nil {
		logger.Fatalf("server init failed: %v", err)
	}

	logged := middleware.LogMiddleware(logger)

	mux := http.NewServeMux()
	mux.Handle("/room/create", logged(handlers.CreateRoomHandler(srv)))
	mux.Handle("/room/join", logged(handlers.JoinRoomHandler(srv)))
	mux.Handle("/room/list", logged(handlers.ListRoomsHandler(srv)))
	mux.Handle("/room/ws/", logged(handlers.RoomWSHandler(logger, srv)))
	mux.Handle("/room/observe/", logged(handlers.ObserveWSHandler(logger, srv)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	httpServer := &http.Server{Addr: addr, Handler: mux}

	errc := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", addr)
		errc <- httpServer.ListenAndServe()
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		logger.Errorf("server exited: %v", err)
	case sig := <-sigs:
		logger.Infof("terminating: %v", sig)
		_ = httpServer.Shutdown(ctx)
	}
}
