package main

import (
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campusmart/internal/config"
	"campusmart/internal/http/handlers"
	applog "campusmart/internal/log"
	"campusmart/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	backend, closeBackend, err := repos.OpenBackend(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeBackend()

	stores, err := repos.Open(backend)
	if err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(stores, cfg)
	app := handlers.NewApp(deps, handlers.AppOptions{AccessLog: true, CSRF: true})

	// Abandoned carts hold stock until cleared; release them when a TTL is set.
	stopReaper := make(chan struct{})
	if cfg.CartTTL > 0 {
		go reapCarts(deps, cfg.CartTTL, stopReaper)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[shutdown] stopping server")

	close(stopReaper)
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("[shutdown] %v", err)
	}
}

func reapCarts(deps *handlers.Deps, ttl time.Duration, stop <-chan struct{}) {
	every := ttl / 4
	if every < time.Minute {
		every = time.Minute
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			n, err := deps.Carts.ReleaseStale(ttl)
			if err != nil {
				applog.Error(nil, "cart.reap.fail", err, map[string]any{"released": n})
			} else if n > 0 {
				applog.Info(nil, "cart.reap", map[string]any{"released": n})
			}
		}
	}
}
