package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/park285/shake-chess/internal/observer"
	"github.com/park285/shake-chess/pkg/sessiondto"
)

func main() {
	_ = godotenv.Load()

	url := flag.String("url", envDefault("SHAKE_WS_URL", "ws://localhost:8080/ws/"), "session websocket URL")
	attempts := flag.Int("attempts", 5, "consecutive reconnect attempts before giving up (0 = forever)")
	restart := flag.Bool("restart", false, "request a new game once connected")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var w *observer.Watcher
	w = observer.NewWatcher(*url,
		observer.WithMaxAttempts(*attempts),
		observer.OnState(func(s observer.WatcherState) {
			log.Printf("watch state: %s", s)
			if s == observer.WatcherConnected && *restart {
				*restart = false
				go func() {
					if err := w.Send(ctx, sessiondto.Command{Type: sessiondto.CommandRestart}); err != nil {
						log.Printf("restart request failed: %v", err)
					}
				}()
			}
		}),
		observer.OnEvent(func(ev observer.EventPayload) {
			if ev.Error != "" {
				log.Printf("%s %s: %s", ev.Event, ev.Side, ev.Error)
			}
		}),
		observer.OnSnapshot(printSnapshot),
	)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("watch error: %v", err)
	}
}

func printSnapshot(s sessiondto.Snapshot) {
	last := s.LastMove
	if last == "" {
		last = "-"
	}
	status := s.Headline
	if s.Detail != "" {
		status += " (" + s.Detail + ")"
	}
	if s.RemotePending {
		status += " [engine thinking]"
	}
	fmt.Printf("[%s] ply=%d last=%s material=%d/%d %s\n",
		s.Mode, s.Ply, last, s.Material.White, s.Material.Black, strings.TrimSpace(status))
	if s.PGN != "" {
		fmt.Println(s.PGN)
	}
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}
