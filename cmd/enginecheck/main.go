package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/park285/shake-chess/internal/chess"
	"github.com/park285/shake-chess/internal/remoteengine"
)

func main() {
	_ = godotenv.Load()

	url := flag.String("url", os.Getenv("REMOTE_ENGINE_URL"), "remote engine endpoint")
	fen := flag.String("fen", "", "position to query (default: start position)")
	depth := flag.Int("depth", 12, "search depth")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	pos, err := chess.PositionFromFEN(*fen)
	if err != nil {
		log.Fatalf("fen error: %v", err)
	}

	client := remoteengine.NewClient(*url,
		remoteengine.WithDepth(*depth),
		remoteengine.WithTimeout(*timeout),
	)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+time.Second)
	defer cancel()

	started := time.Now()
	resp, err := client.Query(ctx, pos.FEN())
	if err != nil {
		log.Fatalf("query error: %v", err)
	}
	mv, err := remoteengine.ParseBestMove(resp.BestMove)
	if err != nil {
		log.Fatalf("bestmove error: %v (raw=%q)", err, resp.BestMove)
	}

	legal := "legal"
	if !pos.IsLegal(mv) {
		legal = "ILLEGAL"
	}
	fmt.Printf("fen:      %s\n", pos.FEN())
	fmt.Printf("bestmove: %s (%s)\n", mv, legal)
	if resp.Evaluation != nil {
		fmt.Printf("eval:     %+.2f\n", *resp.Evaluation)
	}
	if resp.Mate != nil {
		fmt.Printf("mate:     %d\n", *resp.Mate)
	}
	if resp.Continuation != "" {
		fmt.Printf("line:     %s\n", resp.Continuation)
	}
	fmt.Printf("elapsed:  %s\n", time.Since(started).Round(time.Millisecond))
}
