// Command simulgo-server listens for two TCP peers per game and relays a
// simultaneous-move Go match between them via internal/broker.
package main

import (
	"flag"
	"log"
	"net"

	"github.com/hailam/simulgo/internal/broker"
	"github.com/hailam/simulgo/internal/engine"
	"github.com/hailam/simulgo/internal/gamestore"
)

var (
	addr      = flag.String("addr", ":7755", "address to listen on")
	boardSize = flag.Int("boardsize", 19, "board side length")
	baseTime  = flag.Int64("basetime", 10*60*1000, "base time per player, in milliseconds")
	dataDir   = flag.String("datadir", "", "directory for the game archive database (default: OS data dir)")
)

func main() {
	flag.Parse()

	dir := *dataDir
	if dir == "" {
		var err error
		dir, err = gamestore.DatabaseDir()
		if err != nil {
			log.Fatalf("[Server] could not resolve data dir: %v", err)
		}
	}

	store, err := gamestore.Open(dir)
	if err != nil {
		log.Fatalf("[Server] could not open game store at %s: %v", dir, err)
	}
	defer store.Close()

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		log.Fatalf("[Server] could not listen on %s: %v", *addr, err)
	}
	defer ln.Close()
	log.Printf("[Server] listening on %s (boardsize=%d basetime=%dms)", *addr, *boardSize, *baseTime)

	settings := engine.Settings{
		Mode:       engine.ModeHumanVsHuman,
		BoardSize:  *boardSize,
		BaseTimeMs: *baseTime,
	}

	for {
		session := broker.NewSession(settings, store)
		if err := acceptPair(ln, session); err != nil {
			log.Printf("[Server] session setup failed: %v", err)
			continue
		}
		log.Printf("[Server] both peers joined, game underway")
	}
}

// acceptPair blocks until two peers have joined session, one connection
// each, matching the broker's own "up to two JOINs" contract. Pairs are
// accepted one after another; main does not wait for a session's game to
// end before accepting the next pair, so several games can be in progress
// at once on one listener.
func acceptPair(ln net.Listener, session *broker.Session) error {
	for i := 0; i < 2; i++ {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		peer := broker.NewNetPeer(conn)
		if _, err := session.Join(peer); err != nil {
			log.Printf("[Server] join rejected: %v", err)
			conn.Close()
			i--
			continue
		}
	}
	return nil
}
