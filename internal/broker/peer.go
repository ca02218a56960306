package broker

import (
	"bufio"
	"log"
	"net"
	"sync"

	"github.com/hailam/simulgo/internal/protocol"
)

// Peer is anything the broker can relay engine events to and accept
// SUBMIT_MOVE/RESIGN/CHAT frames from. The broker does not care whether a
// Peer is a real network connection or an in-process loopback.
type Peer interface {
	Deliver(protocol.Message)
	Inbound() <-chan protocol.Message
}

const inboundBuffer = 16

// LoopbackParticipant is an in-process peer: a pair of queues with the same
// semantics as a network connection, used so a host's own UI or an AI move
// producer can sit on the other side of a game without opening a real
// connection. Outbound messages produced before a listener attaches are
// buffered and flushed on attach, so nothing sent immediately at game start
// is dropped while a renderer is still wiring itself up.
type LoopbackParticipant struct {
	mu       sync.Mutex
	listener func(protocol.Message)
	buffered []protocol.Message

	inbound chan protocol.Message
}

// NewLoopbackParticipant creates an unattached loopback peer.
func NewLoopbackParticipant() *LoopbackParticipant {
	return &LoopbackParticipant{inbound: make(chan protocol.Message, inboundBuffer)}
}

// Listen registers cb as the receiver for every message the broker delivers
// to this participant, flushing anything buffered since construction.
func (p *LoopbackParticipant) Listen(cb func(protocol.Message)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listener = cb
	for _, m := range p.buffered {
		cb(m)
	}
	p.buffered = nil
}

// Deliver implements Peer: broker -> participant.
func (p *LoopbackParticipant) Deliver(m protocol.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener != nil {
		p.listener(m)
		return
	}
	p.buffered = append(p.buffered, m)
}

// Inbound implements Peer.
func (p *LoopbackParticipant) Inbound() <-chan protocol.Message {
	return p.inbound
}

// Submit is called by the local consumer (UI/AI) to send a frame to the
// broker, e.g. a SUBMIT_MOVE or RESIGN.
func (p *LoopbackParticipant) Submit(m protocol.Message) {
	p.inbound <- m
}

// NetPeer adapts a net.Conn to Peer using a newline-delimited JSON-line
// protocol: one frame per newline-terminated JSON object, in the spirit of
// the teacher's UCI handler's bufio.Scanner-over-stdin loop, generalized to
// a bufio.Scanner over a live connection.
type NetPeer struct {
	conn    net.Conn
	inbound chan protocol.Message

	writeMu sync.Mutex
}

// NewNetPeer wraps conn and starts its read pump. Call Close when the peer
// disconnects.
func NewNetPeer(conn net.Conn) *NetPeer {
	p := &NetPeer{conn: conn, inbound: make(chan protocol.Message, inboundBuffer)}
	go p.readLoop()
	return p
}

func (p *NetPeer) readLoop() {
	defer close(p.inbound)
	scanner := bufio.NewScanner(p.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		msg, err := protocol.Decode(line)
		if err != nil {
			log.Printf("[Broker] malformed frame from peer: %v", err)
			continue
		}
		p.inbound <- msg
	}
	if err := scanner.Err(); err != nil {
		log.Printf("[Broker] peer read error: %v", err)
	}
}

// Deliver writes one JSON line to the connection. Writes are serialized
// since net.Conn.Write is not safe for concurrent callers.
func (p *NetPeer) Deliver(m protocol.Message) {
	data, err := protocol.Encode(m)
	if err != nil {
		log.Printf("[Broker] failed to encode %s: %v", m.Type, err)
		return
	}
	data = append(data, '\n')

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if _, err := p.conn.Write(data); err != nil {
		log.Printf("[Broker] failed to write to peer: %v", err)
	}
}

// Inbound implements Peer.
func (p *NetPeer) Inbound() <-chan protocol.Message {
	return p.inbound
}

// Close closes the underlying connection.
func (p *NetPeer) Close() error {
	return p.conn.Close()
}
