// Package udp binds the gameplay datagram socket and runs its non-blocking
// receive loop. The gameplay channel is intentionally unreliable and
// unordered: a dropped or reordered datagram is simply a stale or missing
// input, never retried at this layer.
package udp

import (
	"context"
	"fmt"
	"net"
)

// PacketHandler processes one inbound datagram. Implementations must not
// block the receive loop; route-and-enqueue work should hand off to a
// lobby's own command queue and return immediately.
type PacketHandler func(addr *net.UDPAddr, payload []byte)

// Listener owns the bound UDP socket for the gameplay channel.
type Listener struct {
	conn *net.UDPConn
}

// Bind opens a UDP socket on the given address (host:port, or ":port" for
// all interfaces).
func Bind(bindAddr string) (*Listener, error) {
	addr, err := net.ResolveUDPAddr("udp", bindAddr)
	if err != nil {
		return nil, fmt.Errorf("udp: resolve %s: %w", bindAddr, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("udp: listen %s: %w", bindAddr, err)
	}
	return &Listener{conn: conn}, nil
}

// Conn exposes the underlying socket, used by the broadcast layer as its
// Sender and by tests that need a raw handle.
func (l *Listener) Conn() *net.UDPConn {
	return l.conn
}

// Close releases the bound socket.
func (l *Listener) Close() error {
	return l.conn.Close()
}

// Run reads datagrams until ctx is cancelled, invoking handler for each one
// on the calling goroutine. Handler must return quickly: the receive loop
// does not fan datagrams out to worker goroutines, so a slow handler stalls
// every lobby's ingress.
func (l *Listener) Run(ctx context.Context, handler PacketHandler) error {
	buf := make([]byte, 65536)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		n, addr, err := l.conn.ReadFromUDP(buf)
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			return fmt.Errorf("udp: read: %w", err)
		}
		payload := make([]byte, n)
		copy(payload, buf[:n])
		handler(addr, payload)
	}
}
