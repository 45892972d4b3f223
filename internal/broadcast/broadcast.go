// Package broadcast encodes a lobby tick's patch batch into an outbound
// datagram and fans it out to every connected player's remote address.
package broadcast

import (
	"bytes"
	"encoding/json"
	"net"
	"sync"

	"crossfire/server/internal/metrics"
	"crossfire/server/internal/proto"
	"crossfire/server/internal/tick"
	"crossfire/server/logging"
	networklog "crossfire/server/logging/network"
)

// Sender is the subset of net.PacketConn the broadcaster needs, narrowed
// so it can be faked in tests without a real socket.
type Sender interface {
	WriteTo(b []byte, addr net.Addr) (int, error)
}

// Broadcaster encodes and sends per-tick delta datagrams. It keeps a pool
// of scratch buffers so a busy lobby's tick loop doesn't allocate a fresh
// buffer per recipient per tick.
type Broadcaster struct {
	sender    Sender
	publisher logging.Publisher
	metrics   *metrics.Metrics
	pool      sync.Pool
}

// New constructs a Broadcaster writing through the given Sender. m may be
// nil, in which case datagram/byte counters are skipped.
func New(sender Sender, publisher logging.Publisher, m *metrics.Metrics) *Broadcaster {
	return &Broadcaster{
		sender:    sender,
		publisher: publisher,
		metrics:   m,
		pool: sync.Pool{
			New: func() any {
				return bytes.NewBuffer(make([]byte, 0, 1024))
			},
		},
	}
}

// Recipient pairs a player id with its last-known remote address.
type Recipient struct {
	PlayerID string
	Addr     *net.UDPAddr
}

// Broadcast encodes one delta envelope and writes it to every recipient.
// The same bytes are reused for every recipient in the lobby: nothing in
// this protocol is currently per-recipient-shaped, but the buffer itself
// is pooled so repeated ticks don't re-allocate.
func (b *Broadcaster) Broadcast(lobbyCode string, tickNum uint64, patches []tick.Patch, recipients []Recipient) error {
	if len(patches) == 0 || len(recipients) == 0 {
		return nil
	}

	buf := b.pool.Get().(*bytes.Buffer)
	buf.Reset()
	defer b.pool.Put(buf)

	envelope := proto.Outbound{
		Type:      proto.OutboundDelta,
		LobbyCode: lobbyCode,
		Tick:      tickNum,
		Patches:   patches,
	}
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(envelope); err != nil {
		return err
	}
	payload := buf.Bytes()

	for _, recipient := range recipients {
		if recipient.Addr == nil {
			continue
		}
		if _, err := b.sender.WriteTo(payload, recipient.Addr); err != nil {
			networklog.PacketDropped(nil, b.publisher, tickNum,
				logging.EntityRef{ID: recipient.PlayerID, Kind: "player"},
				networklog.PacketDroppedPayload{Reason: networklog.DropReasonMalformed, Bytes: len(payload), LobbyCode: lobbyCode}, nil)
			continue
		}
		networklog.DatagramSent(nil, b.publisher, tickNum,
			networklog.DatagramSentPayload{LobbyCode: lobbyCode, Bytes: len(payload)}, nil)
		if b.metrics != nil {
			b.metrics.DatagramsOut.Inc()
			b.metrics.BytesOut.Add(float64(len(payload)))
		}
	}
	return nil
}
