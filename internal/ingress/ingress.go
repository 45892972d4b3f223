// Package ingress decodes inbound gameplay datagrams, routes them to the
// addressed lobby, and stages them on that lobby's command queue without
// blocking the UDP receive loop.
package ingress

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"time"

	"crossfire/server/internal/broadcast"
	"crossfire/server/internal/lobby"
	"crossfire/server/internal/metrics"
	"crossfire/server/internal/proto"
	"crossfire/server/internal/registry"
	"crossfire/server/internal/tick"
	"crossfire/server/logging"
	networklog "crossfire/server/logging/network"
)

// Router decodes and dispatches inbound datagrams. It also tracks each
// player's last-known remote address so the broadcast layer knows where to
// send outbound deltas; the gameplay protocol has no separate handshake
// for this, so it's learned from whichever datagram a player last sent.
type Router struct {
	registry  *registry.Registry
	publisher logging.Publisher
	metrics   *metrics.Metrics

	mu        sync.RWMutex
	addresses map[string]map[string]*net.UDPAddr // lobbyCode -> playerID -> addr
}

// New constructs a Router dispatching against the given lobby registry. m
// may be nil, in which case datagram/byte counters are skipped.
func New(reg *registry.Registry, publisher logging.Publisher, m *metrics.Metrics) *Router {
	return &Router{
		registry:  reg,
		publisher: publisher,
		metrics:   m,
		addresses: make(map[string]map[string]*net.UDPAddr),
	}
}

// HandlePacket decodes and routes one inbound datagram. It never blocks:
// a full command queue or an unroutable packet is logged and dropped.
func (r *Router) HandlePacket(addr *net.UDPAddr, payload []byte) {
	if r.metrics != nil {
		r.metrics.DatagramsIn.Inc()
		r.metrics.BytesIn.Add(float64(len(payload)))
	}

	var msg proto.Inbound
	if err := json.Unmarshal(payload, &msg); err != nil {
		r.dropped(networklog.DropReasonMalformed)
		networklog.PacketDropped(context.Background(), r.publisher, 0, logging.EntityRef{},
			networklog.PacketDroppedPayload{Reason: networklog.DropReasonMalformed, Bytes: len(payload)}, nil)
		return
	}
	if msg.LobbyCode == "" || msg.PlayerID == "" {
		r.dropped(networklog.DropReasonMalformed)
		networklog.PacketDropped(context.Background(), r.publisher, 0, logging.EntityRef{ID: msg.PlayerID, Kind: "player"},
			networklog.PacketDroppedPayload{Reason: networklog.DropReasonMalformed, Bytes: len(payload), LobbyCode: msg.LobbyCode}, nil)
		return
	}

	handle, ok := r.registry.Get(msg.LobbyCode)
	if !ok {
		r.dropped(networklog.DropReasonUnknownLobby)
		networklog.PacketDropped(context.Background(), r.publisher, 0, logging.EntityRef{ID: msg.PlayerID, Kind: "player"},
			networklog.PacketDroppedPayload{Reason: networklog.DropReasonUnknownLobby, Bytes: len(payload), LobbyCode: msg.LobbyCode}, nil)
		return
	}

	r.trackAddress(msg.LobbyCode, msg.PlayerID, addr)

	cmd, ok := toCommand(msg)
	if !ok {
		r.dropped(networklog.DropReasonMalformed)
		networklog.PacketDropped(context.Background(), r.publisher, 0, logging.EntityRef{ID: msg.PlayerID, Kind: "player"},
			networklog.PacketDroppedPayload{Reason: networklog.DropReasonMalformed, Bytes: len(payload), LobbyCode: msg.LobbyCode}, nil)
		return
	}

	if ok, reason := handle.Loop.Enqueue(cmd); !ok {
		r.dropped(networklog.DropReasonQueueFull)
		networklog.CommandQueueFull(context.Background(), r.publisher, 0, logging.EntityRef{ID: msg.PlayerID, Kind: "player"},
			networklog.CommandQueueFullPayload{LobbyCode: msg.LobbyCode, CommandKind: cmd.Type}, map[string]any{"reject_reason": reason})
	}
}

func (r *Router) dropped(reason networklog.DropReason) {
	if r.metrics != nil {
		r.metrics.CommandsDropped.WithLabelValues(string(reason)).Inc()
	}
}

func toCommand(msg proto.Inbound) (tick.Command, bool) {
	base := tick.Command{ActorID: msg.PlayerID, EnqueuedAt: time.Now()}
	switch msg.Type {
	case proto.InboundMove:
		base.Type = lobby.CommandMove
		base.Payload = lobby.MovePayload{X: msg.X, Y: msg.Y, Rotation: msg.Rotation}
	case proto.InboundShoot:
		base.Type = lobby.CommandShoot
		base.Payload = lobby.ShootPayload{}
	case proto.InboundReload:
		base.Type = lobby.CommandReload
		base.Payload = lobby.ReloadPayload{}
	case proto.InboundSwitchWeapon:
		base.Type = lobby.CommandSwitchWeapon
		base.Payload = lobby.SwitchWeaponPayload{WeaponID: msg.WeaponID}
	case proto.InboundLeave:
		base.Type = lobby.CommandLeave
		base.Payload = lobby.LeavePayload{}
	default:
		return tick.Command{}, false
	}
	return base, true
}

func (r *Router) trackAddress(lobbyCode, playerID string, addr *net.UDPAddr) {
	r.mu.Lock()
	defer r.mu.Unlock()
	book, ok := r.addresses[lobbyCode]
	if !ok {
		book = make(map[string]*net.UDPAddr)
		r.addresses[lobbyCode] = book
	}
	book[playerID] = addr
}

// Recipients returns the known remote addresses for a lobby, for the
// broadcast layer to fan outbound deltas out to.
func (r *Router) Recipients(lobbyCode string) []broadcast.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()
	book := r.addresses[lobbyCode]
	if len(book) == 0 {
		return nil
	}
	out := make([]broadcast.Recipient, 0, len(book))
	for playerID, addr := range book {
		out = append(out, broadcast.Recipient{PlayerID: playerID, Addr: addr})
	}
	return out
}

// Forget drops tracked address state for a removed lobby.
func (r *Router) Forget(lobbyCode string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.addresses, lobbyCode)
}
