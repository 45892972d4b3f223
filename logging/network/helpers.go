package network

import (
	"context"

	"crossfire/server/logging"
)

const (
	// EventPacketDropped is emitted when an inbound datagram is discarded before reaching a lobby's command queue.
	EventPacketDropped logging.EventType = "network.packet_dropped"
	// EventCommandQueueFull is emitted when a lobby's command queue is saturated and a command is dropped.
	EventCommandQueueFull logging.EventType = "network.command_queue_full"
	// EventDatagramSent is emitted once per outbound broadcast datagram, for byte accounting.
	EventDatagramSent logging.EventType = "network.datagram_sent"
)

// DropReason enumerates why an inbound datagram never reached simulation.
type DropReason string

const (
	DropReasonMalformed    DropReason = "malformed"
	DropReasonUnknownLobby DropReason = "unknown_lobby"
	DropReasonQueueFull    DropReason = "queue_full"
)

// PacketDroppedPayload captures the reason and size of a discarded datagram.
type PacketDroppedPayload struct {
	Reason    DropReason `json:"reason"`
	Bytes     int        `json:"bytes"`
	LobbyCode string     `json:"lobbyCode,omitempty"`
}

// CommandQueueFullPayload captures which lobby rejected a command for lack of queue capacity.
type CommandQueueFullPayload struct {
	LobbyCode   string `json:"lobbyCode"`
	CommandKind string `json:"commandKind"`
}

// DatagramSentPayload captures the size of an outbound broadcast datagram.
type DatagramSentPayload struct {
	LobbyCode string `json:"lobbyCode"`
	Bytes     int    `json:"bytes"`
}

// PacketDropped publishes a warning when an inbound datagram is discarded.
func PacketDropped(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PacketDroppedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventPacketDropped,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// CommandQueueFull publishes a warning when a lobby's command queue drops a command under backpressure.
func CommandQueueFull(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload CommandQueueFullPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCommandQueueFull,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}

// DatagramSent publishes a debug event for outbound broadcast byte accounting.
func DatagramSent(ctx context.Context, pub logging.Publisher, tick uint64, payload DatagramSentPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventDatagramSent,
		Tick:     tick,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNetwork,
		Payload:  payload,
		Extra:    extra,
	})
}
