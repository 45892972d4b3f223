// Package proto defines the wire envelopes exchanged over the gameplay
// UDP channel: inbound client commands and outbound broadcast deltas.
package proto

import "crossfire/server/internal/tick"

// InboundType discriminates the shape of an inbound datagram's payload.
type InboundType string

const (
	InboundMove          InboundType = "move"
	InboundShoot         InboundType = "shoot"
	InboundReload        InboundType = "reload"
	InboundSwitchWeapon  InboundType = "switch_weapon"
	InboundLeave         InboundType = "leave"
)

// Inbound is the envelope every client-to-server datagram is decoded into.
// LobbyCode and PlayerID route the command to the right lobby/actor; the
// remaining fields are populated depending on Type.
type Inbound struct {
	Type      InboundType `json:"type"`
	LobbyCode string      `json:"lobby_code"`
	PlayerID  string      `json:"player_id"`

	X        float64 `json:"x,omitempty"`
	Y        float64 `json:"y,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`

	WeaponID string `json:"weapon_id,omitempty"`
}

// OutboundType discriminates the shape of a server-to-client broadcast
// datagram.
type OutboundType string

const (
	// OutboundDelta carries a batch of field-level patches for one tick.
	OutboundDelta OutboundType = "delta"
)

// Outbound is the envelope every broadcast datagram is encoded from.
type Outbound struct {
	Type      OutboundType `json:"type"`
	LobbyCode string       `json:"lobby_code"`
	Tick      uint64       `json:"tick"`
	Patches   []tick.Patch `json:"patches"`
}
