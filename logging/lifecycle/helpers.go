package lifecycle

import (
	"context"

	"crossfire/server/logging"
)

const (
	// EventLobbyCreated is emitted when the supervisor spins up a new lobby.
	EventLobbyCreated logging.EventType = "lifecycle.lobby_created"
	// EventLobbyRemoved is emitted when a lobby's tick loop stops and it's evicted from the registry.
	EventLobbyRemoved logging.EventType = "lifecycle.lobby_removed"
	// EventPlayerJoined is emitted when a player joins a lobby.
	EventPlayerJoined logging.EventType = "lifecycle.player_joined"
	// EventPlayerLeft is emitted when a player leaves voluntarily.
	EventPlayerLeft logging.EventType = "lifecycle.player_left"
	// EventPlayerEvicted is emitted when a player is dropped for inactivity.
	EventPlayerEvicted logging.EventType = "lifecycle.player_evicted"
)

// LobbyCreatedPayload captures the scene and capacity of a newly created lobby.
type LobbyCreatedPayload struct {
	LobbyCode  string `json:"lobbyCode"`
	SceneID    string `json:"sceneId"`
	MaxPlayers int    `json:"maxPlayers"`
}

// LobbyRemovedPayload captures why a lobby was torn down.
type LobbyRemovedPayload struct {
	LobbyCode string `json:"lobbyCode"`
	Reason    string `json:"reason"`
}

// PlayerJoinedPayload captures spawn metadata for a new player.
type PlayerJoinedPayload struct {
	LobbyCode string  `json:"lobbyCode"`
	SpawnX    float64 `json:"spawnX"`
	SpawnY    float64 `json:"spawnY"`
}

// PlayerLeftPayload captures the lobby a player departed.
type PlayerLeftPayload struct {
	LobbyCode string `json:"lobbyCode"`
}

// PlayerEvictedPayload captures the inactivity window that triggered an eviction.
type PlayerEvictedPayload struct {
	LobbyCode    string `json:"lobbyCode"`
	IdleDuration int64  `json:"idleDurationMs"`
}

// LobbyCreated publishes a lobby-created event.
func LobbyCreated(ctx context.Context, pub logging.Publisher, tick uint64, payload LobbyCreatedPayload, extra map[string]any) {
	publish(ctx, pub, EventLobbyCreated, tick, logging.EntityRef{}, payload, extra)
}

// LobbyRemoved publishes a lobby-removed event.
func LobbyRemoved(ctx context.Context, pub logging.Publisher, tick uint64, payload LobbyRemovedPayload, extra map[string]any) {
	publish(ctx, pub, EventLobbyRemoved, tick, logging.EntityRef{}, payload, extra)
}

// PlayerJoined publishes a player join event.
func PlayerJoined(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerJoinedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerJoined, tick, actor, payload, extra)
}

// PlayerLeft publishes a voluntary player departure event.
func PlayerLeft(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerLeftPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerLeft, tick, actor, payload, extra)
}

// PlayerEvicted publishes an inactivity eviction event.
func PlayerEvicted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload PlayerEvictedPayload, extra map[string]any) {
	publish(ctx, pub, EventPlayerEvicted, tick, actor, payload, extra)
}

func publish(ctx context.Context, pub logging.Publisher, typ logging.EventType, tick uint64, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     typ,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryLifecycle,
		Payload:  payload,
		Extra:    extra,
	})
}
