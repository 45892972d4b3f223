package supervisor

import (
	"net"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"crossfire/server/internal/broadcast"
	"crossfire/server/internal/ingress"
	"crossfire/server/internal/lobby"
	"crossfire/server/internal/metrics"
	"crossfire/server/internal/registry"
	"crossfire/server/internal/scene"
	"crossfire/server/internal/tick"
	"crossfire/server/internal/weapon"
	"crossfire/server/logging"
)

type discardSender struct{}

func (discardSender) WriteTo(b []byte, addr net.Addr) (int, error) { return len(b), nil }

func newTestSupervisor(t *testing.T) *Supervisor {
	t.Helper()
	weapons, err := weapon.LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	scenes, err := scene.LoadDefault()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg := registry.New(4)
	m := metrics.New()
	ingressRouter := ingress.New(reg, logging.NopPublisher{}, m)
	bc := broadcast.New(discardSender{}, logging.NopPublisher{}, m)

	cfg := Config{
		TickRate:        50,
		CommandCapacity: 32,
		PerActorLimit:   8,
		WarningStep:     16,
		CatchupMaxTicks: 5,
		InactiveTimeout: time.Minute,
	}
	return New(cfg, reg, weapons, scenes, logging.NopPublisher{}, m, ingressRouter, bc)
}

func TestCreateLobbyRejectsUnknownScene(t *testing.T) {
	sup := newTestSupervisor(t)
	if err := sup.CreateLobby("AAAA", 8, "nonexistent-scene"); err != ErrUnknownScene {
		t.Fatalf("expected ErrUnknownScene, got %v", err)
	}
}

func TestCreateLobbyRejectsDuplicateCode(t *testing.T) {
	sup := newTestSupervisor(t)
	defer sup.RemoveLobby("AAAA", "test cleanup")

	if err := sup.CreateLobby("AAAA", 8, "warehouse"); err != nil {
		t.Fatalf("unexpected error on first create: %v", err)
	}
	if err := sup.CreateLobby("AAAA", 8, "warehouse"); err != ErrLobbyExists {
		t.Fatalf("expected ErrLobbyExists, got %v", err)
	}
}

func TestJoinLobbyAddsPlayerAndListLobbiesReportsCode(t *testing.T) {
	sup := newTestSupervisor(t)
	defer sup.RemoveLobby("BBBB", "test cleanup")

	if err := sup.CreateLobby("BBBB", 8, "warehouse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	playerID, snap, err := sup.JoinLobby("BBBB", "Alice")
	if err != nil {
		t.Fatalf("unexpected error joining: %v", err)
	}
	if playerID == "" {
		t.Fatalf("expected a non-empty player id")
	}
	if snap.Name != "Alice" {
		t.Fatalf("expected snapshot name Alice, got %q", snap.Name)
	}

	codes := sup.ListLobbies()
	found := false
	for _, c := range codes {
		if c == "BBBB" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected ListLobbies to include BBBB, got %v", codes)
	}

	players, ok := sup.GetLobby("BBBB")
	if !ok || len(players) != 1 {
		t.Fatalf("expected 1 player in lobby, got %+v ok=%v", players, ok)
	}
}

func TestPlayersActiveGaugeTracksJoinAndLeave(t *testing.T) {
	sup := newTestSupervisor(t)
	defer sup.RemoveLobby("DDDD", "test cleanup")

	if err := sup.CreateLobby("DDDD", 8, "warehouse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	playerID, _, err := sup.JoinLobby("DDDD", "Alice")
	if err != nil {
		t.Fatalf("unexpected error joining: %v", err)
	}
	if got := testutil.ToFloat64(sup.metrics.PlayersActive); got != 1 {
		t.Fatalf("expected PlayersActive to read 1 after a join, got %v", got)
	}

	handle, ok := sup.registry.Get("DDDD")
	if !ok {
		t.Fatalf("expected lobby DDDD to be registered")
	}
	handle.Loop.Enqueue(tick.Command{ActorID: playerID, Type: lobby.CommandLeave, Payload: lobby.LeavePayload{}})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && testutil.ToFloat64(sup.metrics.PlayersActive) != 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if got := testutil.ToFloat64(sup.metrics.PlayersActive); got != 0 {
		t.Fatalf("expected PlayersActive to read 0 after the player left, got %v", got)
	}
}

func TestJoinLobbyRejectsUnknownCode(t *testing.T) {
	sup := newTestSupervisor(t)
	if _, _, err := sup.JoinLobby("NOPE", "Alice"); err == nil {
		t.Fatalf("expected error joining unknown lobby")
	}
}

func TestRemoveLobbyMakesItUnreachable(t *testing.T) {
	sup := newTestSupervisor(t)
	if err := sup.CreateLobby("CCCC", 8, "warehouse"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sup.RemoveLobby("CCCC", "manual")

	if _, ok := sup.GetLobby("CCCC"); ok {
		t.Fatalf("expected removed lobby to be unreachable")
	}
	if _, _, err := sup.JoinLobby("CCCC", "Alice"); err == nil {
		t.Fatalf("expected join against removed lobby to fail")
	}
}
