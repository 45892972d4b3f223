package tick

import "testing"

type fakeTelemetry struct {
	adds   map[string]uint64
	stores map[string]uint64
}

func newFakeTelemetry() *fakeTelemetry {
	return &fakeTelemetry{adds: make(map[string]uint64), stores: make(map[string]uint64)}
}

func (f *fakeTelemetry) Add(key string, delta uint64)   { f.adds[key] += delta }
func (f *fakeTelemetry) Store(key string, value uint64) { f.stores[key] = value }

func TestCommandBufferPushDrainOrder(t *testing.T) {
	buf := NewCommandBuffer(4, nil)

	for i := 0; i < 3; i++ {
		if !buf.Push(Command{ID: uint64(i)}) {
			t.Fatalf("expected push %d to succeed", i)
		}
	}
	if buf.Len() != 3 {
		t.Fatalf("expected len 3, got %d", buf.Len())
	}

	drained := buf.Drain()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained commands, got %d", len(drained))
	}
	for i, cmd := range drained {
		if cmd.ID != uint64(i) {
			t.Fatalf("expected FIFO order, got id %d at index %d", cmd.ID, i)
		}
	}
	if buf.Len() != 0 {
		t.Fatalf("expected buffer empty after drain, got %d", buf.Len())
	}
}

func TestCommandBufferRejectsWhenFull(t *testing.T) {
	telemetry := newFakeTelemetry()
	buf := NewCommandBuffer(2, telemetry)

	if !buf.Push(Command{ID: 1}) {
		t.Fatalf("expected first push to succeed")
	}
	if !buf.Push(Command{ID: 2}) {
		t.Fatalf("expected second push to succeed")
	}
	if buf.Push(Command{ID: 3}) {
		t.Fatalf("expected push to a full buffer to fail")
	}
	if telemetry.adds[commandBufferOverflowMetricKey] != 1 {
		t.Fatalf("expected overflow counter to be 1, got %d", telemetry.adds[commandBufferOverflowMetricKey])
	}
}

func TestCommandBufferReportsOccupancy(t *testing.T) {
	telemetry := newFakeTelemetry()
	buf := NewCommandBuffer(4, telemetry)

	buf.Push(Command{ID: 1})
	buf.Push(Command{ID: 2})

	if got := telemetry.stores[commandBufferOccupancyMetricKey]; got != 2 {
		t.Fatalf("expected occupancy 2, got %d", got)
	}

	buf.Drain()
	if got := telemetry.stores[commandBufferOccupancyMetricKey]; got != 0 {
		t.Fatalf("expected occupancy 0 after drain, got %d", got)
	}
}

func TestCommandBufferWrapsRingIndices(t *testing.T) {
	buf := NewCommandBuffer(3, nil)

	buf.Push(Command{ID: 1})
	buf.Push(Command{ID: 2})
	buf.Drain()

	buf.Push(Command{ID: 3})
	buf.Push(Command{ID: 4})
	buf.Push(Command{ID: 5})

	drained := buf.Drain()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained commands after wraparound, got %d", len(drained))
	}
	for i, want := range []uint64{3, 4, 5} {
		if drained[i].ID != want {
			t.Fatalf("expected id %d at index %d, got %d", want, i, drained[i].ID)
		}
	}
}

func TestCommandBufferNilIsSafe(t *testing.T) {
	var buf *CommandBuffer
	if buf.Push(Command{}) {
		t.Fatalf("expected push on nil buffer to fail")
	}
	if buf.Len() != 0 {
		t.Fatalf("expected len 0 on nil buffer")
	}
	if buf.Drain() != nil {
		t.Fatalf("expected drain on nil buffer to return nil")
	}
}
