package broadcast

import (
	"net"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"crossfire/server/internal/metrics"
	"crossfire/server/internal/tick"
	"crossfire/server/logging"
)

type fakeSender struct {
	sent []sentDatagram
	fail map[string]bool
}

type sentDatagram struct {
	payload []byte
	addr    net.Addr
}

func (f *fakeSender) WriteTo(b []byte, addr net.Addr) (int, error) {
	if f.fail[addr.String()] {
		return 0, &net.AddrError{Err: "refused", Addr: addr.String()}
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sent = append(f.sent, sentDatagram{payload: cp, addr: addr})
	return len(b), nil
}

func TestBroadcastSkipsWhenNoPatchesOrRecipients(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, logging.NopPublisher{}, nil)

	if err := b.Broadcast("AAAA", 1, nil, []Recipient{{Addr: &net.UDPAddr{Port: 1}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no datagrams sent with empty patches")
	}

	patches := []tick.Patch{{Kind: tick.PatchPlayerPos, PlayerID: "p1"}}
	if err := b.Broadcast("AAAA", 1, patches, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected no datagrams sent with no recipients")
	}
}

func TestBroadcastSendsSameBytesToEveryRecipient(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, logging.NopPublisher{}, nil)

	patches := []tick.Patch{{Kind: tick.PatchPlayerPos, PlayerID: "p1", Payload: tick.PositionPayload{X: 1, Y: 2}}}
	recipients := []Recipient{
		{PlayerID: "p1", Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1111}},
		{PlayerID: "p2", Addr: &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2222}},
	}

	if err := b.Broadcast("AAAA", 7, patches, recipients); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 datagrams sent, got %d", len(sender.sent))
	}
	if string(sender.sent[0].payload) != string(sender.sent[1].payload) {
		t.Fatalf("expected identical payload bytes reused across recipients")
	}
}

func TestBroadcastSkipsRecipientsWithNilAddr(t *testing.T) {
	sender := &fakeSender{}
	b := New(sender, logging.NopPublisher{}, nil)

	patches := []tick.Patch{{Kind: tick.PatchPlayerPos, PlayerID: "p1"}}
	recipients := []Recipient{{PlayerID: "p1", Addr: nil}}

	if err := b.Broadcast("AAAA", 1, patches, recipients); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("expected nil-address recipient to be skipped")
	}
}

func TestBroadcastContinuesAfterWriteError(t *testing.T) {
	addr1 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1111}
	addr2 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2222}
	sender := &fakeSender{fail: map[string]bool{addr1.String(): true}}
	b := New(sender, logging.NopPublisher{}, nil)

	patches := []tick.Patch{{Kind: tick.PatchPlayerPos, PlayerID: "p1"}}
	recipients := []Recipient{{PlayerID: "p1", Addr: addr1}, {PlayerID: "p2", Addr: addr2}}

	if err := b.Broadcast("AAAA", 1, patches, recipients); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected the failing recipient to be skipped but the other still sent, got %d sent", len(sender.sent))
	}
}

func TestBroadcastRecordsOutboundMetricsOnlyForSuccessfulWrites(t *testing.T) {
	addr1 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 1111}
	addr2 := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 2222}
	sender := &fakeSender{fail: map[string]bool{addr1.String(): true}}
	m := metrics.New()
	b := New(sender, logging.NopPublisher{}, m)

	patches := []tick.Patch{{Kind: tick.PatchPlayerPos, PlayerID: "p1"}}
	recipients := []Recipient{{PlayerID: "p1", Addr: addr1}, {PlayerID: "p2", Addr: addr2}}

	if err := b.Broadcast("AAAA", 1, patches, recipients); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := testutil.ToFloat64(m.DatagramsOut); got != 1 {
		t.Fatalf("expected 1 successful outbound datagram counted, got %v", got)
	}
	if got := testutil.ToFloat64(m.BytesOut); got != float64(len(sender.sent[0].payload)) {
		t.Fatalf("expected outbound byte count to match the sent payload, got %v", got)
	}
}
