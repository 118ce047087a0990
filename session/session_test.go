package session

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shreyapandey07/game/game"
	"github.com/shreyapandey07/game/motion"
	"github.com/shreyapandey07/game/protocol"
	"github.com/shreyapandey07/game/telemetry"
)

type fakeConn struct {
	sendCh chan []byte
}

func (f *fakeConn) Send(b []byte) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	f.sendCh <- cp
	return nil
}

func (f *fakeConn) Close() error {
	return nil
}

// fakeClock advances a fixed step per reading so detector timestamps
// are deterministic.
type fakeClock struct {
	nowMs  int64
	stepMs int64
}

func (c *fakeClock) now() time.Time {
	t := time.UnixMilli(c.nowMs)
	c.nowMs += c.stepMs
	return t
}

type recordingPublisher struct {
	events chan telemetry.Event
}

func (p *recordingPublisher) Publish(ev telemetry.Event) {
	p.events <- ev
}

func newTestSession(pub telemetry.Publisher) (*Session, *fakeConn) {
	cfg := motion.DefaultConfig()
	cfg.LowPassFactor = 0 // passthrough keeps sample magnitudes literal
	s := New("s-test", cfg, pub)
	s.Rng = rand.New(rand.NewSource(1))
	s.Now = (&fakeClock{stepMs: 100}).now
	go s.Run()

	fc := &fakeConn{sendCh: make(chan []byte, 64)}
	reply := make(chan JoinResult, 1)
	s.Inbox <- Join{Conn: fc, Reply: reply}
	<-reply
	return s, fc
}

func nextMessage(t *testing.T, fc *fakeConn, msgType string) protocol.Envelope {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case b := <-fc.sendCh:
			env, err := protocol.DecodeEnvelope(b)
			if err != nil {
				t.Fatalf("decode envelope: %v", err)
			}
			if env.T == msgType {
				return env
			}
		case <-timeout:
			t.Fatalf("timed out waiting for %q message", msgType)
		}
	}
}

func shake(s *Session) {
	for i := 0; i < 7; i++ {
		s.Inbox <- Motion{Accel: &protocol.Vec{X: 8}}
	}
}

func TestJoinSendsCanonicalState(t *testing.T) {
	s, fc := newTestSession(nil)
	defer s.Stop()

	env := nextMessage(t, fc, protocol.MsgState)
	state, err := protocol.DecodePayload[protocol.State](env)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Broken || !state.Solved {
		t.Fatalf("initial state = broken=%v solved=%v, want assembled", state.Broken, state.Solved)
	}
	wantIDs := []string{game.PartOrange, game.PartWhite, game.PartGreen}
	for i, p := range state.Parts {
		if p.ID != wantIDs[i] || p.Order != i {
			t.Fatalf("part %d = %+v, want %s at band %d", i, p, wantIDs[i], i)
		}
	}
}

func TestShakeBreaksFlagAndPublishesPulse(t *testing.T) {
	pub := &recordingPublisher{events: make(chan telemetry.Event, 8)}
	s, fc := newTestSession(pub)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState) // join snapshot

	shake(s)

	env := nextMessage(t, fc, protocol.MsgState)
	state, err := protocol.DecodePayload[protocol.State](env)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if !state.Broken {
		t.Fatalf("expected broken flag after shake, got %+v", state)
	}

	select {
	case ev := <-pub.events:
		if ev.Type != telemetry.EventShake || ev.SessionID != "s-test" {
			t.Fatalf("event = %+v, want shake for s-test", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for shake event")
	}
}

func TestSecondShakeWithinDebounceDoesNothing(t *testing.T) {
	s, fc := newTestSession(nil)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState)

	shake(s)
	nextMessage(t, fc, protocol.MsgState)

	// Clock steps 100ms per sample, so this burst ends well inside the
	// 3000ms debounce. No state message may follow.
	shake(s)
	select {
	case b := <-fc.sendCh:
		env, _ := protocol.DecodeEnvelope(b)
		t.Fatalf("unexpected %q message during debounce", env.T)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDropResultAndStateFlow(t *testing.T) {
	s, fc := newTestSession(nil)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState)

	// Wrong band: rejected, no state push.
	s.Inbox <- Drop{PartID: game.PartWhite, TargetIndex: 0}
	env := nextMessage(t, fc, protocol.MsgDropResult)
	res, err := protocol.DecodePayload[protocol.DropResult](env)
	if err != nil {
		t.Fatalf("decode dropResult: %v", err)
	}
	if res.Accepted {
		t.Fatalf("white onto band 0 must be rejected: %+v", res)
	}

	// Right band: accepted, fresh snapshot follows.
	s.Inbox <- Drop{PartID: game.PartWhite, TargetIndex: 1}
	env = nextMessage(t, fc, protocol.MsgDropResult)
	res, err = protocol.DecodePayload[protocol.DropResult](env)
	if err != nil {
		t.Fatalf("decode dropResult: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("white onto band 1 must be accepted: %+v", res)
	}
	nextMessage(t, fc, protocol.MsgState)
}

func TestSolvingBrokenFlagPublishesSolvedEvent(t *testing.T) {
	pub := &recordingPublisher{events: make(chan telemetry.Event, 8)}
	s, fc := newTestSession(pub)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState)

	shake(s)
	<-pub.events // shake event

	s.Inbox <- Drop{PartID: game.PartOrange, TargetIndex: 0}
	s.Inbox <- Drop{PartID: game.PartWhite, TargetIndex: 1}
	s.Inbox <- Drop{PartID: game.PartGreen, TargetIndex: 2}

	select {
	case ev := <-pub.events:
		if ev.Type != telemetry.EventSolved {
			t.Fatalf("event = %+v, want solved", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for solved event")
	}
}

func TestRedundantDropAfterSolveDoesNotRepublish(t *testing.T) {
	pub := &recordingPublisher{events: make(chan telemetry.Event, 8)}
	s, fc := newTestSession(pub)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState)

	shake(s)
	<-pub.events // shake event

	for _, d := range []Drop{
		{PartID: game.PartOrange, TargetIndex: 0},
		{PartID: game.PartWhite, TargetIndex: 1},
		{PartID: game.PartGreen, TargetIndex: 2},
	} {
		s.Inbox <- d
		nextMessage(t, fc, protocol.MsgDropResult)
	}
	<-pub.events // solved event

	// The flag stays broken until reset, and this drop is accepted,
	// but the flag was already assembled: no second solved event.
	s.Inbox <- Drop{PartID: game.PartWhite, TargetIndex: 1}
	env := nextMessage(t, fc, protocol.MsgDropResult)
	res, err := protocol.DecodePayload[protocol.DropResult](env)
	if err != nil {
		t.Fatalf("decode dropResult: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("redundant canonical drop must still be accepted: %+v", res)
	}
	select {
	case ev := <-pub.events:
		t.Fatalf("unexpected event after redundant drop: %+v", ev)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestResetRestoresCanonicalState(t *testing.T) {
	s, fc := newTestSession(nil)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState)

	shake(s)
	nextMessage(t, fc, protocol.MsgState)

	s.Inbox <- Reset{}
	env := nextMessage(t, fc, protocol.MsgState)
	state, err := protocol.DecodePayload[protocol.State](env)
	if err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Broken || !state.Solved {
		t.Fatalf("state after reset = %+v, want canonical", state)
	}
	for i, p := range state.Parts {
		if p.Order != i {
			t.Fatalf("part %d order = %d after reset, want %d", i, p.Order, i)
		}
	}
	if s.Broken() {
		t.Fatalf("Broken() must report false after reset")
	}
}

func TestNilAccelIsIgnored(t *testing.T) {
	s, fc := newTestSession(nil)
	defer s.Stop()
	nextMessage(t, fc, protocol.MsgState)

	for i := 0; i < 20; i++ {
		s.Inbox <- Motion{Accel: nil}
	}
	select {
	case b := <-fc.sendCh:
		env, _ := protocol.DecodeEnvelope(b)
		t.Fatalf("unexpected %q message from empty motion events", env.T)
	case <-time.After(200 * time.Millisecond):
	}
}
