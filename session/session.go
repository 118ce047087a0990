// Package session runs one player's game as an actor: commands arrive
// on an inbox channel and are handled by a single goroutine, so the
// detector and flag state never see concurrent mutation.
package session

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/shreyapandey07/game/game"
	"github.com/shreyapandey07/game/motion"
	"github.com/shreyapandey07/game/protocol"
	"github.com/shreyapandey07/game/telemetry"
)

type Session struct {
	Inbox chan any

	// Now and Rng are swappable for tests; set before Run.
	Now func() time.Time
	Rng *rand.Rand

	ID string
	// PlayerName comes from the hello message; immutable once Run starts.
	PlayerName string
	OnEmpty    func(id string) // called when the player disconnects

	conn     Conn
	detector *motion.Detector
	flag     *game.State
	pub      telemetry.Publisher
	broken   atomic.Bool
	quit     chan struct{}
}

func New(id string, cfg motion.Config, pub telemetry.Publisher) *Session {
	if pub == nil {
		pub = telemetry.Nop{}
	}
	return &Session{
		Inbox:    make(chan any, 256),
		Now:      time.Now,
		Rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		ID:       id,
		detector: motion.NewDetector(cfg),
		flag:     game.NewState(),
		pub:      pub,
		quit:     make(chan struct{}),
	}
}

func (s *Session) Stop() {
	close(s.quit)
}

// Broken is safe to call from outside the actor goroutine.
func (s *Session) Broken() bool {
	return s.broken.Load()
}

func (s *Session) Run() {
	for {
		select {
		case <-s.quit:
			return
		case cmd := <-s.Inbox:
			s.handleCommand(cmd)
		}
	}
}

func (s *Session) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Join:
		s.conn = c.Conn
		c.Reply <- JoinResult{SessionID: s.ID}
		s.sendState()
	case Motion:
		s.handleMotion(c)
	case Drop:
		s.handleDrop(c)
	case Reset:
		s.flag.Reset()
		s.detector.Reset()
		s.broken.Store(false)
		s.sendState()
	case Leave:
		s.handleLeave()
	}
}

func (s *Session) handleMotion(c Motion) {
	if c.Accel == nil {
		// Sensor had nothing for us; not even smoothing advances.
		return
	}
	sample := motion.Sample{
		X:           c.Accel.X,
		Y:           c.Accel.Y,
		Z:           c.Accel.Z,
		TimestampMs: s.Now().UnixMilli(),
	}
	pulse, ok := s.detector.Ingest(sample)
	if !ok {
		return
	}

	s.flag.Shuffle(s.Rng)
	s.broken.Store(true)
	s.pub.Publish(telemetry.Event{
		Type:        telemetry.EventShake,
		SessionID:   s.ID,
		TimestampMs: pulse.TimestampMs,
		Magnitude:   pulse.Magnitude,
	})
	s.sendState()
}

func (s *Session) handleDrop(c Drop) {
	wasAssembled := s.flag.Assembled()
	accepted := s.flag.AttemptPlacement(c.PartID, c.TargetIndex)
	s.send(protocol.MsgDropResult, protocol.DropResult{
		PartID:      c.PartID,
		TargetIndex: c.TargetIndex,
		Accepted:    accepted,
	})
	if !accepted {
		// A wrong drop is a normal miss, not an error: nothing changed,
		// so there is no state to push.
		return
	}
	s.sendState()
	// Only the drop that completes the flag counts as solving it;
	// re-dropping a part that already sits right must not refire.
	if s.flag.Broken && !wasAssembled && s.flag.Assembled() {
		s.pub.Publish(telemetry.Event{
			Type:        telemetry.EventSolved,
			SessionID:   s.ID,
			TimestampMs: s.Now().UnixMilli(),
		})
	}
}

func (s *Session) handleLeave() {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	if s.OnEmpty != nil {
		s.OnEmpty(s.ID)
	}
}

func (s *Session) sendState() {
	s.send(protocol.MsgState, s.buildSnapshot())
}

func (s *Session) send(t string, payload any) {
	if s.conn == nil {
		return
	}
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return
	}
	if err := s.conn.Send(b); err != nil {
		s.handleLeave()
	}
}

func (s *Session) buildSnapshot() protocol.State {
	snapshot := protocol.State{
		Broken: s.flag.Broken,
		Solved: s.flag.Assembled(),
		Parts:  make([]protocol.PartSnapshot, 0, len(s.flag.Parts)),
	}
	for _, p := range s.flag.Parts {
		snapshot.Parts = append(snapshot.Parts, protocol.PartSnapshot{
			ID:    p.ID,
			Color: p.Color,
			Order: p.Order,
		})
	}
	return snapshot
}
