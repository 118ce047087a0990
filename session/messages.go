package session

import "github.com/shreyapandey07/game/protocol"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello is parsed.
type Join struct {
	Conn  Conn
	Reply chan<- JoinResult
}

type JoinResult struct {
	SessionID string
}

// Motion: one accelerometer sample from the device. Accel is nil when
// the devicemotion event carried no acceleration payload.
type Motion struct {
	Accel *protocol.Vec
}

// Drop: the player dropped a part onto a band.
type Drop struct {
	PartID      string
	TargetIndex int
}

// Reset: put the flag back together and exit broken mode.
type Reset struct{}

// Leave: issued on disconnect.
type Leave struct{}
