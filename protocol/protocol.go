package protocol

import (
	"encoding/json"
)

const (
	MsgHello      = "hello"
	MsgMotion     = "motion"
	MsgDrop       = "drop"
	MsgReset      = "reset"
	MsgWelcome    = "welcome"
	MsgState      = "state"
	MsgDropResult = "dropResult"
)

// Version is bumped on any incompatible message change.
const Version = 1

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
