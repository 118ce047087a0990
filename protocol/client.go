package protocol

// Input structs coming in from the client.

type Hello struct {
	V    int    `json:"v"`              // version
	Name string `json:"name,omitempty"` // optional name
}

// Vec is a device-motion acceleration reading. Browsers omit axes the
// sensor did not report; a missing field just decodes to 0.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Motion carries one accelerometer sample. Accel stays nil when the
// devicemotion event had no acceleration payload at all.
type Motion struct {
	Accel *Vec `json:"accel"`
}

// Drop declares "this part was dropped onto this zone".
type Drop struct {
	PartID      string `json:"partId"`
	TargetIndex int    `json:"targetIndex"`
}

type Reset struct{}
