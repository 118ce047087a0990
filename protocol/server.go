package protocol

type Welcome struct {
	SessionID string `json:"sessionId"`
	V         int    `json:"v"`
}

type State struct {
	Broken bool           `json:"broken"`
	Solved bool           `json:"solved"`
	Parts  []PartSnapshot `json:"parts"`
}

type PartSnapshot struct {
	ID    string `json:"id"`
	Color string `json:"color"`
	Order int    `json:"order"`
}

type DropResult struct {
	PartID      string `json:"partId"`
	TargetIndex int    `json:"targetIndex"`
	Accepted    bool   `json:"accepted"`
}
