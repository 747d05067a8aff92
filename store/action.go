package store

// Action identifies an intended state transition.
// An action with an empty Type is malformed; every reducer treats it as a no-op.
type Action struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Malformed reports whether the action carries no recognizable type.
func (a Action) Malformed() bool {
	return a.Type == ""
}
