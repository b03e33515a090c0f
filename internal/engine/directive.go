package engine

// Directive is the structured outcome of one dialogue turn. Its fields are
// the wire contract and stay stable no matter which text strategy produced
// the response wording.
type Directive struct {
	Understood       bool           `json:"understood"`
	ResponseText     string         `json:"response_text"`
	SuggestedActions []string       `json:"suggested_actions,omitempty"`
	ActionTaken      string         `json:"action_taken,omitempty"`
	AwaitingSlot     string         `json:"awaiting_slot,omitempty"`
	StructuredData   map[string]any `json:"structured_data,omitempty"`
}

func (d *Directive) withData(key string, value any) {
	if d.StructuredData == nil {
		d.StructuredData = map[string]any{}
	}
	d.StructuredData[key] = value
}
