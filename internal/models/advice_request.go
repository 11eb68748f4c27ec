package models

// AdviceContext is the structured context sent with every advice request so
// the text service sees the same numbers the local engine computed.
type AdviceContext struct {
	Inputs           RawInputs `json:"inputs"`
	Metrics          Metrics   `json:"metrics"`
	State            State     `json:"state"`
	Health           int       `json:"health"`
	AllowedStates    []State   `json:"allowed_states"`
	ParameterVersion string    `json:"parameter_version"`
}

// AdviceRequest is what the orchestrator hands to a text generator: the
// structured context plus an optional free-text prompt for providers that
// only take prose.
type AdviceRequest struct {
	Context AdviceContext `json:"context"`
	Prompt  string        `json:"prompt,omitempty"`
}
