package playlist

// Track is one entry in a generated playlist.
type Track struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// Data is the structured output of a playlist generation request. It must
// pass shape validation before being trusted; see Parse.
type Data struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Tracks      []Track `json:"tracks"`
}

// Request describes one interactive playlist generation call. It is
// ephemeral: nothing here is persisted by the orchestrator.
type Request struct {
	Prompt          string `json:"prompt" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0,lte=600"`
	Genre           string `json:"genre,omitempty"`
	Era             string `json:"era,omitempty"`

	// Prior enables modification mode: the model is asked to revise this
	// playlist instead of producing one from scratch.
	Prior *Data `json:"prior,omitempty"`
}
