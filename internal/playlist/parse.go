// Package playlist provides structured playlist generation: a parser that
// turns free-text model responses into validated playlist records, and the
// interactive service that drives the provider cascade.
package playlist

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sjfortin/avatar-generator/internal/llm"
	"github.com/sjfortin/avatar-generator/internal/schemas"
)

//go:embed playlist_schema.json
var playlistSchema string

// Parse extracts one validated playlist record from a model's free-text
// response. Markdown code fences (with or without a language tag) are
// stripped before parsing. Failures are typed: *MalformedOutputError when the
// text is not JSON, *InvalidSchemaError when the JSON fails shape validation.
func Parse(raw string) (*Data, error) {
	cleaned := llm.CleanJSONBlock(raw)

	var data Data
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &MalformedOutputError{
			Message: "response is not valid JSON",
			Cause:   err,
		}
	}

	if err := schemas.ValidateJSONString(playlistSchema, cleaned); err != nil {
		return nil, &InvalidSchemaError{
			Message: "response does not match playlist schema",
			Cause:   err,
		}
	}

	// The schema catches missing and empty fields; whitespace-only values
	// still need a trim-level pass.
	if err := validateShape(&data); err != nil {
		return nil, err
	}

	return &data, nil
}

// validateShape rejects records whose required fields are blank after
// trimming.
func validateShape(data *Data) error {
	if strings.TrimSpace(data.Name) == "" {
		return &InvalidSchemaError{Message: "playlist name is empty"}
	}
	if strings.TrimSpace(data.Description) == "" {
		return &InvalidSchemaError{Message: "playlist description is empty"}
	}
	if len(data.Tracks) == 0 {
		return &InvalidSchemaError{Message: "playlist has no tracks"}
	}
	for i, track := range data.Tracks {
		if strings.TrimSpace(track.Name) == "" {
			return &InvalidSchemaError{Message: fmt.Sprintf("tracks[%d].name is empty", i)}
		}
		if strings.TrimSpace(track.Artist) == "" {
			return &InvalidSchemaError{Message: fmt.Sprintf("tracks[%d].artist is empty", i)}
		}
	}
	return nil
}
