package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain json untouched",
			input: `{"name": "test"}`,
			want:  `{"name": "test"}`,
		},
		{
			name:  "json fence stripped",
			input: "```json\n{\"name\": \"test\"}\n```",
			want:  `{"name": "test"}`,
		},
		{
			name:  "bare fence stripped",
			input: "```\n{\"name\": \"test\"}\n```",
			want:  `{"name": "test"}`,
		},
		{
			name:  "language tag on first line dropped",
			input: "```javascript\n{\"name\": \"test\"}\n```",
			want:  `{"name": "test"}`,
		},
		{
			name:  "fence with json on the opening line",
			input: "```{\"name\": \"test\"}\n```",
			want:  `{"name": "test"}`,
		},
		{
			name:  "surrounding whitespace trimmed",
			input: "  \n{\"name\": \"test\"}\n  ",
			want:  `{"name": "test"}`,
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "fence with trailing commentary cut at closing fence",
			input: "```json\n{\"a\": 1}\n```\nHope that helps!",
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONBlock(tt.input))
		})
	}
}
