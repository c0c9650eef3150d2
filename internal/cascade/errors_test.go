package cascade

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestRateLimited(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error",
			err:  nil,
			want: false,
		},
		{
			name: "provider error with HTTP 429",
			err:  &ProviderError{Provider: "a", Status: 429, Message: "throttled"},
			want: true,
		},
		{
			name: "provider error with RESOURCE_EXHAUSTED code",
			err:  &ProviderError{Provider: "a", Code: "RESOURCE_EXHAUSTED", Message: "no budget"},
			want: true,
		},
		{
			name: "provider error with insufficient_quota code",
			err:  &ProviderError{Provider: "a", Code: "insufficient_quota", Message: "no budget"},
			want: true,
		},
		{
			name: "wrapped provider error",
			err:  fmt.Errorf("call failed: %w", &ProviderError{Provider: "a", Status: 429, Message: "throttled"}),
			want: true,
		},
		{
			name: "googleapi 429",
			err:  &googleapi.Error{Code: 429, Message: "resource exhausted"},
			want: true,
		},
		{
			name: "googleapi 500 without quota wording",
			err:  &googleapi.Error{Code: 500, Message: "internal"},
			want: false,
		},
		{
			name: "message mentions rate limit",
			err:  errors.New("upstream said: Rate Limit exceeded"),
			want: true,
		},
		{
			name: "message mentions quota",
			err:  errors.New("daily QUOTA reached"),
			want: true,
		},
		{
			name: "message mentions 429",
			err:  errors.New("got status 429 from provider"),
			want: true,
		},
		{
			name: "plain failure",
			err:  errors.New("connection reset by peer"),
			want: false,
		},
		{
			name: "provider error without rate-limit markers",
			err:  &ProviderError{Provider: "a", Status: 503, Message: "unavailable"},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RateLimited(tt.err))
		})
	}
}

func TestProviderError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &ProviderError{Provider: "a", Message: "failed", Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "provider a failed")
}

func TestExhaustedError_Unwrap(t *testing.T) {
	last := &ProviderError{Provider: "c", Message: "failed"}
	err := &ExhaustedError{Attempts: 3, Last: last}

	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "all 3 providers exhausted")
}
