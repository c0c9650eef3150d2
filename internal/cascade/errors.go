package cascade

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// ProviderError represents a failed call to a single generation provider.
type ProviderError struct {
	Provider string
	Status   int    // HTTP status if known, 0 otherwise
	Code     string // provider machine code if known (e.g. RESOURCE_EXHAUSTED)
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider %s failed: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider %s failed: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ExhaustedError is returned when every provider in the cascade failed.
// It wraps the last error recorded before giving up.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d providers exhausted: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// rateLimitCodes are provider machine codes that indicate throttling or
// exhausted quota rather than a hard failure.
var rateLimitCodes = map[string]bool{
	"RESOURCE_EXHAUSTED":  true,
	"rate_limit_exceeded": true,
	"insufficient_quota":  true,
	"quota_exceeded":      true,
	"429":                 true,
}

// RateLimited reports whether err represents a transient rate-limit or quota
// failure. Rate-limited providers are skipped and the cascade continues;
// anything else is a general failure subject to the fallback policy.
func RateLimited(err error) bool {
	if err == nil {
		return false
	}

	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Status == 429 || rateLimitCodes[pe.Code] {
			return true
		}
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 429 {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "429")
}
