package client

import (
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// Error definitions for outbound clients
var (
	ErrSchemaConformance   = errors.New("response does not conform to the declared schema")
	ErrEmptyResponse       = errors.New("empty response from completion provider")
	ErrMissingAPIKey       = errors.New("missing API key for completion provider")
	ErrUnsupportedProvider = errors.New("unsupported completion provider")
	ErrHubRequest          = errors.New("dataset hub request failed")
)

// IsRateLimited reports whether err was caused by a provider rate limit (HTTP 429)
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}

	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) && anthropicErr.StatusCode == http.StatusTooManyRequests {
		return true
	}

	return strings.Contains(err.Error(), "429")
}
