package providers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
)

var (
	ErrMissingCredential = errors.New("credential not configured")
	ErrQuotaExhausted    = errors.New("quota exhausted or access denied")
	ErrMalformedResponse = errors.New("malformed provider response")
)

// ProviderError attributes a failure to a provider. StatusCode is zero for
// transport and decoding failures.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}

func newStatusError(provider string, status int, body []byte) *ProviderError {
	err := fmt.Errorf("unexpected response: %s", truncate(string(body), 200))
	if status == http.StatusForbidden {
		err = ErrQuotaExhausted
	}
	return &ProviderError{
		Provider:   provider,
		StatusCode: status,
		Err:        err,
	}
}

// Transient reports whether retrying the same request may succeed.
func Transient(err error) bool {
	var pe *ProviderError
	if !errors.As(err, &pe) {
		return false
	}
	if pe.StatusCode == 0 {
		return !errors.Is(pe.Err, ErrMissingCredential) && !errors.Is(pe.Err, ErrMalformedResponse)
	}
	return pe.StatusCode == http.StatusTooManyRequests || pe.StatusCode >= 500
}

// Photo is a provider-neutral image search candidate.
type Photo struct {
	ID             string
	Description    string
	AltDescription string
	URL            string
	AuthorName     string
	AuthorLink     string
}

// Options configures an HTTP provider client. Empty BaseURL selects the
// provider's public endpoint.
type Options struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Limiter *ratelimit.ProviderLimiter
	Logger  *zap.Logger
}

func (o Options) httpClient() *http.Client {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
