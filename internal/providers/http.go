package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/dharmasatrya/tripplanner/internal/ratelimit"
)

// httpCaller performs paced JSON requests on behalf of a single provider.
type httpCaller struct {
	name    string
	client  *http.Client
	limiter *ratelimit.ProviderLimiter
	logger  *zap.Logger
}

func newHTTPCaller(name string, opts Options) httpCaller {
	return httpCaller{
		name:    name,
		client:  opts.httpClient(),
		limiter: opts.Limiter,
		logger:  opts.logger().With(zap.String("provider", name)),
	}
}

// do sends req and decodes a 2xx JSON body into out.
func (h httpCaller) do(req *http.Request, out any) error {
	if err := h.limiter.Wait(req.Context(), h.name); err != nil {
		return NewProviderError(h.name, fmt.Errorf("rate limiter: %w", err))
	}

	resp, err := h.client.Do(req)
	if err != nil {
		// url.Error echoes the full URL, which may carry an API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = fmt.Errorf("%s: %w", uerr.Op, uerr.Err)
		}
		return NewProviderError(h.name, fmt.Errorf("request failed: %w", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	h.logger.Debug("provider response", zap.String("path", req.URL.Path), zap.Int("status", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return newStatusError(h.name, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewProviderError(h.name, fmt.Errorf("%w: %v", ErrMalformedResponse, err))
	}
	return nil
}

func (h httpCaller) get(ctx context.Context, endpoint string, query url.Values, header http.Header, out any) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return NewProviderError(h.name, fmt.Errorf("invalid base URL: %w", err))
	}
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return NewProviderError(h.name, fmt.Errorf("failed to create request: %w", err))
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	return h.do(req, out)
}
