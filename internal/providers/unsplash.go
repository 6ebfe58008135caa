package providers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

const (
	UnsplashName           = "unsplash"
	DefaultUnsplashBaseURL = "https://api.unsplash.com"
)

type unsplashSearchResponse struct {
	Total   int             `json:"total"`
	Results []unsplashPhoto `json:"results"`
}

type unsplashPhoto struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	URLs           struct {
		Raw     string `json:"raw"`
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
		Thumb   string `json:"thumb"`
	} `json:"urls"`
	User struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	} `json:"user"`
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
}

// UnsplashClient searches landscape photos on Unsplash. It is the primary
// image provider and is subject to an hourly quota.
type UnsplashClient struct {
	accessKey string
	baseURL   string
	http      httpCaller
}

func NewUnsplashClient(opts Options) *UnsplashClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultUnsplashBaseURL
	}
	return &UnsplashClient{
		accessKey: strings.TrimSpace(opts.APIKey),
		baseURL:   strings.TrimRight(baseURL, "/"),
		http:      newHTTPCaller(UnsplashName, opts),
	}
}

func (c *UnsplashClient) Name() string {
	return UnsplashName
}

func (c *UnsplashClient) Configured() bool {
	return c.accessKey != ""
}

// SearchPhotos returns up to 20 ranked candidates. A 403 surfaces as
// ErrQuotaExhausted.
func (c *UnsplashClient) SearchPhotos(ctx context.Context, query string) ([]Photo, error) {
	if !c.Configured() {
		return nil, NewProviderError(UnsplashName, ErrMissingCredential)
	}

	q := url.Values{}
	q.Set("query", query)
	q.Set("per_page", "20")
	q.Set("orientation", "landscape")
	q.Set("content_filter", "high")

	header := http.Header{}
	header.Set("Authorization", "Client-ID "+c.accessKey)
	header.Set("Accept-Version", "v1")

	var resp unsplashSearchResponse
	if err := c.http.get(ctx, c.baseURL+"/search/photos", q, header, &resp); err != nil {
		return nil, err
	}

	photos := make([]Photo, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.URLs.Regular == "" {
			continue
		}
		photos = append(photos, Photo{
			ID:             r.ID,
			Description:    r.Description,
			AltDescription: r.AltDescription,
			URL:            r.URLs.Regular,
			AuthorName:     r.User.Name,
			AuthorLink:     r.Links.HTML,
		})
	}
	return photos, nil
}
