package providers

import (
	"context"
	"net/url"
	"strconv"
	"strings"
)

const (
	PixabayName           = "pixabay"
	DefaultPixabayBaseURL = "https://pixabay.com"
)

type pixabayResponse struct {
	Total int            `json:"total"`
	Hits  []pixabayImage `json:"hits"`
}

type pixabayImage struct {
	ID            int    `json:"id"`
	Tags          string `json:"tags"`
	WebformatURL  string `json:"webformatURL"`
	LargeImageURL string `json:"largeImageURL"`
	PreviewURL    string `json:"previewURL"`
	User          string `json:"user"`
	PageURL       string `json:"pageURL"`
}

// PixabayClient is the secondary image provider.
type PixabayClient struct {
	apiKey  string
	baseURL string
	http    httpCaller
}

func NewPixabayClient(opts Options) *PixabayClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultPixabayBaseURL
	}
	return &PixabayClient{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPCaller(PixabayName, opts),
	}
}

func (c *PixabayClient) Name() string {
	return PixabayName
}

func (c *PixabayClient) Configured() bool {
	return c.apiKey != ""
}

// SearchPhotos looks for large horizontal editor's-choice photos within a
// single Pixabay category.
func (c *PixabayClient) SearchPhotos(ctx context.Context, query, category string) ([]Photo, error) {
	if !c.Configured() {
		return nil, NewProviderError(PixabayName, ErrMissingCredential)
	}

	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", query)
	q.Set("image_type", "photo")
	q.Set("orientation", "horizontal")
	q.Set("per_page", "20")
	q.Set("safesearch", "true")
	q.Set("category", category)
	q.Set("min_width", "1200")
	q.Set("min_height", "800")
	q.Set("editors_choice", "true")

	var resp pixabayResponse
	if err := c.http.get(ctx, c.baseURL+"/api/", q, nil, &resp); err != nil {
		return nil, err
	}

	photos := make([]Photo, 0, len(resp.Hits))
	for _, h := range resp.Hits {
		if h.LargeImageURL == "" {
			continue
		}
		photos = append(photos, Photo{
			ID:          strconv.Itoa(h.ID),
			Description: h.Tags,
			URL:         h.LargeImageURL,
			AuthorName:  h.User,
			AuthorLink:  h.PageURL,
		})
	}
	return photos, nil
}
