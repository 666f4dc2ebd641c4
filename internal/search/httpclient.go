package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vbonduro/pingallery/internal/domain"
	"github.com/vbonduro/pingallery/internal/unsplash"
)

// HTTPClient searches through a pingallery server's /api/photos endpoint
// instead of calling the photo API directly.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) Search(ctx context.Context, params unsplash.SearchParams) (*domain.SearchResult, error) {
	if params.Category == "" {
		params.Category = unsplash.DefaultCategory
	}
	if params.Page < 1 {
		params.Page = unsplash.DefaultPage
	}

	q := url.Values{}
	q.Set("category", params.Category)
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("per_page", strconv.Itoa(unsplash.DefaultPerPage))
	if params.Query != "" {
		q.Set("query", params.Query)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", unsplash.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := http.StatusText(resp.StatusCode)
		if text == "" {
			text = resp.Status
		}
		return nil, &unsplash.StatusError{StatusCode: resp.StatusCode, Status: text}
	}

	var res domain.SearchResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", unsplash.ErrFetch, err)
	}
	if res.Photos == nil {
		res.Photos = []domain.Photo{}
	}
	return &res, nil
}
