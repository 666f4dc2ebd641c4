package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vbonduro/pingallery/internal/domain"
)

const defaultAPIURL = "https://api.unsplash.com"

// ErrFetch is matched by every search failure, transport or HTTP status.
var ErrFetch = errors.New("failed to fetch photos")

// StatusError is returned when the photo API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s", ErrFetch.Error(), e.Status)
}

func (e *StatusError) Unwrap() error {
	return ErrFetch
}

// SearchParams selects one page of results. Zero values take the defaults.
type SearchParams struct {
	Category string
	Page     int
	PerPage  int
	Query    string
}

func (p SearchParams) withDefaults() SearchParams {
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	return p
}

// searchResponse mirrors the subset of GET /search/photos that we map.
type searchResponse struct {
	Total      int      `json:"total"`
	TotalPages int      `json:"total_pages"`
	Results    []result `json:"results"`
}

type result struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	AltDescription string `json:"alt_description"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	URLs           struct {
		Full    string `json:"full"`
		Regular string `json:"regular"`
		Small   string `json:"small"`
	} `json:"urls"`
	User struct {
		Name  string `json:"name"`
		Links struct {
			HTML string `json:"html"`
		} `json:"links"`
	} `json:"user"`
	Tags []struct {
		Title string `json:"title"`
	} `json:"tags"`
}

type Client struct {
	accessKey string
	client    *http.Client
	baseURL   string
}

func NewClient(accessKey string) *Client {
	return &Client{
		accessKey: accessKey,
		client:    &http.Client{},
		baseURL:   defaultAPIURL,
	}
}

// NewClientWithURL points the client at a different API root, such as a
// proxy or a test server.
func NewClientWithURL(accessKey, baseURL string) *Client {
	c := NewClient(accessKey)
	if baseURL != "" {
		c.baseURL = baseURL
	}
	return c
}

// Search runs a single request against the photo search endpoint. There are
// no retries.
func (c *Client) Search(ctx context.Context, params SearchParams) (*domain.SearchResult, error) {
	params = params.withDefaults()

	q := url.Values{}
	q.Set("query", QueryFor(params.Category, params.Query))
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("per_page", strconv.Itoa(params.PerPage))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: statusText(resp)}
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrFetch, err)
	}

	photos := make([]domain.Photo, 0, len(body.Results))
	for i := range body.Results {
		photos = append(photos, toPhoto(&body.Results[i], params.Category))
	}

	return &domain.SearchResult{
		Photos:     photos,
		Total:      body.Total,
		TotalPages: body.TotalPages,
	}, nil
}

func toPhoto(r *result, category string) domain.Photo {
	tags := make([]string, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t.Title)
	}
	return domain.Photo{
		ID:              r.ID,
		UnsplashID:      r.ID,
		Title:           firstNonEmpty(r.AltDescription, r.Description, "Untitled"),
		Description:     firstNonEmpty(r.Description, r.AltDescription),
		URL:             r.URLs.Regular,
		SmallURL:        r.URLs.Small,
		Photographer:    r.User.Name,
		PhotographerURL: r.User.Links.HTML,
		Category:        category,
		Tags:            tags,
		Width:           r.Width,
		Height:          r.Height,
		DownloadURL:     r.URLs.Full,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// statusText returns "Not Found" rather than "404 Not Found".
func statusText(resp *http.Response) string {
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return resp.Status
}
