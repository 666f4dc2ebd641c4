package domain

// Photo is a search result from the upstream photo API. Values are treated as
// immutable once fetched.
type Photo struct {
	ID              string   `json:"id"`
	UnsplashID      string   `json:"unsplashId"`
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	URL             string   `json:"url"`
	SmallURL        string   `json:"smallUrl"`
	Photographer    string   `json:"photographer"`
	PhotographerURL string   `json:"photographerUrl,omitempty"`
	Category        string   `json:"category"`
	Tags            []string `json:"tags"`
	Width           int      `json:"width"`
	Height          int      `json:"height"`
	DownloadURL     string   `json:"downloadUrl,omitempty"`
}

// Collection is a named, ordered group of saved photos. Photo IDs are unique
// within a collection.
type Collection struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Photos      []Photo `json:"photos"`
	CreatedAt   string  `json:"createdAt"`
}

// HasPhoto reports whether a photo with the given id is in the collection.
func (c *Collection) HasPhoto(photoID string) bool {
	for i := range c.Photos {
		if c.Photos[i].ID == photoID {
			return true
		}
	}
	return false
}

// SearchResult is one page of photo search results.
type SearchResult struct {
	Photos     []Photo `json:"photos"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}
