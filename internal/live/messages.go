package live

import (
	"encoding/json"
	"log/slog"
)

// Client to server message types.
const (
	TypeHomeCategory      = "home.category"
	TypeHomeQuery         = "home.query"
	TypeHomeMore          = "home.more"
	TypeHomeRetry         = "home.retry"
	TypeViewerOpen        = "viewer.open"
	TypeViewerClose       = "viewer.close"
	TypeKey               = "key"
	TypeCollectionsOpen   = "collections.open"
	TypeCollectionsClose  = "collections.close"
	TypeCollectionsCreate = "collections.create"
	TypeCollectionsSave   = "collections.save"
	TypeCollectionsRemove = "collections.remove"
	TypeCollectionsDelete = "collections.delete"
)

// Server to client message types.
const (
	TypeHomeState          = "home.state"
	TypeViewerState        = "viewer.state"
	TypeCollectionsState   = "collections.state"
	TypeNotice             = "notice"
	TypeNoticeClear        = "notice.clear"
	TypeError              = "error"
	TypeCollectionsChanged = "collections.changed"
)

// Viewer sources.
const (
	SourceHome       = "home"
	SourceCollection = "collection"
)

// Inbound is any message a client sends. Only the fields its Type uses are
// set.
type Inbound struct {
	Type         string `json:"type"`
	Category     string `json:"category,omitempty"`
	Query        string `json:"query,omitempty"`
	Index        int    `json:"index,omitempty"`
	Source       string `json:"source,omitempty"`
	Key          string `json:"key,omitempty"`
	ID           string `json:"id,omitempty"`
	Name         string `json:"name,omitempty"`
	Description  string `json:"description,omitempty"`
	CollectionID string `json:"collectionId,omitempty"`
	PhotoID      string `json:"photoId,omitempty"`
}

// Outbound is any message the server sends.
type Outbound struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type messageData struct {
	Message string `json:"message"`
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal live message", "error", err)
		return []byte("{}")
	}
	return b
}
