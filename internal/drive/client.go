package drive

import (
	"context"
	"io"
)

type Folder struct {
	ID   string
	Name string
}

type File struct {
	ID       string
	Name     string
	MimeType string
}

// Stream is one proxied media response from Drive
type Stream struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64 // -1 when unknown
	ContentRange  string
	Partial       bool // upstream answered 206
}

// Client lists the Drive folder tree and streams file bytes. The sync
// orchestrator and the stream proxy depend on this interface; tests swap in
// a fake.
type Client interface {
	// ListFolders returns the child folders of parentID, ordered by name
	ListFolders(ctx context.Context, parentID string) ([]Folder, error)
	// ListVideoFiles returns the child files of parentID whose MIME type
	// indicates video, ordered by name
	ListVideoFiles(ctx context.Context, parentID string) ([]File, error)
	// OpenStream starts a media download. rangeHeader is passed through
	// verbatim when non-empty ("bytes=0-" style).
	OpenStream(ctx context.Context, fileID, rangeHeader string) (*Stream, error)
}
