package drive

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	folderMimeType  = "application/vnd.google-apps.folder"
	videoMimePrefix = "video/"
)

// GoogleClient talks to the Drive v3 API with a read-only service account
type GoogleClient struct {
	svc *drive.Service
}

// NewGoogleClient builds the Drive service. Either credentialsFile (path) or
// serviceAccountJSON (inline key) must be provided.
func NewGoogleClient(ctx context.Context, credentialsFile, serviceAccountJSON string) (*GoogleClient, error) {
	opts := []option.ClientOption{option.WithScopes(drive.DriveReadonlyScope)}
	switch {
	case serviceAccountJSON != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(serviceAccountJSON)))
	case credentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	default:
		return nil, fmt.Errorf("set GOOGLE_APPLICATION_CREDENTIALS or GOOGLE_SERVICE_ACCOUNT_JSON for the Drive API")
	}

	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build drive service: %w", err)
	}
	return &GoogleClient{svc: svc}, nil
}

func (g *GoogleClient) ListFolders(ctx context.Context, parentID string) ([]Folder, error) {
	q := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", parentID, folderMimeType)
	res, err := g.svc.Files.List().
		Q(q).
		Fields("files(id, name)").
		OrderBy("name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive folder listing failed: %w", err)
	}

	folders := make([]Folder, 0, len(res.Files))
	for _, f := range res.Files {
		if f.Id == "" {
			continue
		}
		name := f.Name
		if name == "" {
			name = "Untitled"
		}
		folders = append(folders, Folder{ID: f.Id, Name: name})
	}
	return folders, nil
}

func (g *GoogleClient) ListVideoFiles(ctx context.Context, parentID string) ([]File, error) {
	q := fmt.Sprintf("'%s' in parents and trashed = false", parentID)
	res, err := g.svc.Files.List().
		Q(q).
		Fields("files(id, name, mimeType)").
		OrderBy("name").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("drive file listing failed: %w", err)
	}

	files := make([]File, 0, len(res.Files))
	for _, f := range res.Files {
		if f.Id == "" || !strings.HasPrefix(f.MimeType, videoMimePrefix) {
			continue
		}
		name := f.Name
		if name == "" {
			name = "Untitled"
		}
		files = append(files, File{ID: f.Id, Name: name, MimeType: f.MimeType})
	}
	return files, nil
}

func (g *GoogleClient) OpenStream(ctx context.Context, fileID, rangeHeader string) (*Stream, error) {
	call := g.svc.Files.Get(fileID).Context(ctx)
	if rangeHeader != "" {
		call.Header().Set("Range", rangeHeader)
	}
	resp, err := call.Download()
	if err != nil {
		return nil, fmt.Errorf("drive media download failed: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	return &Stream{
		Body:          resp.Body,
		ContentType:   contentType,
		ContentLength: resp.ContentLength,
		ContentRange:  resp.Header.Get("Content-Range"),
		Partial:       resp.StatusCode == http.StatusPartialContent,
	}, nil
}
