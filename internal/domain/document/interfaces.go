package document

import "context"

// Repository provides persistence for document records. Status transitions
// and remote file id assignment commit atomically: MarkIndexed sets both in
// one statement, MarkFailed clears the remote file id as it demotes.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	Get(ctx context.Context, id string) (*Document, error)
	ListByProject(ctx context.Context, projectID string) ([]Document, error)
	Delete(ctx context.Context, id string) error

	MarkIndexed(ctx context.Context, id, remoteFileID string) error
	MarkFailed(ctx context.Context, id string) error
	MarkPending(ctx context.Context, id string) error

	// WithoutRemoteID returns documents whose indexing never completed.
	WithoutRemoteID(ctx context.Context, projectID string) ([]Document, error)
	// FindOrphanedRemoteFiles returns remote file ids present in the given
	// index listing but unknown to the local store.
	FindOrphanedRemoteFiles(ctx context.Context, projectID string, remoteListing []string) ([]string, error)
	// FindByContentHash returns the document with the given sha256 within
	// the project, if any.
	FindByContentHash(ctx context.Context, projectID, sha256 string) (*Document, error)
	// FindByRemoteFileID maps a remote file id back to the local document,
	// used to attribute answer sources for display.
	FindByRemoteFileID(ctx context.Context, projectID, remoteFileID string) (*Document, error)
}

// IndexAdapter is the thin surface over the remote document-index service.
// Calls are synchronous, non-idempotent and never retried here; retry
// policy belongs to the Service. Failures are typed via internal/remote.
type IndexAdapter interface {
	CreateIndex(ctx context.Context, name string) (string, error)
	DeleteIndex(ctx context.Context, remoteIndexID string) error
	AddFile(ctx context.Context, remoteIndexID, filename string, data []byte) (string, error)
	RemoveFile(ctx context.Context, remoteIndexID, remoteFileID string) error
	ListFiles(ctx context.Context, remoteIndexID string) ([]string, error)
}
