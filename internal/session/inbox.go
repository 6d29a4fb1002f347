package session

import (
	"context"
	"io"
	"path/filepath"

	"github.com/lecturebuddies/docproc/internal/docid"
	"github.com/lecturebuddies/docproc/internal/extract"
	"github.com/lecturebuddies/docproc/internal/summary"
	"go.uber.org/zap"
)

// Extractor is the part of extract.Extractor the session layer needs.
type Extractor interface {
	Extract(ctx context.Context, path string) extract.Result
	ExtractUpload(ctx context.Context, name string, r io.Reader) extract.Result
}

// Inbox extracts documents into a Store. Watched files are keyed by path so a
// rewritten file replaces its earlier entry; uploads get fresh IDs.
// Inbox implements the watcher's Handler.
type Inbox struct {
	extractor  Extractor
	store      *Store
	maxSummary int
	logger     *zap.Logger
}

// InboxOption configures an Inbox.
type InboxOption func(*Inbox)

// WithInboxLogger sets a logger for ingest events.
func WithInboxLogger(l *zap.Logger) InboxOption {
	return func(in *Inbox) {
		if l != nil {
			in.logger = l
		}
	}
}

// WithSummaryLength sets the summary bound. Non-positive means summary.DefaultMaxLength.
func WithSummaryLength(n int) InboxOption {
	return func(in *Inbox) { in.maxSummary = n }
}

// NewInbox returns an Inbox that stores into store.
func NewInbox(extractor Extractor, store *Store, opts ...InboxOption) *Inbox {
	in := &Inbox{
		extractor:  extractor,
		store:      store,
		maxSummary: summary.DefaultMaxLength,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Store returns the backing store.
func (in *Inbox) Store() *Store {
	return in.store
}

// Ingest extracts the file at path and stores it under its path ID.
func (in *Inbox) Ingest(ctx context.Context, path string) Document {
	res := in.extractor.Extract(ctx, path)
	doc := in.store.Put(Document{
		ID:      docid.ForPath(path),
		Name:    filepath.Base(path),
		Path:    path,
		Result:  res,
		Summary: in.summarize(res),
	})
	in.logger.Info("document ingested",
		zap.String("id", doc.ID),
		zap.String("path", path),
		zap.Stringer("kind", res.Kind),
	)
	return doc
}

// Upload extracts an uploaded document and stores it under a new ID.
func (in *Inbox) Upload(ctx context.Context, name string, r io.Reader) Document {
	res := in.extractor.ExtractUpload(ctx, name, r)
	doc := in.store.Put(Document{
		ID:      docid.ForUpload(),
		Name:    filepath.Base(name),
		Result:  res,
		Summary: in.summarize(res),
	})
	in.logger.Info("document uploaded",
		zap.String("id", doc.ID),
		zap.String("name", doc.Name),
		zap.Stringer("kind", res.Kind),
	)
	return doc
}

// Evict drops the document stored for path.
func (in *Inbox) Evict(path string) bool {
	ok := in.store.Remove(docid.ForPath(path))
	if ok {
		in.logger.Info("document evicted", zap.String("path", path))
	}
	return ok
}

// FileSettled ingests a settled inbox file.
func (in *Inbox) FileSettled(path string) {
	in.Ingest(context.Background(), path)
}

// FileRemoved evicts a deleted inbox file.
func (in *Inbox) FileRemoved(path string) {
	in.Evict(path)
}

func (in *Inbox) summarize(res extract.Result) string {
	if !res.HasText() {
		return ""
	}
	return summary.Summarize(res.Text, in.maxSummary)
}
