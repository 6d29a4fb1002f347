// Package session holds the documents a user has added during a session. Nothing
// is persisted; entries expire after a TTL and the oldest are evicted past capacity.
package session

import (
	"sort"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/lecturebuddies/docproc/internal/extract"
	"github.com/lecturebuddies/docproc/internal/prompt"
	"go.uber.org/zap"
)

const (
	DefaultCapacity = 64
	DefaultTTL      = 2 * time.Hour
)

// Document is one extracted document in the session set.
type Document struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Path    string         `json:"path,omitempty"`
	Result  extract.Result `json:"-"`
	Summary string         `json:"summary"`
	AddedAt time.Time      `json:"added_at"`
}

// Store is a bounded, expiring set of session documents. It is safe for concurrent use.
type Store struct {
	docs   *expirable.LRU[string, Document]
	now    func() time.Time
	logger *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets a logger for eviction events.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStore returns a store holding at most capacity documents for ttl each.
// Non-positive values select DefaultCapacity and DefaultTTL.
func NewStore(capacity int, ttl time.Duration, opts ...StoreOption) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.docs = expirable.NewLRU[string, Document](capacity, func(id string, doc Document) {
		s.logger.Debug("session document evicted", zap.String("id", id), zap.String("name", doc.Name))
	}, ttl)
	return s
}

// Put adds or replaces doc. A zero AddedAt is set to the current time.
func (s *Store) Put(doc Document) Document {
	if doc.AddedAt.IsZero() {
		doc.AddedAt = s.now()
	}
	s.docs.Add(doc.ID, doc)
	return doc
}

// Get returns the document with id.
func (s *Store) Get(id string) (Document, bool) {
	return s.docs.Get(id)
}

// Remove deletes the document with id and reports whether it was present.
func (s *Store) Remove(id string) bool {
	return s.docs.Remove(id)
}

// List returns the live documents, oldest first.
func (s *Store) List() []Document {
	docs := s.docs.Values()
	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].AddedAt.Equal(docs[j].AddedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].AddedAt.Before(docs[j].AddedAt)
	})
	return docs
}

// Len returns the number of live documents.
func (s *Store) Len() int {
	return s.docs.Len()
}

// PromptDocuments returns the session documents, oldest first, as prompt input.
// Each carries the displayed extraction output, diagnostics included.
func (s *Store) PromptDocuments() []prompt.Document {
	docs := s.List()
	out := make([]prompt.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, prompt.Document{Name: d.Name, Text: d.Result.String()})
	}
	return out
}
