package content

import (
	"context"
	"errors"
	"sync"
)

// memStore はテスト用のマップベースのStore。
// 関数フィールドが設定されていればそちらを優先する。
type memStore struct {
	mu   sync.Mutex
	data map[string]map[string]Document

	getFn  func(ctx context.Context, collection, id string) (Document, error)
	listFn func(ctx context.Context, collection string) ([]Document, error)
	puts   int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]map[string]Document)}
}

func (s *memStore) Kind() string     { return "test" }
func (s *memStore) Configured() bool { return true }

func (s *memStore) GetDocument(ctx context.Context, collection, id string) (Document, error) {
	if s.getFn != nil {
		return s.getFn(ctx, collection, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyDoc(doc), nil
}

func (s *memStore) ListDocuments(ctx context.Context, collection string) ([]Document, error) {
	if s.listFn != nil {
		return s.listFn(ctx, collection)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]Document, 0, len(s.data[collection]))
	for id, doc := range s.data[collection] {
		d := copyDoc(doc)
		d["id"] = id
		docs = append(docs, d)
	}
	return docs, nil
}

func (s *memStore) PutDocument(ctx context.Context, collection, id string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[collection] == nil {
		s.data[collection] = make(map[string]Document)
	}
	s.data[collection][id] = copyDoc(doc)
	s.puts++
	return nil
}

func (s *memStore) DeleteDocument(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(s.data[collection], id)
	return nil
}

func copyDoc(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

var errBackend = errors.New("backend unavailable")
