package repository

import (
	"context"
	"sync"

	"github.com/snapgo/snapgo-site/internal/content"
)

// MemoryDocumentRepo はプロセス内メモリにドキュメントを保持するリポジトリ。
// ローカル開発とテスト用で、再起動で内容は失われる。
// 値はJSONで保持し、呼び出し元とマップを共有しない。
type MemoryDocumentRepo struct {
	mu   sync.RWMutex
	data map[string]map[string][]byte
}

// NewMemoryDocumentRepo はMemoryDocumentRepoを生成する。
func NewMemoryDocumentRepo() *MemoryDocumentRepo {
	return &MemoryDocumentRepo{data: make(map[string]map[string][]byte)}
}

// Kind はストアの種類を返す。
func (r *MemoryDocumentRepo) Kind() string { return "memory" }

// Configured は常にtrueを返す。
func (r *MemoryDocumentRepo) Configured() bool { return true }

// GetDocument は指定IDのドキュメントを取得する。見つからない場合はcontent.ErrNotFoundを返す。
func (r *MemoryDocumentRepo) GetDocument(ctx context.Context, collection, id string) (content.Document, error) {
	r.mu.RLock()
	data, ok := r.data[collection][id]
	r.mu.RUnlock()
	if !ok {
		return nil, content.ErrNotFound
	}
	return decodeDocument(id, data)
}

// ListDocuments はコレクションの全ドキュメントを取得する。
func (r *MemoryDocumentRepo) ListDocuments(ctx context.Context, collection string) ([]content.Document, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	docs := make([]content.Document, 0, len(r.data[collection]))
	for id, data := range r.data[collection] {
		doc, err := decodeDocument(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// PutDocument はドキュメントを作成または置き換える。
func (r *MemoryDocumentRepo) PutDocument(ctx context.Context, collection, id string, doc content.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data[collection] == nil {
		r.data[collection] = make(map[string][]byte)
	}
	r.data[collection][id] = data
	return nil
}

// DeleteDocument は指定IDのドキュメントを削除する。存在しない場合はcontent.ErrNotFoundを返す。
func (r *MemoryDocumentRepo) DeleteDocument(ctx context.Context, collection, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.data[collection][id]; !ok {
		return content.ErrNotFound
	}
	delete(r.data[collection], id)
	return nil
}
