// Package content はサイトコンテンツの読み取り（静的デフォルトへのフォールバック付き）と
// 管理者による書き込みを提供する。
//
// 読み取りはバックエンドの有無を意識しない。ストアが未設定・空・障害時のいずれでも、
// 呼び出し元はデフォルトと同じ形の値を受け取る。
package content

import (
	"context"
	"errors"
)

var (
	// ErrNotFound はドキュメントが存在しないことを示す。
	ErrNotFound = errors.New("content: document not found")
	// ErrNotConfigured はバックエンドストアが設定されていないことを示す。
	ErrNotConfigured = errors.New("content: store not configured")
	// ErrUnknownSection は存在しないセクション名が指定されたことを示す。
	ErrUnknownSection = errors.New("content: unknown section")
	// ErrUnsupported はセクションの種類に対して許可されない操作であることを示す。
	ErrUnsupported = errors.New("content: operation not supported for section")
)

// Document はストアに保存される1件のドキュメント。
// 一覧取得時は"id"キーにドキュメントIDが入る。
type Document = map[string]any

// Store はコンテンツのバックエンド。起動時に1つの実装が選ばれる。
type Store interface {
	// Kind は実装の種類（static, postgres, bolt, memory）を返す。
	Kind() string
	// Configured はライブストアが利用可能かを返す。falseの場合、読み取りは常にデフォルトになる。
	Configured() bool
	// GetDocument は1件取得する。存在しない場合はErrNotFound。
	GetDocument(ctx context.Context, collection, id string) (Document, error)
	// ListDocuments はコレクションの全件を取得する。順序は保証しない。
	ListDocuments(ctx context.Context, collection string) ([]Document, error)
	// PutDocument はドキュメントを作成または置き換える。
	PutDocument(ctx context.Context, collection, id string, doc Document) error
	// DeleteDocument は1件削除する。存在しない場合はErrNotFound。
	DeleteDocument(ctx context.Context, collection, id string) error
}

// StaticStore はバックエンド未設定時のStore。
// 読み取りは静的デフォルトに、書き込みはErrNotConfiguredになる。
type StaticStore struct{}

// NewStaticStore は新しいStaticStoreを返す。
func NewStaticStore() StaticStore {
	return StaticStore{}
}

func (StaticStore) Kind() string     { return "static" }
func (StaticStore) Configured() bool { return false }

func (StaticStore) GetDocument(context.Context, string, string) (Document, error) {
	return nil, ErrNotConfigured
}

func (StaticStore) ListDocuments(context.Context, string) ([]Document, error) {
	return nil, ErrNotConfigured
}

func (StaticStore) PutDocument(context.Context, string, string, Document) error {
	return ErrNotConfigured
}

func (StaticStore) DeleteDocument(context.Context, string, string) error {
	return ErrNotConfigured
}
