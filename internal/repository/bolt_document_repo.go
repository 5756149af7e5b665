package repository

import (
	"context"
	"fmt"

	"github.com/snapgo/snapgo-site/internal/content"
	"go.etcd.io/bbolt"
)

// BoltDocumentRepo はbbolt（組み込みKVS）にドキュメントを保存するリポジトリ。
// コレクションごとに1つのバケットを使い、キーはドキュメントID。
// データベースを用意せずに単一ホストで運用する構成向け。
type BoltDocumentRepo struct {
	db *bbolt.DB
}

// NewBoltDocumentRepo はBoltDocumentRepoを生成する。
func NewBoltDocumentRepo(db *bbolt.DB) *BoltDocumentRepo {
	return &BoltDocumentRepo{db: db}
}

// OpenBoltDocumentRepo は指定パスのbboltファイルを開いてBoltDocumentRepoを返す。
func OpenBoltDocumentRepo(path string, options *bbolt.Options) (*BoltDocumentRepo, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("bboltファイルのオープンに失敗しました: %w", err)
	}
	return NewBoltDocumentRepo(db), nil
}

// Close は基盤のbboltファイルを閉じる。
func (r *BoltDocumentRepo) Close() error {
	return r.db.Close()
}

// Kind はストアの種類を返す。
func (r *BoltDocumentRepo) Kind() string { return "bolt" }

// Configured は常にtrueを返す。
func (r *BoltDocumentRepo) Configured() bool { return true }

// GetDocument は指定IDのドキュメントを取得する。見つからない場合はcontent.ErrNotFoundを返す。
func (r *BoltDocumentRepo) GetDocument(ctx context.Context, collection, id string) (content.Document, error) {
	var data []byte
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return content.ErrNotFound
		}
		v := b.Get([]byte(id))
		if v == nil {
			return content.ErrNotFound
		}
		// トランザクション外で使うためコピーする
		data = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeDocument(id, data)
}

// ListDocuments はコレクションの全ドキュメントを取得する。
func (r *BoltDocumentRepo) ListDocuments(ctx context.Context, collection string) ([]content.Document, error) {
	var docs []content.Document
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			doc, err := decodeDocument(string(k), v)
			if err != nil {
				return err
			}
			docs = append(docs, doc)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("ドキュメント一覧の取得に失敗しました: %w", err)
	}
	return docs, nil
}

// PutDocument はドキュメントを作成または置き換える。
func (r *BoltDocumentRepo) PutDocument(ctx context.Context, collection, id string, doc content.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	err = r.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists([]byte(collection))
		if err != nil {
			return err
		}
		return b.Put([]byte(id), data)
	})
	if err != nil {
		return fmt.Errorf("ドキュメントの保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteDocument は指定IDのドキュメントを削除する。存在しない場合はcontent.ErrNotFoundを返す。
func (r *BoltDocumentRepo) DeleteDocument(ctx context.Context, collection, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil || b.Get([]byte(id)) == nil {
			return content.ErrNotFound
		}
		return b.Delete([]byte(id))
	})
}
