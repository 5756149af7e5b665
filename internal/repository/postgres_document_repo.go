package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/snapgo/snapgo-site/internal/content"
)

// PostgresDocumentRepo はPostgreSQLのJSONB列にドキュメントを保存するリポジトリ。
type PostgresDocumentRepo struct {
	db *sql.DB
}

// NewPostgresDocumentRepo はPostgresDocumentRepoを生成する。
func NewPostgresDocumentRepo(db *sql.DB) *PostgresDocumentRepo {
	return &PostgresDocumentRepo{db: db}
}

// Kind はストアの種類を返す。
func (r *PostgresDocumentRepo) Kind() string { return "postgres" }

// Configured は常にtrueを返す。接続障害は各操作のエラーとして扱う。
func (r *PostgresDocumentRepo) Configured() bool { return true }

// GetDocument は指定IDのドキュメントを取得する。見つからない場合はcontent.ErrNotFoundを返す。
func (r *PostgresDocumentRepo) GetDocument(ctx context.Context, collection, id string) (content.Document, error) {
	var data []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&data)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, content.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ドキュメントの取得に失敗しました: %w", err)
	}

	return decodeDocument(id, data)
}

// ListDocuments はコレクションの全ドキュメントを取得する。
func (r *PostgresDocumentRepo) ListDocuments(ctx context.Context, collection string) ([]content.Document, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE collection = $1 ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("ドキュメント一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var docs []content.Document
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("ドキュメントのスキャンに失敗しました: %w", err)
		}
		doc, err := decodeDocument(id, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ドキュメント一覧の読み取りに失敗しました: %w", err)
	}

	return docs, nil
}

// PutDocument はドキュメントを作成または置き換える（UPSERT）。
func (r *PostgresDocumentRepo) PutDocument(ctx context.Context, collection, id string, doc content.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (collection, id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (collection, id)
		 DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`,
		collection, id, string(data),
	)
	if err != nil {
		return fmt.Errorf("ドキュメントの保存に失敗しました: %w", err)
	}

	return nil
}

// DeleteDocument は指定IDのドキュメントを削除する。存在しない場合はcontent.ErrNotFoundを返す。
func (r *PostgresDocumentRepo) DeleteDocument(ctx context.Context, collection, id string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	)
	if err != nil {
		return fmt.Errorf("ドキュメントの削除に失敗しました: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除件数の取得に失敗しました: %w", err)
	}
	if affected == 0 {
		return content.ErrNotFound
	}

	return nil
}
