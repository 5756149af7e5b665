package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/snapgo/snapgo-site/internal/content"
)

// runStoreContract は全てのcontent.Store実装に共通する振る舞いを検証する。
func runStoreContract(t *testing.T, store content.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("存在しないドキュメントはErrNotFound", func(t *testing.T) {
		_, err := store.GetDocument(ctx, "siteContent", "missing")
		if !errors.Is(err, content.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("空のコレクションは空の一覧", func(t *testing.T) {
		docs, err := store.ListDocuments(ctx, "empty-collection")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(docs) != 0 {
			t.Errorf("expected 0 docs, got %d", len(docs))
		}
	})

	t.Run("保存したドキュメントを取得できる", func(t *testing.T) {
		doc := content.Document{"title": "Ride with Snapgo", "order": float64(2), "isActive": true}
		if err := store.PutDocument(ctx, "siteContent", "hero", doc); err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}

		got, err := store.GetDocument(ctx, "siteContent", "hero")
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if got["id"] != "hero" {
			t.Errorf("id = %v, want hero", got["id"])
		}
		if got["title"] != "Ride with Snapgo" {
			t.Errorf("title = %v, want Ride with Snapgo", got["title"])
		}
		if got["order"] != float64(2) {
			t.Errorf("order = %v, want 2", got["order"])
		}
		if got["isActive"] != true {
			t.Errorf("isActive = %v, want true", got["isActive"])
		}
	})

	t.Run("上書き保存で内容が置き換わる", func(t *testing.T) {
		if err := store.PutDocument(ctx, "siteContent", "about", content.Document{"title": "old", "body": "x"}); err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
		if err := store.PutDocument(ctx, "siteContent", "about", content.Document{"title": "new"}); err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
		got, err := store.GetDocument(ctx, "siteContent", "about")
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if got["title"] != "new" {
			t.Errorf("title = %v, want new", got["title"])
		}
		if _, ok := got["body"]; ok {
			t.Error("body should have been replaced")
		}
	})

	t.Run("一覧は各ドキュメントにidを含む", func(t *testing.T) {
		for _, id := range []string{"a", "b", "c"} {
			if err := store.PutDocument(ctx, "features", id, content.Document{"title": id}); err != nil {
				t.Fatalf("PutDocument failed: %v", err)
			}
		}
		docs, err := store.ListDocuments(ctx, "features")
		if err != nil {
			t.Fatalf("ListDocuments failed: %v", err)
		}
		if len(docs) != 3 {
			t.Fatalf("expected 3 docs, got %d", len(docs))
		}
		seen := map[any]bool{}
		for _, d := range docs {
			if d["id"] != d["title"] {
				t.Errorf("id %v does not match title %v", d["id"], d["title"])
			}
			seen[d["id"]] = true
		}
		if len(seen) != 3 {
			t.Errorf("expected 3 distinct ids, got %v", seen)
		}
	})

	t.Run("保存時のidキーは無視される", func(t *testing.T) {
		if err := store.PutDocument(ctx, "team", "real-id", content.Document{"id": "spoofed", "name": "Aiko"}); err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
		got, err := store.GetDocument(ctx, "team", "real-id")
		if err != nil {
			t.Fatalf("GetDocument failed: %v", err)
		}
		if got["id"] != "real-id" {
			t.Errorf("id = %v, want real-id", got["id"])
		}
	})

	t.Run("削除後は取得できない", func(t *testing.T) {
		if err := store.PutDocument(ctx, "faqs", "q1", content.Document{"question": "?"}); err != nil {
			t.Fatalf("PutDocument failed: %v", err)
		}
		if err := store.DeleteDocument(ctx, "faqs", "q1"); err != nil {
			t.Fatalf("DeleteDocument failed: %v", err)
		}
		if _, err := store.GetDocument(ctx, "faqs", "q1"); !errors.Is(err, content.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("存在しないドキュメントの削除はErrNotFound", func(t *testing.T) {
		err := store.DeleteDocument(ctx, "faqs", "never-existed")
		if !errors.Is(err, content.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Configuredはtrue", func(t *testing.T) {
		if !store.Configured() {
			t.Error("expected Configured() to be true")
		}
	})
}
