package content

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

// Source は読み取り結果の取得元。
type Source string

const (
	SourceStore   Source = "store"
	SourceDefault Source = "default"
)

// GetDocument はドキュメントを取得し、静的デフォルトにマージして返す。
//
//   - ストア未設定: defをそのまま返す（マージしない）
//   - 存在しない・空・読み取りエラー・デコード失敗: defを返す
//   - 存在する: 保存済みのトップレベルフィールドが優先され、欠けたフィールドはdefの値を保つ
//
// 読み取りエラーはログに残すのみで呼び出し元には返さない。
func GetDocument[T any](ctx context.Context, store Store, collection, id string, def T) T {
	v, _ := ReadDocument(ctx, store, collection, id, def)
	return v
}

// ReadDocument はGetDocumentと同じだが、取得元も返す。
func ReadDocument[T any](ctx context.Context, store Store, collection, id string, def T) (T, Source) {
	if !store.Configured() {
		return def, SourceDefault
	}

	doc, err := store.GetDocument(ctx, collection, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			slog.Warn("content read failed, using default",
				slog.String("collection", collection),
				slog.String("id", id),
				slog.String("error", err.Error()),
			)
		}
		return def, SourceDefault
	}
	if len(doc) == 0 {
		return def, SourceDefault
	}

	merged, err := mergeOver(def, doc)
	if err != nil {
		slog.Warn("content decode failed, using default",
			slog.String("collection", collection),
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return def, SourceDefault
	}
	return merged, SourceStore
}

// GetCollection はコレクションを取得する。
//
//   - ストア未設定・読み取りエラー・空: defaultsをそのまま返す
//   - 存在する: 保存済みの全件で置き換える（アイテム単位のマージはしない）。orderFieldの昇順
//
// デコードできないアイテムはログに残してスキップする。
func GetCollection[T any](ctx context.Context, store Store, path string, defaults []T, orderField string) []T {
	v, _ := ReadCollection(ctx, store, path, defaults, orderField)
	return v
}

// ReadCollection はGetCollectionと同じだが、取得元も返す。
func ReadCollection[T any](ctx context.Context, store Store, path string, defaults []T, orderField string) ([]T, Source) {
	if !store.Configured() {
		return defaults, SourceDefault
	}

	docs, err := store.ListDocuments(ctx, path)
	if err != nil {
		slog.Warn("content list failed, using defaults",
			slog.String("collection", path),
			slog.String("error", err.Error()),
		)
		return defaults, SourceDefault
	}
	if len(docs) == 0 {
		return defaults, SourceDefault
	}

	SortDocuments(docs, orderField)

	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := fromDocument(doc, &item); err != nil {
			slog.Warn("skipping undecodable content item",
				slog.String("collection", path),
				slog.Any("id", doc["id"]),
				slog.String("error", err.Error()),
			)
			continue
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return defaults, SourceDefault
	}
	return items, SourceStore
}

// SortDocuments はorderFieldの昇順で安定ソートする。
// 数値は文字列より前、フィールドがないものは最後。同順位はidの昇順。
func SortDocuments(docs []Document, orderField string) {
	slices.SortStableFunc(docs, func(a, b Document) int {
		if orderField != "" {
			if c := compareValues(a[orderField], b[orderField]); c != 0 {
				return c
			}
		}
		return cmp.Compare(fmt.Sprint(a["id"]), fmt.Sprint(b["id"]))
	})
}

// 値の種類ごとの順位。
const (
	rankNumber = iota
	rankString
	rankOther
	rankMissing
)

func compareValues(a, b any) int {
	ra, rb := rankOf(a), rankOf(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	switch ra {
	case rankNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return cmp.Compare(fa, fb)
	case rankString:
		return cmp.Compare(a.(string), b.(string))
	default:
		return 0
	}
}

func rankOf(v any) int {
	if v == nil {
		return rankMissing
	}
	if _, ok := toFloat(v); ok {
		return rankNumber
	}
	if _, ok := v.(string); ok {
		return rankString
	}
	return rankOther
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// mergeOver はdefをドキュメントに変換し、docのトップレベルフィールドで上書きしてTに戻す。
func mergeOver[T any](def T, doc Document) (T, error) {
	base, err := toDocument(def)
	if err != nil {
		return def, err
	}
	for k, v := range doc {
		base[k] = v
	}
	var out T
	if err := fromDocument(base, &out); err != nil {
		return def, err
	}
	return out, nil
}

func toDocument(v any) (Document, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

func fromDocument(doc Document, out any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
