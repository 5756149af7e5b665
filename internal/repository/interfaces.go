// Package repository はコンテンツドキュメントの永続化実装を提供する。
// いずれの実装もcontent.Storeを満たし、起動時にCONTENT_STOREで1つが選ばれる。
package repository

import (
	"encoding/json"
	"fmt"

	"github.com/snapgo/snapgo-site/internal/content"
)

var (
	_ content.Store = (*PostgresDocumentRepo)(nil)
	_ content.Store = (*BoltDocumentRepo)(nil)
	_ content.Store = (*MemoryDocumentRepo)(nil)
)

// encodeDocument はドキュメントをJSONにエンコードする。"id"キーは保存しない。
func encodeDocument(doc content.Document) ([]byte, error) {
	stripped := make(content.Document, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		stripped[k] = v
	}
	data, err := json.Marshal(stripped)
	if err != nil {
		return nil, fmt.Errorf("ドキュメントのエンコードに失敗しました: %w", err)
	}
	return data, nil
}

// decodeDocument はJSONをドキュメントにデコードし、"id"キーを設定する。
func decodeDocument(id string, data []byte) (content.Document, error) {
	var doc content.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ドキュメントのデコードに失敗しました: %w", err)
	}
	if doc == nil {
		doc = content.Document{}
	}
	doc["id"] = id
	return doc, nil
}
