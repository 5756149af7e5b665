package content

import (
	"strings"

	"github.com/snapgo/snapgo-site/internal/model"
	"github.com/snapgo/snapgo-site/internal/security"
)

// serverOwnedFields はクライアントから受け取っても無視するフィールド。
var serverOwnedFields = []string{"id", "createdAt", "updatedAt"}

// prepare はリクエストボディを検証し、保存用に整えたコピーを返す。
// partialがfalseの場合は必須フィールドの存在を要求する。
// partialがtrueの場合は、ボディに含まれる必須フィールドのみ空でないことを検証する。
func prepare(sec *Section, body Document, partial bool, sanitizer security.ContentSanitizerService) (Document, error) {
	if body == nil {
		return nil, model.NewInvalidBodyError()
	}

	doc := make(Document, len(body))
	for k, v := range body {
		doc[k] = v
	}
	for _, f := range serverOwnedFields {
		delete(doc, f)
	}

	// 必須チェックは保存される値（サニタイズ後）に対して行う
	for _, field := range sec.RichText {
		v, present := doc[field]
		if !present {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return nil, model.NewInvalidFieldError(field, "must be a string")
		}
		doc[field] = sanitizer.Sanitize(s)
	}

	for _, field := range sec.Required {
		v, present := doc[field]
		if !present {
			if partial {
				continue
			}
			return nil, model.NewRequiredFieldError(field)
		}
		s, ok := v.(string)
		if !ok {
			return nil, model.NewInvalidFieldError(field, "must be a string")
		}
		if strings.TrimSpace(s) == "" {
			return nil, model.NewRequiredFieldError(field)
		}
	}

	if v, present := doc[OrderField]; present {
		if _, ok := toFloat(v); !ok {
			return nil, model.NewInvalidFieldError(OrderField, "must be a number")
		}
	}

	return doc, nil
}

// checkShape はドキュメントがセクションのモデル型に適合するかを検証する。
func checkShape(sec *Section, doc Document) error {
	if err := sec.check(doc); err != nil {
		return model.NewInvalidFieldError("body", "has fields of the wrong type")
	}
	return nil
}
