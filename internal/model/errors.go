// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError はクライアントに返す検証エラー。
// Fieldが空でない場合は問題のあるフィールド名を示す。
type APIError struct {
	Code    string // エラーコード
	Message string // エラーメッセージ
	Field   string // 対象フィールド（任意）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidBody     = "INVALID_BODY"
	ErrCodeRequiredField   = "REQUIRED_FIELD"
	ErrCodeInvalidField    = "INVALID_FIELD"
	ErrCodeUnknownDocument = "UNKNOWN_DOCUMENT"
)

// NewInvalidBodyError はリクエストボディがJSONオブジェクトでない場合のエラーを生成する。
func NewInvalidBodyError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidBody,
		Message: "request body must be a JSON object",
	}
}

// NewRequiredFieldError は必須フィールドが欠けている場合のエラーを生成する。
func NewRequiredFieldError(field string) *APIError {
	return &APIError{
		Code:    ErrCodeRequiredField,
		Message: fmt.Sprintf("%s is required", field),
		Field:   field,
	}
}

// NewInvalidFieldError はフィールドの型や値が不正な場合のエラーを生成する。
func NewInvalidFieldError(field, reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidField,
		Message: fmt.Sprintf("%s %s", field, reason),
		Field:   field,
	}
}

// NewUnknownDocumentError はドキュメントセットに存在しないIDが指定された場合のエラーを生成する。
func NewUnknownDocumentError(id string) *APIError {
	return &APIError{
		Code:    ErrCodeUnknownDocument,
		Message: fmt.Sprintf("unknown document: %s", id),
		Field:   "id",
	}
}
