// Package middleware はHTTPミドルウェア（認証ゲート、レート制限、ログ、復旧など）と
// 共通のエラーレスポンス書き込みを提供する。
package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/snapgo/snapgo-site/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Code  string `json:"code,omitempty"`
}

// WriteJSON はvをJSONとして書き込む。
func WriteJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// WriteError は{"error": msg}形式のエラーレスポンスを書き込む。
func WriteError(w http.ResponseWriter, statusCode int, msg string) {
	WriteJSON(w, statusCode, ErrorResponseBody{Error: msg})
}

// WriteValidationError は検証エラーを400で書き込む。
func WriteValidationError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteJSON(w, http.StatusBadRequest, ErrorResponseBody{
		Error: apiErr.Message,
		Field: apiErr.Field,
		Code:  apiErr.Code,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
