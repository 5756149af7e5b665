package handler

import (
	"net/http"

	"github.com/snapgo/snapgo-site/internal/middleware"
)

// StoreKindProvider はヘルスチェックが報告するストア種別の取得元。
type StoreKindProvider interface {
	StoreKind() string
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// NewHealthHandler はヘルスチェックハンドラーを返す。
// GET /health
func NewHealthHandler(store StoreKindProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, healthResponse{
			Status: "ok",
			Store:  store.StoreKind(),
		})
	}
}
