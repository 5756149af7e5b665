// Package handler はHTTPハンドラーとルーティングを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/snapgo/snapgo-site/internal/content"
	"github.com/snapgo/snapgo-site/internal/middleware"
	"github.com/snapgo/snapgo-site/internal/model"
)

// maxContentBodyBytes はコンテンツ書き込みリクエストボディの上限。
const maxContentBodyBytes = 1 << 20

// ContentServiceInterface はコンテンツハンドラーが必要とするサービスインターフェース。
type ContentServiceInterface interface {
	Get(ctx context.Context, section string, includeInactive bool) (any, error)
	GetItem(ctx context.Context, section, id string, includeInactive bool) (any, error)
	SaveDocument(ctx context.Context, section, id string, body content.Document) (content.Document, error)
	CreateItem(ctx context.Context, section string, body content.Document) (content.Document, error)
	UpdateItem(ctx context.Context, section, id string, patch content.Document) (content.Document, error)
	DeleteItem(ctx context.Context, section, id string) error
}

// ContentHandler はサイトコンテンツの読み書きを扱うHTTPハンドラー。
type ContentHandler struct {
	service ContentServiceInterface
}

// NewContentHandler はContentHandlerを生成する。
func NewContentHandler(service ContentServiceInterface) *ContentHandler {
	return &ContentHandler{service: service}
}

// GetSection は公開用のセクション全体を返す。非表示のアイテムは含まない。
// GET /api/content/{section}
func (h *ContentHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	h.getSection(w, r, false)
}

// GetSectionItem は公開用のアイテム1件を返す。
// GET /api/content/{section}/{id}
func (h *ContentHandler) GetSectionItem(w http.ResponseWriter, r *http.Request) {
	h.getSectionItem(w, r, false)
}

// AdminGetSection は管理画面用にフィルタなしのセクション全体を返す。
// GET /api/admin/content/{section}
func (h *ContentHandler) AdminGetSection(w http.ResponseWriter, r *http.Request) {
	h.getSection(w, r, true)
}

// AdminGetSectionItem は管理画面用にフィルタなしでアイテム1件を返す。
// GET /api/admin/content/{section}/{id}
func (h *ContentHandler) AdminGetSectionItem(w http.ResponseWriter, r *http.Request) {
	h.getSectionItem(w, r, true)
}

func (h *ContentHandler) getSection(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	v, err := h.service.Get(r.Context(), chi.URLParam(r, "section"), includeInactive)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v)
}

func (h *ContentHandler) getSectionItem(w http.ResponseWriter, r *http.Request, includeInactive bool) {
	v, err := h.service.GetItem(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "id"), includeInactive)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, v)
}

// PutSection は単一ドキュメントのセクションを置き換える。
// PUT /api/content/{section}
func (h *ContentHandler) PutSection(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeDocumentBody(w, r)
	if !ok {
		return
	}

	doc, err := h.service.SaveDocument(r.Context(), chi.URLParam(r, "section"), "", body)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// PutSectionItem はドキュメントセットの1件を作成・置き換える。
// コレクションの場合は既存アイテムを部分更新する。
// PUT /api/content/{section}/{id}
func (h *ContentHandler) PutSectionItem(w http.ResponseWriter, r *http.Request) {
	section := chi.URLParam(r, "section")
	id := chi.URLParam(r, "id")

	sec, ok := content.Lookup(section)
	if !ok {
		handleServiceError(w, content.ErrUnknownSection)
		return
	}

	body, ok := decodeDocumentBody(w, r)
	if !ok {
		return
	}

	var (
		doc content.Document
		err error
	)
	switch sec.Kind {
	case content.KindCollection:
		doc, err = h.service.UpdateItem(r.Context(), section, id, body)
	case content.KindDocumentSet:
		doc, err = h.service.SaveDocument(r.Context(), section, id, body)
	default:
		err = content.ErrUnsupported
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, doc)
}

// CreateItem はコレクションにアイテムを追加する。
// POST /api/content/{section}
func (h *ContentHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeDocumentBody(w, r)
	if !ok {
		return
	}

	doc, err := h.service.CreateItem(r.Context(), chi.URLParam(r, "section"), body)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, doc)
}

// DeleteItem はアイテムを削除する。
// DELETE /api/content/{section}/{id}
func (h *ContentHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteItem(r.Context(), chi.URLParam(r, "section"), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeDocumentBody はリクエストボディをJSONオブジェクトとしてデコードする。
// 失敗時は400を書き込みfalseを返す。
func decodeDocumentBody(w http.ResponseWriter, r *http.Request) (content.Document, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContentBodyBytes)

	var body content.Document
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		middleware.WriteValidationError(w, model.NewInvalidBodyError())
		return nil, false
	}
	if body == nil {
		middleware.WriteValidationError(w, model.NewInvalidBodyError())
		return nil, false
	}
	return body, true
}

// handleServiceError はサービス層のエラーをHTTPステータスに変換して書き込む。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	switch {
	case errors.As(err, &apiErr):
		middleware.WriteValidationError(w, apiErr)
	case errors.Is(err, content.ErrUnknownSection), errors.Is(err, content.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, content.ErrUnsupported):
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed for this section")
	case errors.Is(err, content.ErrNotConfigured):
		middleware.WriteError(w, http.StatusServiceUnavailable, "Content store is not configured")
	default:
		slog.Error("internal server error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
	}
}
