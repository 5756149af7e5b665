package content

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/snapgo/snapgo-site/internal/metrics"
	"github.com/snapgo/snapgo-site/internal/model"
	"github.com/snapgo/snapgo-site/internal/security"
)

// TimestampLayout はcreatedAt/updatedAtの形式（ISO-8601、UTC、ミリ秒）。
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Service はコンテンツの読み取りと書き込みを提供する。
type Service struct {
	store     Store
	sanitizer security.ContentSanitizerService
	metrics   metrics.MetricsCollector
	now       func() time.Time
	newID     func() string
}

// NewService は新しいServiceを生成する。
func NewService(store Store, sanitizer security.ContentSanitizerService, m metrics.MetricsCollector) *Service {
	return &Service{
		store:     store,
		sanitizer: sanitizer,
		metrics:   m,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// StoreKind はバックエンドの種類を返す。
func (s *Service) StoreKind() string {
	return s.store.Kind()
}

// Configured はライブストアが利用可能かを返す。
func (s *Service) Configured() bool {
	return s.store.Configured()
}

// Get はセクション全体を返す。公開読み取りでは非表示のアイテムを除外する。
func (s *Service) Get(ctx context.Context, section string, includeInactive bool) (any, error) {
	sec, ok := Lookup(section)
	if !ok {
		return nil, ErrUnknownSection
	}
	v, src := sec.read(ctx, s.store, includeInactive)
	s.metrics.RecordContentRead(section, string(src))
	return v, nil
}

// GetItem はコレクションのアイテム（ブログはslugでも可）またはドキュメントセットの1件を返す。
func (s *Service) GetItem(ctx context.Context, section, id string, includeInactive bool) (any, error) {
	sec, ok := Lookup(section)
	if !ok {
		return nil, ErrUnknownSection
	}
	if sec.readItem == nil {
		return nil, ErrNotFound
	}
	v, src, found := sec.readItem(ctx, s.store, id, includeInactive)
	s.metrics.RecordContentRead(section, string(src))
	if !found {
		return nil, ErrNotFound
	}
	return v, nil
}

// SaveDocument は単一ドキュメントまたはドキュメントセットの1件を作成・置き換える。
// updatedAtは常に、createdAtは既存ドキュメントがない場合のみ設定する。
func (s *Service) SaveDocument(ctx context.Context, section, id string, body Document) (Document, error) {
	sec, err := s.writable(section)
	if err != nil {
		return nil, err
	}

	switch sec.Kind {
	case KindDocument:
		id = sec.documentID()
	case KindDocumentSet:
		if !sec.hasDocID(id) {
			return nil, model.NewUnknownDocumentError(id)
		}
	default:
		return nil, ErrUnsupported
	}

	doc, err := prepare(sec, body, false, s.sanitizer)
	if err != nil {
		return nil, err
	}
	if err := checkShape(sec, doc); err != nil {
		return nil, err
	}

	now := s.timestamp()
	createdAt := now
	prior, err := s.store.GetDocument(ctx, sec.Collection, id)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s/%s: %w", sec.Collection, id, err)
	default:
		if c, ok := prior["createdAt"].(string); ok && c != "" {
			createdAt = c
		}
	}
	doc["createdAt"] = createdAt
	doc["updatedAt"] = now

	if err := s.store.PutDocument(ctx, sec.Collection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to save %s/%s: %w", sec.Collection, id, err)
	}

	slog.Info("content saved",
		slog.String("section", section),
		slog.String("item_id", id),
	)
	return doc, nil
}

// CreateItem はコレクションに新しいアイテムを追加する。IDはサーバーが採番する。
func (s *Service) CreateItem(ctx context.Context, section string, body Document) (Document, error) {
	sec, err := s.writable(section)
	if err != nil {
		return nil, err
	}
	if sec.Kind != KindCollection {
		return nil, ErrUnsupported
	}

	doc, err := prepare(sec, body, false, s.sanitizer)
	if err != nil {
		return nil, err
	}

	id := s.newID()
	now := s.timestamp()
	doc["id"] = id
	doc["createdAt"] = now
	doc["updatedAt"] = now

	if err := checkShape(sec, doc); err != nil {
		return nil, err
	}
	if err := s.store.PutDocument(ctx, sec.Collection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to create %s/%s: %w", sec.Collection, id, err)
	}

	slog.Info("content item created",
		slog.String("section", section),
		slog.String("item_id", id),
	)
	return doc, nil
}

// UpdateItem は既存アイテムにパッチのトップレベルフィールドを上書きする。
func (s *Service) UpdateItem(ctx context.Context, section, id string, patch Document) (Document, error) {
	sec, err := s.writable(section)
	if err != nil {
		return nil, err
	}
	if sec.Kind != KindCollection {
		return nil, ErrUnsupported
	}

	clean, err := prepare(sec, patch, true, s.sanitizer)
	if err != nil {
		return nil, err
	}

	prior, err := s.store.GetDocument(ctx, sec.Collection, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s/%s: %w", sec.Collection, id, err)
	}

	doc := make(Document, len(prior)+len(clean))
	for k, v := range prior {
		doc[k] = v
	}
	for k, v := range clean {
		doc[k] = v
	}
	doc["id"] = id
	doc["updatedAt"] = s.timestamp()

	if err := checkShape(sec, doc); err != nil {
		return nil, err
	}
	if err := s.store.PutDocument(ctx, sec.Collection, id, doc); err != nil {
		return nil, fmt.Errorf("failed to update %s/%s: %w", sec.Collection, id, err)
	}

	slog.Info("content item updated",
		slog.String("section", section),
		slog.String("item_id", id),
	)
	return doc, nil
}

// DeleteItem はコレクションのアイテムまたはドキュメントセットの1件を削除する。
func (s *Service) DeleteItem(ctx context.Context, section, id string) error {
	sec, err := s.writable(section)
	if err != nil {
		return err
	}
	switch sec.Kind {
	case KindCollection:
	case KindDocumentSet:
		if !sec.hasDocID(id) {
			return ErrNotFound
		}
	default:
		return ErrUnsupported
	}

	if err := s.store.DeleteDocument(ctx, sec.Collection, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s/%s: %w", sec.Collection, id, err)
	}

	slog.Info("content item deleted",
		slog.String("section", section),
		slog.String("item_id", id),
	)
	return nil
}

// writable は書き込み対象のセクションを返す。ストア未設定ならErrNotConfigured。
func (s *Service) writable(section string) (*Section, error) {
	sec, ok := Lookup(section)
	if !ok {
		return nil, ErrUnknownSection
	}
	if !s.store.Configured() {
		return nil, ErrNotConfigured
	}
	return sec, nil
}

func (s *Service) timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}
