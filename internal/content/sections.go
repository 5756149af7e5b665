package content

import (
	"context"
	"slices"
	"sort"

	"github.com/snapgo/snapgo-site/internal/model"
)

// SiteCollection は単一ドキュメントのセクション（hero, stats, about）を保存するコレクション。
const SiteCollection = "siteContent"

// OrderField はコレクションの並び順に使うフィールド。
const OrderField = "order"

// Kind はセクションの形。
type Kind int

const (
	// KindDocument は1件のドキュメント（hero, statsなど）。
	KindDocument Kind = iota
	// KindCollection はアイテムの並び（faqs, teamなど）。
	KindCollection
	// KindDocumentSet は決まったIDを持つドキュメントの集合（legal）。
	KindDocumentSet
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindCollection:
		return "collection"
	case KindDocumentSet:
		return "documentSet"
	default:
		return "unknown"
	}
}

// Section は1つのコンテンツセクションの定義。
// 読み取りと型検証は、セクションのモデル型で生成したクロージャが行う。
type Section struct {
	Name       string
	Kind       Kind
	Collection string
	DocIDs     []string // KindDocumentSetのみ
	Required   []string // 作成・置き換え時に必須の文字列フィールド
	RichText   []string // サニタイズ対象のHTMLフィールド

	read     func(ctx context.Context, store Store, includeInactive bool) (any, Source)
	readItem func(ctx context.Context, store Store, id string, includeInactive bool) (any, Source, bool)
	check    func(doc Document) error
}

// documentID はKindDocumentセクションの保存先IDを返す。
func (s *Section) documentID() string {
	return s.Name
}

// hasDocID はKindDocumentSetのIDとして有効かを返す。
func (s *Section) hasDocID(id string) bool {
	return slices.Contains(s.DocIDs, id)
}

func documentSection[T any](name string, def func() T, required, richText []string) *Section {
	s := &Section{
		Name:       name,
		Kind:       KindDocument,
		Collection: SiteCollection,
		Required:   required,
		RichText:   richText,
		check:      shapeCheck[T](),
	}
	s.read = func(ctx context.Context, store Store, _ bool) (any, Source) {
		return ReadDocument(ctx, store, s.Collection, s.documentID(), def())
	}
	return s
}

func collectionSection[T any](name string, def func() []T, visible func(T) bool, keys func(T) []string, required, richText []string) *Section {
	s := &Section{
		Name:       name,
		Kind:       KindCollection,
		Collection: name,
		Required:   required,
		RichText:   richText,
		check:      shapeCheck[T](),
	}

	list := func(ctx context.Context, store Store, includeInactive bool) ([]T, Source) {
		items, src := ReadCollection(ctx, store, s.Collection, def(), OrderField)
		if includeInactive || visible == nil {
			return items, src
		}
		filtered := make([]T, 0, len(items))
		for _, item := range items {
			if visible(item) {
				filtered = append(filtered, item)
			}
		}
		return filtered, src
	}

	s.read = func(ctx context.Context, store Store, includeInactive bool) (any, Source) {
		return list(ctx, store, includeInactive)
	}
	s.readItem = func(ctx context.Context, store Store, id string, includeInactive bool) (any, Source, bool) {
		items, src := list(ctx, store, includeInactive)
		for _, item := range items {
			if slices.Contains(keys(item), id) {
				return item, src, true
			}
		}
		return nil, src, false
	}
	return s
}

func documentSetSection[T any](name string, ids []string, def func(id string) T, required, richText []string) *Section {
	s := &Section{
		Name:       name,
		Kind:       KindDocumentSet,
		Collection: name,
		DocIDs:     ids,
		Required:   required,
		RichText:   richText,
		check:      shapeCheck[T](),
	}
	s.read = func(ctx context.Context, store Store, _ bool) (any, Source) {
		out := make(map[string]T, len(ids))
		src := SourceDefault
		for _, id := range ids {
			v, from := ReadDocument(ctx, store, s.Collection, id, def(id))
			out[id] = v
			if from == SourceStore {
				src = SourceStore
			}
		}
		return out, src
	}
	s.readItem = func(ctx context.Context, store Store, id string, _ bool) (any, Source, bool) {
		if !s.hasDocID(id) {
			return nil, SourceDefault, false
		}
		v, src := ReadDocument(ctx, store, s.Collection, id, def(id))
		return v, src, true
	}
	return s
}

// shapeCheck はドキュメントがモデル型Tにデコードできるかを検証する関数を返す。
func shapeCheck[T any]() func(doc Document) error {
	return func(doc Document) error {
		var v T
		return fromDocument(doc, &v)
	}
}

func byID(id string) []string { return []string{id} }

var sections = buildSections()

func buildSections() map[string]*Section {
	list := []*Section{
		documentSection("hero", DefaultHero, []string{"title"}, nil),
		documentSection("stats", DefaultStats, nil, nil),
		documentSection("about", DefaultAbout, []string{"title"}, []string{"body"}),

		collectionSection("features", DefaultFeatures, nil,
			func(f model.Feature) []string { return byID(f.ID) },
			[]string{"title", "description"}, nil),
		collectionSection("steps", DefaultSteps, nil,
			func(s model.Step) []string { return byID(s.ID) },
			[]string{"title", "description"}, nil),
		collectionSection("testimonials", DefaultTestimonials,
			func(t model.Testimonial) bool { return t.IsActive },
			func(t model.Testimonial) []string { return byID(t.ID) },
			[]string{"name", "quote"}, nil),
		collectionSection("faqs", DefaultFAQs,
			func(f model.FAQ) bool { return f.IsActive },
			func(f model.FAQ) []string { return byID(f.ID) },
			[]string{"question", "answer"}, nil),
		collectionSection("team", DefaultTeam,
			func(m model.TeamMember) bool { return m.IsActive },
			func(m model.TeamMember) []string { return byID(m.ID) },
			[]string{"name", "role"}, nil),
		collectionSection("blog", DefaultBlogPosts,
			func(p model.BlogPost) bool { return p.Published },
			func(p model.BlogPost) []string { return []string{p.ID, p.Slug} },
			[]string{"title", "slug"}, []string{"body"}),

		documentSetSection("legal", LegalDocumentIDs(), DefaultLegalDocument,
			[]string{"title", "body"}, []string{"body"}),
	}

	m := make(map[string]*Section, len(list))
	for _, s := range list {
		m[s.Name] = s
	}
	return m
}

// Lookup は名前でセクションを探す。
func Lookup(name string) (*Section, bool) {
	s, ok := sections[name]
	return s, ok
}

// SectionNames は登録済みのセクション名を昇順で返す。
func SectionNames() []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
