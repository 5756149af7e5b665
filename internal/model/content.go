package model

// サイトコンテンツの型。JSONタグは管理画面と公開ページが使うフィールド名と一致させる。
// CreatedAt/UpdatedAtはサーバーが書き込み時に設定するISO-8601文字列で、
// 静的デフォルトでは空のまま省略される。

// Hero はトップページのヒーローセクション。
type Hero struct {
	Title     string `json:"title"`
	Subtitle  string `json:"subtitle"`
	CTAText   string `json:"ctaText"`
	CTALink   string `json:"ctaLink"`
	ImageURL  string `json:"imageUrl"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Stats はトップページに表示する実績値。
type Stats struct {
	ActiveRiders int     `json:"activeRiders"`
	RidesShared  int     `json:"ridesShared"`
	Cities       int     `json:"cities"`
	CO2SavedKg   int     `json:"co2SavedKg"`
	Rating       float64 `json:"rating"`
	CreatedAt    string  `json:"createdAt,omitempty"`
	UpdatedAt    string  `json:"updatedAt,omitempty"`
}

// About は会社紹介ページ。Bodyはサニタイズ済みHTML。
type About struct {
	Title     string `json:"title"`
	Mission   string `json:"mission"`
	Vision    string `json:"vision"`
	Body      string `json:"body"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Feature はサービスの特長。
type Feature struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	Order       float64 `json:"order"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Step は「使い方」の手順。
type Step struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Order       float64 `json:"order"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// Testimonial は利用者の声。
type Testimonial struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	Quote     string  `json:"quote"`
	Rating    float64 `json:"rating"`
	AvatarURL string  `json:"avatarUrl"`
	IsActive  bool    `json:"isActive"`
	Order     float64 `json:"order"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// FAQ はよくある質問。
type FAQ struct {
	ID        string  `json:"id"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Category  string  `json:"category"`
	IsActive  bool    `json:"isActive"`
	Order     float64 `json:"order"`
	CreatedAt string  `json:"createdAt,omitempty"`
	UpdatedAt string  `json:"updatedAt,omitempty"`
}

// TeamMember はチームメンバー。
type TeamMember struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Role        string  `json:"role"`
	Bio         string  `json:"bio"`
	PhotoURL    string  `json:"photoUrl"`
	LinkedInURL string  `json:"linkedinUrl"`
	IsActive    bool    `json:"isActive"`
	Order       float64 `json:"order"`
	CreatedAt   string  `json:"createdAt,omitempty"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// BlogPost はブログ記事。Bodyはサニタイズ済みHTML。
type BlogPost struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Body        string   `json:"body"`
	Author      string   `json:"author"`
	CoverImage  string   `json:"coverImage"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
	PublishedAt string   `json:"publishedAt"`
	Order       float64  `json:"order"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
}

// LegalDocument は規約類（terms, privacy, refund, safety）。Bodyはサニタイズ済みHTML。
type LegalDocument struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	EffectiveDate string `json:"effectiveDate"`
	CreatedAt     string `json:"createdAt,omitempty"`
	UpdatedAt     string `json:"updatedAt,omitempty"`
}
