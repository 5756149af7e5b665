// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TimingSafeEqual は認証ゲートと資格情報の照合で共有する定数時間比較。
// ContentSanitizerService はCMSから書き込まれるリッチテキスト（ブログ本文、
// 規約本文など）を保存前にサニタイズする。
// SSRFGuardService は外部IDトークン検証で使う送信HTTPクライアントを提供する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// ContentSanitizerService はHTMLコンテンツのサニタイズ機能のインターフェースを定義する。
type ContentSanitizerService interface {
	// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
	// 許可タグ（h2, h3, h4, p, br, a, ul, ol, li, blockquote, strong, em, img）のみを通過させ、
	// script, iframe, styleタグおよびon*イベント属性を除去する。
	// 空文字列の入力には空文字列を返す。同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
}

// contentSanitizer はContentSanitizerServiceの実装。
// bluemondayのポリシーは並行利用に対して安全。
type contentSanitizer struct {
	policy *bluemonday.Policy
}

// NewContentSanitizer はCMS向けのbluemondayポリシーを構築する。
// ポリシーの内容:
//   - 許可タグ: h2, h3, h4, p, br, ul, ol, li, blockquote, strong, em, a, img
//   - URLスキーム: https, mailto, tel と相対URL（サイト内リンク用）
//   - 外部リンク: target="_blank" と rel="noopener noreferrer" を付与
//   - img: src と alt のみ
func NewContentSanitizer() *contentSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"h2", "h3", "h4",
		"p", "br", "ul", "ol", "li",
		"blockquote", "strong", "em",
	)

	p.AllowURLSchemes("https", "mailto", "tel")
	p.AllowRelativeURLs(true)

	p.AllowAttrs("href").OnElements("a")
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	p.AllowAttrs("src", "alt").OnElements("img")

	return &contentSanitizer{
		policy: p,
	}
}

// Sanitize はHTMLコンテンツをサニタイズして安全なHTMLを返す。
func (s *contentSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}
