package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

// UnknownClientIP は識別ヘッダーを持たないクライアントに割り当てる値。
// これらのクライアントはすべて同じバケットを共有する。
const UnknownClientIP = "unknown"

// ClientIP はリクエストからレート制限キー用のクライアントIPを取り出す。
// X-Forwarded-Forの先頭要素、X-Real-IP、UnknownClientIPの順に採用する。
//
// X-Forwarded-Forはオリジンへ直接到達できるクライアントなら偽装できる。
// 信頼できるリバースプロキシがヘッダーを付け直す構成を前提とする。
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	return UnknownClientIP
}

// RemoteAddrIP はプロキシヘッダーを無視し、TCP接続元のアドレスを返す。
// プロキシを介さずに公開する構成で使用する。
func RemoteAddrIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return UnknownClientIP
	}
	return host
}

// IPResolver はクライアントIPの取り出し方を表す。
type IPResolver func(r *http.Request) string

// NewIPResolver はプロキシヘッダーを信頼するかどうかに応じてIPResolverを返す。
func NewIPResolver(trustProxyHeaders bool) IPResolver {
	if trustProxyHeaders {
		return ClientIP
	}
	return RemoteAddrIP
}
