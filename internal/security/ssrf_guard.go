package security

import (
	"errors"
	"fmt"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/doyensec/safeurl"
)

// SSRFGuardService は外部IDトークン検証エンドポイントへの送信を保護するインターフェース。
type SSRFGuardService interface {
	// NewSafeClient はトークン検証用のHTTPクライアントを生成する。
	// 接続先IPはDNS解決後にダイヤラーで検査される。
	NewSafeClient(timeout time.Duration) *http.Client

	// ValidateURL は設定されたエンドポイントURLを起動時に検証する。
	ValidateURL(rawURL string) error
}

// ErrUnsafeEndpoint はエンドポイントURLが送信先として許可されない場合のエラー。
var ErrUnsafeEndpoint = errors.New("unsafe endpoint")

// tokenEndpointPort はトークン検証に使うポート。TLS以外は許可しない。
const tokenEndpointPort = 443

// blockedPrefixes はIPリテラルで指定された場合に拒否するアドレス範囲。
var blockedPrefixes = []netip.Prefix{
	netip.MustParsePrefix("0.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("100.64.0.0/10"),
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("169.254.0.0/16"), // メタデータIPを含む
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
	netip.MustParsePrefix("fe80::/10"),
}

type ssrfGuard struct{}

// NewSSRFGuard はSSRFGuardServiceの新しいインスタンスを生成する。
func NewSSRFGuard() *ssrfGuard {
	return &ssrfGuard{}
}

// NewSafeClient はhttps/443のみ許可するsafeurlクライアントを生成する。
// プライベート、ループバック、リンクローカルへの接続はsafeurlの既定で拒否される。
func (g *ssrfGuard) NewSafeClient(timeout time.Duration) *http.Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("https").
		SetAllowedPorts(tokenEndpointPort).
		Build()

	return safeurl.Client(cfg).Client
}

// ValidateURL はDNS解決を伴わずにエンドポイントURLを検査する。
// https以外のスキーム、443以外の明示ポート、ユーザー情報付きURL、
// ブロック対象のIPリテラル、localhostは拒否する。
func (g *ssrfGuard) ValidateURL(rawURL string) error {
	if rawURL == "" {
		return fmt.Errorf("%w: empty URL", ErrUnsafeEndpoint)
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeEndpoint, err)
	}
	if !strings.EqualFold(u.Scheme, "https") {
		return fmt.Errorf("%w: scheme %q is not https", ErrUnsafeEndpoint, u.Scheme)
	}
	if u.User != nil {
		return fmt.Errorf("%w: userinfo is not allowed", ErrUnsafeEndpoint)
	}
	if port := u.Port(); port != "" && port != fmt.Sprint(tokenEndpointPort) {
		return fmt.Errorf("%w: port %s is not allowed", ErrUnsafeEndpoint, port)
	}

	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: empty host", ErrUnsafeEndpoint)
	}
	if strings.EqualFold(host, "localhost") || strings.HasSuffix(strings.ToLower(host), ".localhost") {
		return fmt.Errorf("%w: host %s", ErrUnsafeEndpoint, host)
	}

	if addr, err := netip.ParseAddr(host); err == nil && isBlockedAddr(addr) {
		return fmt.Errorf("%w: address %s", ErrUnsafeEndpoint, addr)
	}
	return nil
}

func isBlockedAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	if addr.IsUnspecified() || addr.IsMulticast() {
		return true
	}
	for _, p := range blockedPrefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}
