package security

import "crypto/subtle"

// paddingSentinel は長さの異なるオペランドを揃えるための埋め草バイト。
// 長さ一致ビットを別に畳み込むため、値そのものは結果に影響しない。
const paddingSentinel byte = 0xff

// TimingSafeEqual は2つの文字列が等しいかを定数時間で判定する。
// ページゲート、APIゲート、管理者資格情報の照合はすべてこの関数を使用する。
//
// 両オペランドを長い方の長さまで埋め草バイトで拡張し、全バイトのXORを蓄積する。
// 長さ不一致でも途中で返らず、最後に長さ一致ビットを結果に畳み込む。
// 比較に要する時間から、どこで（あるいは本当に）異なるかは漏れない。
func TimingSafeEqual(a, b string) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var diff byte
	for i := 0; i < n; i++ {
		x := paddingSentinel
		if i < len(a) {
			x = a[i]
		}
		y := paddingSentinel
		if i < len(b) {
			y = b[i]
		}
		diff |= x ^ y
	}

	sameLength := subtle.ConstantTimeEq(int32(len(a)), int32(len(b)))
	sameBytes := subtle.ConstantTimeByteEq(diff, 0)
	return sameLength&sameBytes == 1
}
