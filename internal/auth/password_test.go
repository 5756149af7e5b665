package auth

import (
	"strings"
	"testing"
)

// テストを高速にするための軽量パラメータ。
func testArgon2Params() Argon2Params {
	return Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLen: 16, KeyLen: 32}
}

// TestHashPassword_RoundTrip はハッシュしたパスワードが検証を通ることを検証する。
func TestHashPassword_RoundTrip(t *testing.T) {
	encoded, err := HashPassword("correct horse", testArgon2Params())
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(encoded, "argon2id$v=19$m=1024,t=1,p=1$") {
		t.Errorf("encoded = %q, unexpected prefix", encoded)
	}

	ok, err := VerifyPassword("correct horse", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("VerifyPassword() = false, want true")
	}

	ok, err = VerifyPassword("wrong horse", encoded)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if ok {
		t.Error("VerifyPassword() with wrong password = true, want false")
	}
}

// TestHashPassword_UniqueSalt は同じパスワードでも異なるハッシュになることを検証する。
func TestHashPassword_UniqueSalt(t *testing.T) {
	a, err := HashPassword("pw", testArgon2Params())
	if err != nil {
		t.Fatal(err)
	}
	b, err := HashPassword("pw", testArgon2Params())
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("hashes should differ due to random salt")
	}
}

// TestHashPassword_Empty は空パスワードを拒否することを検証する。
func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword("", testArgon2Params()); err == nil {
		t.Error("expected error for empty password")
	}
}

// TestVerifyPassword_Malformed は不正な形式の文字列でエラーになることを検証する。
func TestVerifyPassword_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		encoded string
	}{
		{"empty", ""},
		{"bcrypt", "$2a$10$abcdefghijklmnopqrstuv"},
		{"wrong algorithm", "argon2i$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5"},
		{"wrong version", "argon2id$v=16$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5"},
		{"missing params", "argon2id$v=19$m=1024$c2FsdHNhbHRzYWx0$a2V5a2V5a2V5a2V5a2V5a2V5"},
		{"bad salt", "argon2id$v=19$m=1024,t=1,p=1$!!!$a2V5a2V5a2V5a2V5a2V5a2V5"},
		{"short key", "argon2id$v=19$m=1024,t=1,p=1$c2FsdHNhbHRzYWx0$a2V5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := VerifyPassword("pw", tt.encoded); err == nil {
				t.Errorf("VerifyPassword(%q) expected error", tt.encoded)
			}
		})
	}
}
