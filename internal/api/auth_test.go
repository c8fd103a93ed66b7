package api

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"

	"github.com/murmurapp/murmur/pkg/config"
)

func TestMintToken(t *testing.T) {
	a := &AuthAPI{cfg: &config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}}

	token, err := a.mintToken(42)
	if err != nil {
		t.Fatalf("mintToken failed: %v", err)
	}

	parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		t.Fatalf("token does not parse: %v", err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil {
		t.Fatalf("subject missing: %v", err)
	}
	if subject != "42" {
		t.Errorf("subject = %q, want %q", subject, "42")
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		t.Fatalf("expiration missing: %v", err)
	}
	if remaining := time.Until(exp.Time); remaining <= 0 || remaining > time.Hour {
		t.Errorf("unexpected token lifetime: %v", remaining)
	}
}

func TestMintTokenWrongSecret(t *testing.T) {
	a := &AuthAPI{cfg: &config.AuthConfig{
		JWTSecret: "test-secret",
		TokenTTL:  time.Hour,
	}}

	token, err := a.mintToken(7)
	if err != nil {
		t.Fatalf("mintToken failed: %v", err)
	}

	_, err = jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte("other-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err == nil {
		t.Error("token verified with the wrong secret")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short ascii", "hello", 32, "hello"},
		{"exact", "abcd", 4, "abcd"},
		{"long ascii", "abcdef", 4, "abcd"},
		{"multibyte kept whole", "日本語テスト", 3, "日本語"},
		{"multibyte under limit", "日本語", 32, "日本語"},
		{"empty", "", 4, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncateRunes(%q, %d) produced invalid UTF-8", tt.in, tt.max)
			}
		})
	}
}

func TestTruncateRunesNeverSplitsRune(t *testing.T) {
	// 33 two-byte runes; a byte-wise cut at 32 would land mid-rune
	in := strings.Repeat("é", 33)
	got := truncateRunes(in, 32)
	if !utf8.ValidString(got) {
		t.Fatalf("invalid UTF-8 after truncation: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 32 {
		t.Errorf("rune count = %d, want 32", n)
	}
}
