package password

import (
	"strings"
	"testing"
)

func TestHashMatchesStoredDigests(t *testing.T) {
	h := NewHasher("")
	want := "6886073ce91d641484c10b849063e9263a68d8e5098c2924e1873b83dd777d36"
	if got := h.Hash("secret123"); got != want {
		t.Fatalf("Hash() = %q, want %q", got, want)
	}
}

func TestHashUsesConfiguredSalt(t *testing.T) {
	h := NewHasher("pepper")
	want := "cc61c04e90bf79335ed56e759950a9563d530a45342f57259181dc5de78649bb"
	if got := h.Hash("secret123"); got != want {
		t.Fatalf("Hash() = %q, want %q", got, want)
	}
}

func TestVerify(t *testing.T) {
	h := NewHasher("")
	digest := h.Hash("open sesame")
	tests := []struct {
		name     string
		password string
		digest   string
		want     bool
	}{
		{"match", "open sesame", digest, true},
		{"uppercase digest", "open sesame", "  " + strings.ToUpper(digest) + " ", true},
		{"wrong password", "open sesame!", digest, false},
		{"empty digest", "open sesame", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := h.Verify(tc.password, tc.digest); got != tc.want {
				t.Fatalf("Verify() = %v, want %v", got, tc.want)
			}
		})
	}
}
