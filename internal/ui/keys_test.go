package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func keyStrings(keys []tea.KeyMsg) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

func TestDecodeKeys(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"runes", "jk", []string{"j", "k"}},
		{"lone escape", "\x1b", []string{"esc"}},
		{"double escape", "\x1b\x1b", []string{"esc", "esc"}},
		{"csi arrow", "\x1b[A", []string{"\x1b[A"}},
		{"csi with params then key", "\x1b[1;5Cq", []string{"\x1b[1;5C", "q"}},
		{"ss3", "\x1bOPj", []string{"\x1bOP", "j"}},
		{"truncated csi", "\x1b[1", []string{"\x1b[1"}},
		{"alt rune", "\x1bj", []string{"alt+j"}},
		{"interrupt", "\x03", []string{"ctrl+c"}},
		{"enter", "\r", []string{"enter"}},
		{"backspace", "\x7f", []string{"backspace"}},
		{"space", " ", []string{" "}},
		{"multibyte", "éG", []string{"é", "G"}},
		{"gg", "gg", []string{"g", "g"}},
	}
	for _, tc := range cases {
		got := keyStrings(DecodeKeys([]byte(tc.in)))
		if len(got) != len(tc.want) {
			t.Fatalf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s: token %d expected %q, got %q", tc.name, i, tc.want[i], got[i])
			}
		}
	}
}

func TestDecodeKeysInvalidUTF8IsOpaque(t *testing.T) {
	keys := DecodeKeys([]byte{0xff, 'q'})
	if len(keys) != 2 {
		t.Fatalf("expected 2 tokens, got %d", len(keys))
	}
	if keys[0].String() == "" || keys[0].String() == "q" {
		t.Fatalf("expected a non-empty opaque token, got %q", keys[0].String())
	}
	if keys[1].String() != "q" {
		t.Fatalf("expected q after the invalid byte, got %q", keys[1].String())
	}
}

func TestDecodeKeysNeverProducesSentinel(t *testing.T) {
	raw := make([]byte, 0, 256)
	for b := 0; b < 256; b++ {
		raw = append(raw, byte(b))
	}
	for _, k := range DecodeKeys(raw) {
		if k.String() == "" {
			t.Fatalf("decoded key %#v has an empty name", k)
		}
	}
}

func TestDecodeKeysEmpty(t *testing.T) {
	if len(DecodeKeys(nil)) != 0 {
		t.Fatalf("expected no tokens")
	}
}
