package ui

import (
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	esc = 0x1b
	del = 0x7f
)

// DecodeKeys splits one chunk of terminal input into key tokens, in order.
//
// A lone ESC is the escape key. ESC followed by '[' or 'O' starts a CSI or
// SS3 sequence, which is returned whole as a single opaque rune token. ESC
// followed by anything else is that key with Alt set. Control bytes map to
// their bubbletea key types and every other UTF-8 rune is its own token.
func DecodeKeys(raw []byte) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, 0, len(raw))
	for i := 0; i < len(raw); {
		b := raw[i]
		if b == esc {
			n, k := decodeEscape(raw[i:])
			keys = append(keys, k)
			i += n
			continue
		}
		n, k := decodeOne(raw[i:])
		keys = append(keys, k)
		i += n
	}
	return keys
}

func decodeEscape(raw []byte) (int, tea.KeyMsg) {
	if len(raw) == 1 {
		return 1, tea.KeyMsg{Type: tea.KeyEscape}
	}
	switch raw[1] {
	case '[':
		n := csiLen(raw)
		return n, opaque(raw[:n])
	case 'O':
		n := min(3, len(raw))
		return n, opaque(raw[:n])
	case esc:
		return 1, tea.KeyMsg{Type: tea.KeyEscape}
	}
	n, k := decodeOne(raw[1:])
	k.Alt = true
	return n + 1, k
}

// csiLen returns the length of the CSI sequence at the start of raw,
// including ESC '[' and the final byte. Truncated sequences run to the end.
func csiLen(raw []byte) int {
	for i := 2; i < len(raw); i++ {
		if raw[i] >= 0x40 && raw[i] <= 0x7e {
			return i + 1
		}
		if raw[i] < 0x20 || raw[i] > 0x7e {
			return i
		}
	}
	return len(raw)
}

func decodeOne(raw []byte) (int, tea.KeyMsg) {
	b := raw[0]
	if b < 0x20 || b == del {
		return 1, tea.KeyMsg{Type: tea.KeyType(b)}
	}
	r, n := utf8.DecodeRune(raw)
	if r == utf8.RuneError && n <= 1 {
		return 1, opaque(raw[:1])
	}
	if r == ' ' {
		return n, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{r}}
	}
	return n, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// opaque wraps bytes no binding can match. Invalid UTF-8 is kept as the
// replacement rune so the token still has a non-empty name.
func opaque(b []byte) tea.KeyMsg {
	runes := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		runes = append(runes, r)
		b = b[n:]
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: runes}
}

type keyMap struct {
	Quit key.Binding
	Down key.Binding
	Up   key.Binding
	Open key.Binding
	Back key.Binding
	End  key.Binding
	Top  key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c")),
	Down: key.NewBinding(key.WithKeys("j")),
	Up:   key.NewBinding(key.WithKeys("k")),
	Open: key.NewBinding(key.WithKeys("enter")),
	Back: key.NewBinding(key.WithKeys("esc", "backspace")),
	End:  key.NewBinding(key.WithKeys("G")),
	Top:  key.NewBinding(key.WithKeys("g")),
}

// keyName lets a stored key string be matched against bindings.
type keyName string

func (k keyName) String() string { return string(k) }
