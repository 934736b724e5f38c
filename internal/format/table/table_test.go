package table

import "testing"

func TestFormatPadsToMinimumWidth(t *testing.T) {
	rows := [][]string{
		{"March 01 2024", "Beta"},
		{"January 01 2024", "Alpha"},
	}
	got := Format(rows, []Column{{MinWidth: 20}, {}})
	want := []string{
		"March 01 2024        Beta",
		"January 01 2024      Alpha",
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestFormatUsesCellWidth(t *testing.T) {
	rows := [][]string{
		{"日本", "x"},
		{"abc", "y"},
	}
	got := Format(rows, nil)
	if got[0] != "日本 x" {
		t.Fatalf("expected wide runes measured as two cells, got %q", got[0])
	}
	if got[1] != "abc  y" {
		t.Fatalf("unexpected padding %q", got[1])
	}
}

func TestFormatRightAlignAndRaggedRows(t *testing.T) {
	rows := [][]string{
		{"1", "a"},
		{"100"},
	}
	got := Format(rows, []Column{{Align: AlignRight}})
	if got[0] != "  1 a" {
		t.Fatalf("unexpected row %q", got[0])
	}
	if got[1] != "100 " {
		t.Fatalf("unexpected ragged row %q", got[1])
	}
}

func TestFormatEmpty(t *testing.T) {
	if Format(nil, nil) != nil {
		t.Fatalf("expected nil for no rows")
	}
}
