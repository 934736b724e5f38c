package render

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestFirstRenderRepaintsEverything(t *testing.T) {
	r := New(10, 3)
	var buf bytes.Buffer
	n, err := r.Render(&buf, "a\nb\nc")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := buf.String()
	if n != len(out) {
		t.Fatalf("expected byte count %d, got %d", len(out), n)
	}
	if !strings.HasPrefix(out, "\x1b[?25l\x1b[2J") {
		t.Fatalf("expected hide cursor and clear, got %q", out)
	}
	for i, want := range []string{"\x1b[1;1Ha\x1b[m", "\x1b[2;1Hb\x1b[m", "\x1b[3;1Hc\x1b[m"} {
		if !strings.Contains(out, want) {
			t.Fatalf("row %d: expected %q in %q", i, want, out)
		}
	}
	if strings.Contains(out, "\x1b[2K") {
		t.Fatalf("rows on a cleared screen need no erase")
	}
}

func TestUnchangedFrameWritesNothing(t *testing.T) {
	r := New(10, 2)
	var buf bytes.Buffer
	if _, err := r.Render(&buf, "x\ny"); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	for i := 0; i < 3; i++ {
		n, err := r.Render(&buf, "x\ny")
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 || buf.Len() != 0 {
			t.Fatalf("expected no output for an unchanged frame, got %q", buf.String())
		}
	}
}

func TestOnlyChangedRowsAreWritten(t *testing.T) {
	r := New(10, 3)
	var buf bytes.Buffer
	if _, err := r.Render(&buf, "a\nb\nc"); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if _, err := r.Render(&buf, "a\nB\nc"); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "\x1b[2;1H\x1b[2KB\x1b[m" {
		t.Fatalf("unexpected diff output %q", got)
	}
}

func TestShorterFrameErasesStaleRows(t *testing.T) {
	r := New(10, 3)
	var buf bytes.Buffer
	if _, err := r.Render(&buf, "a\nb\nc"); err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	if _, err := r.Render(&buf, "a"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "\x1b[2;1H\x1b[2K") || !strings.Contains(out, "\x1b[3;1H\x1b[2K") {
		t.Fatalf("expected rows 2 and 3 erased, got %q", out)
	}
}

func TestResizeAndInvalidateForceRepaint(t *testing.T) {
	r := New(10, 2)
	var buf bytes.Buffer
	_, _ = r.Render(&buf, "a\nb")

	r.Resize(10, 2)
	buf.Reset()
	_, _ = r.Render(&buf, "a\nb")
	if buf.Len() != 0 {
		t.Fatalf("same size must not repaint")
	}

	r.Resize(20, 5)
	if w, h := r.Size(); w != 20 || h != 5 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
	buf.Reset()
	_, _ = r.Render(&buf, "a\nb")
	if !strings.Contains(buf.String(), "\x1b[2J") {
		t.Fatalf("expected full repaint after resize")
	}

	r.Invalidate()
	buf.Reset()
	_, _ = r.Render(&buf, "a\nb")
	if !strings.Contains(buf.String(), "\x1b[2J") {
		t.Fatalf("expected full repaint after invalidate")
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("broken pipe") }

func TestWriteErrorForcesRepaint(t *testing.T) {
	r := New(10, 1)
	if _, err := r.Render(failingWriter{}, "a"); err == nil {
		t.Fatalf("expected write error")
	}
	var buf bytes.Buffer
	_, _ = r.Render(&buf, "a")
	if !strings.Contains(buf.String(), "\x1b[2J") {
		t.Fatalf("expected full repaint after a failed write")
	}
}

func TestResetShowsCursor(t *testing.T) {
	r := New(10, 1)
	var buf bytes.Buffer
	_, _ = r.Render(&buf, "a")
	buf.Reset()
	if _, err := r.Reset(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(buf.String(), "\x1b[2J\x1b[H\x1b[?25h") {
		t.Fatalf("unexpected reset output %q", buf.String())
	}
	buf.Reset()
	_, _ = r.Render(&buf, "a")
	if !strings.Contains(buf.String(), "\x1b[2J") {
		t.Fatalf("expected full repaint after reset")
	}
}

func TestClear(t *testing.T) {
	var buf bytes.Buffer
	if _, err := Clear(&buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\x1b[?25l\x1b[2J\x1b[H" {
		t.Fatalf("unexpected clear output %q", buf.String())
	}
}
