package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agadir/agadir/internal/logging"
	"github.com/agadir/agadir/internal/logging/events"
	"gopkg.in/yaml.v3"
)

// ErrNoFrontMatter is returned for files that do not open with a --- block.
var ErrNoFrontMatter = errors.New("no front matter")

const (
	frontMatterDelim = "---\n"
	dateLayout       = "2/1/2006"
	assetsDir        = "assets"
)

// Document is one post. Documents are immutable once the catalog is built.
type Document struct {
	ID       int
	Title    string
	Created  time.Time
	Modified time.Time
	Body     string
	Source   string
}

// Height returns the number of lines in the formatted body.
func (d Document) Height() int {
	if d.Body == "" {
		return 0
	}
	return strings.Count(d.Body, "\n") + 1
}

// TocEntry is a row of the table of contents.
type TocEntry struct {
	Date  time.Time
	Title string
}

// Catalog holds the documents and the date sorted table of contents.
type Catalog struct {
	docs []Document
	toc  []TocEntry
}

type frontMatter struct {
	Title      string `yaml:"title"`
	CreatedAt  string `yaml:"created_at"`
	ModifiedAt string `yaml:"modified_at"`
}

// New builds a catalog from docs in the given order. IDs are reassigned to
// the position in docs; the TOC is sorted newest first with ties kept in
// catalog order.
func New(docs []Document) *Catalog {
	c := &Catalog{
		docs: make([]Document, len(docs)),
		toc:  make([]TocEntry, len(docs)),
	}
	seen := make(map[string]int, len(docs))
	for i, d := range docs {
		d.ID = i
		c.docs[i] = d
		c.toc[i] = TocEntry{Date: d.Created, Title: d.Title}
		seen[d.Title]++
	}
	sort.SliceStable(c.toc, func(i, j int) bool {
		return c.toc[i].Date.After(c.toc[j].Date)
	})
	for title, n := range seen {
		if n > 1 {
			logging.Logger().Warn().Str("title", title).Int("count", n).Msg("duplicate document title; lookups resolve to the first")
		}
	}
	return c
}

// Load reads every document in dir. Unreadable or malformed files are
// logged and skipped. Only a failure to list dir is returned.
func Load(dir string, f Formatter) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read posts directory: %w", err)
	}
	var docs []Document
	for _, entry := range entries {
		name := entry.Name()
		if name == assetsDir {
			continue
		}
		if entry.IsDir() {
			events.Catalog.Skip(name, "directory")
			continue
		}
		doc, err := loadFile(filepath.Join(dir, name), f)
		if err != nil {
			logging.Logger().Warn().Err(err).Str("file", name).Msg("skipping document")
			events.Catalog.Skip(name, err.Error())
			continue
		}
		docs = append(docs, doc)
	}
	c := New(docs)
	events.Catalog.Loaded(dir, len(docs))
	return c, nil
}

func loadFile(path string, f Formatter) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	doc, body, err := parse(string(raw))
	if err != nil {
		return Document{}, err
	}
	formatted, err := f.Format(body)
	if err != nil {
		return Document{}, err
	}
	doc.Body = strings.TrimRight(formatted, "\n")
	doc.Source = filepath.Base(path)
	return doc, nil
}

// parse splits a file into its metadata and raw body.
func parse(text string) (Document, string, error) {
	rest, ok := strings.CutPrefix(text, frontMatterDelim)
	if !ok {
		return Document{}, "", ErrNoFrontMatter
	}
	idx := strings.Index(rest, frontMatterDelim)
	if idx < 0 {
		return Document{}, "", ErrNoFrontMatter
	}
	var meta frontMatter
	if err := yaml.Unmarshal([]byte(rest[:idx]), &meta); err != nil {
		return Document{}, "", fmt.Errorf("parse front matter: %w", err)
	}
	if strings.TrimSpace(meta.Title) == "" {
		return Document{}, "", errors.New("front matter: missing title")
	}
	created, err := time.Parse(dateLayout, strings.TrimSpace(meta.CreatedAt))
	if err != nil {
		return Document{}, "", fmt.Errorf("front matter: created_at %q is not dd/mm/yyyy", meta.CreatedAt)
	}
	modified, err := time.Parse(dateLayout, strings.TrimSpace(meta.ModifiedAt))
	if err != nil {
		return Document{}, "", fmt.Errorf("front matter: modified_at %q is not dd/mm/yyyy", meta.ModifiedAt)
	}
	body := strings.TrimPrefix(rest[idx+len(frontMatterDelim):], "\n")
	return Document{Title: meta.Title, Created: created, Modified: modified}, body, nil
}

// Toc returns the table of contents. Callers must not modify it.
func (c *Catalog) Toc() []TocEntry {
	if c == nil {
		return nil
	}
	return c.toc
}

// Documents returns the documents in catalog order. Callers must not modify it.
func (c *Catalog) Documents() []Document {
	if c == nil {
		return nil
	}
	return c.docs
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.docs)
}

// ByTitle returns the first document, in catalog order, whose title is title.
func (c *Catalog) ByTitle(title string) (Document, bool) {
	if c == nil {
		return Document{}, false
	}
	for _, d := range c.docs {
		if d.Title == title {
			return d, true
		}
	}
	return Document{}, false
}

// Selected resolves the document behind toc index i.
func (c *Catalog) Selected(i int) (Document, bool) {
	toc := c.Toc()
	if i < 0 || i >= len(toc) {
		return Document{}, false
	}
	return c.ByTitle(toc[i].Title)
}
