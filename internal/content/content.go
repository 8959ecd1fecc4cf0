// Package content writes topic (blog) markdown documents for the draft,
// post, and idea subtypes. Each document gets YAML front matter with a title
// derived from the first line of the text and a slug-based filename.
package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ejwen/inkroute/internal/storage"
	"github.com/ejwen/inkroute/internal/util"
)

const maxTitleLen = 80

// Subtype is the kind of topic document being created.
type Subtype string

const (
	SubtypeDraft Subtype = "draft"
	SubtypePost  Subtype = "post"
	SubtypeIdea  Subtype = "idea"
)

func (s Subtype) subdir() string {
	switch s {
	case SubtypeDraft:
		return "drafts"
	case SubtypePost:
		return "posts"
	default:
		return "ideas"
	}
}

type frontMatter struct {
	Title    string   `yaml:"title"`
	Date     string   `yaml:"date"`
	Type     string   `yaml:"type"`
	Draft    bool     `yaml:"draft"`
	Tags     []string `yaml:"tags,omitempty"`
	Language string   `yaml:"language,omitempty"`
}

// Store writes topic documents under <content dir>/{drafts,posts,ideas}.
type Store struct {
	dir    string
	loc    *time.Location
	logger *slog.Logger
}

// NewStore creates a topic content store rooted at dir, with document dates
// computed in loc.
func NewStore(dir string, loc *time.Location, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		loc:    loc,
		logger: logger.With("component", "content_store"),
	}
}

// Create writes a new topic document of the given subtype. The text is
// expected to already have its tag markers stripped. Only the post subtype
// is published immediately; drafts and ideas keep draft status. Returns the
// derived title and the document path.
func (s *Store) Create(subtype Subtype, text string, tags []string, language string, now time.Time) (string, string, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return "", "", fmt.Errorf("content: empty text for %s document", subtype)
	}

	local := now.In(s.loc)
	title := deriveTitle(body)

	slug := util.Slugify(title)
	if slug == "" {
		// CJK-only titles slugify to nothing; fall back to a timestamp slug.
		slug = local.Format("2006-01-02-150405")
	}

	fm := frontMatter{
		Title:    title,
		Date:     local.Format(time.RFC3339),
		Type:     "blog",
		Draft:    subtype != SubtypePost,
		Tags:     tags,
		Language: language,
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return "", "", fmt.Errorf("content: marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(head)
	b.WriteString("---\n\n")
	b.WriteString(body)
	b.WriteString("\n")

	path, err := s.uniquePath(subtype, slug)
	if err != nil {
		return "", "", err
	}
	if err := storage.WriteFile(path, []byte(b.String())); err != nil {
		return "", "", fmt.Errorf("content: write %s: %w", path, err)
	}

	s.logger.Info("Created topic document", "subtype", string(subtype), "path", path, "title", title)
	return title, path, nil
}

// uniquePath returns dir/<subdir>/<slug>.md, adding a numeric suffix when a
// document with that slug already exists.
func (s *Store) uniquePath(subtype Subtype, slug string) (string, error) {
	base := filepath.Join(s.dir, subtype.subdir())
	path := filepath.Join(base, slug+".md")
	for i := 2; ; i++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", fmt.Errorf("content: stat %s: %w", path, err)
		}
		path = filepath.Join(base, fmt.Sprintf("%s-%d.md", slug, i))
	}
}

func deriveTitle(body string) string {
	line := body
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return util.Truncate(strings.TrimSpace(line), maxTitleLen)
}
