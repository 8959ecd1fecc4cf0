// Package digest maintains one markdown digest document per calendar date,
// merging same-day submissions into timestamped sections. Documents live
// under <content dir>/daily/YYYY-MM-DD.md with YAML front matter, and all
// dates and timestamps are computed in a fixed configured time zone rather
// than the server's local zone.
package digest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ejwen/inkroute/internal/storage"
)

const frontMatterDelim = "---"

var zhDayNames = map[time.Weekday]string{
	time.Monday:    "星期一",
	time.Tuesday:   "星期二",
	time.Wednesday: "星期三",
	time.Thursday:  "星期四",
	time.Friday:    "星期五",
	time.Saturday:  "星期六",
	time.Sunday:    "星期日",
}

// frontMatter is the YAML header of a digest document.
type frontMatter struct {
	Title string `yaml:"title"`
	Date  string `yaml:"date"`
	Type  string `yaml:"type"`
	Draft bool   `yaml:"draft"`
}

// Store writes and appends to daily digest documents. It assumes a single
// writer; concurrent appends for the same date are not safe against
// interleaving.
type Store struct {
	dir    string
	loc    *time.Location
	logger *slog.Logger
}

// NewStore creates a digest store rooted at dir (documents go to dir/daily),
// with all dates computed in loc.
func NewStore(dir string, loc *time.Location, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		dir:    dir,
		loc:    loc,
		logger: logger.With("component", "digest_store"),
	}
}

// Ensure creates the digest document for now's calendar date if it does not
// exist yet, with a localized title and a placeholder section. It is
// idempotent and reports whether it created a document.
func (s *Store) Ensure(now time.Time, language string) (bool, error) {
	local := now.In(s.loc)
	path := s.pathFor(local)

	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("digest: stat %s: %w", path, err)
	}

	var placeholder string
	if language == "zh" {
		placeholder = "## 日记\n\n今天还没有记录。\n"
	} else {
		placeholder = "## Daily Digest\n\nNo entries yet.\n"
	}

	if err := s.writeNew(local, language, placeholder); err != nil {
		return false, err
	}
	s.logger.Info("Created daily digest", "path", path, "language", language)
	return true, nil
}

// Append adds a timestamped section with the given text to now's digest
// document, creating the document first when absent. The text's whitespace
// is normalized into markdown paragraph form. Returns the digest title and
// the document path.
func (s *Store) Append(now time.Time, text, language string) (string, string, error) {
	local := now.In(s.loc)
	path := s.pathFor(local)
	title := Title(local, language)
	section := fmt.Sprintf("## %s\n\n%s\n", local.Format("15:04"), formatParagraphs(text))

	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := s.writeNew(local, language, section); err != nil {
			return "", "", err
		}
		s.logger.Info("Created daily digest with first entry", "path", path)
		return title, path, nil
	}
	if err != nil {
		return "", "", fmt.Errorf("digest: read %s: %w", path, err)
	}

	doc := string(existing)
	if !strings.HasSuffix(doc, "\n") {
		doc += "\n"
	}
	doc += "\n" + section

	if err := storage.WriteFile(path, []byte(doc)); err != nil {
		return "", "", fmt.Errorf("digest: append to %s: %w", path, err)
	}
	s.logger.Info("Appended digest entry", "path", path, "time", local.Format("15:04"))
	return title, path, nil
}

// Title returns the localized digest title for a date. The week number is
// the ISO week of year plus one, a long-standing convention of the published
// digests that readers expect to stay stable.
func Title(local time.Time, language string) string {
	dateStr := local.Format("2006-01-02")
	_, week := local.ISOWeek()
	week++

	if language == "zh" {
		return fmt.Sprintf("%s 第%d周 %s", dateStr, week, zhDayNames[local.Weekday()])
	}
	return fmt.Sprintf("%s Week %d %s Digest", dateStr, week, local.Weekday().String())
}

func (s *Store) pathFor(local time.Time) string {
	return filepath.Join(s.dir, "daily", local.Format("2006-01-02")+".md")
}

func (s *Store) writeNew(local time.Time, language, body string) error {
	fm := frontMatter{
		Title: Title(local, language),
		Date:  local.Format(time.RFC3339),
		Type:  "daily",
		Draft: false,
	}
	head, err := yaml.Marshal(fm)
	if err != nil {
		return fmt.Errorf("digest: marshal front matter: %w", err)
	}

	var b strings.Builder
	b.WriteString(frontMatterDelim + "\n")
	b.Write(head)
	b.WriteString(frontMatterDelim + "\n\n")
	b.WriteString(body)

	path := s.pathFor(local)
	if err := storage.WriteFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("digest: write %s: %w", path, err)
	}
	return nil
}

// formatParagraphs normalizes whitespace into markdown paragraph form:
// lines are trimmed, blank lines dropped, and the remaining lines joined
// with blank lines between them.
func formatParagraphs(text string) string {
	var paragraphs []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
