package digest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ejwen/inkroute/internal/digest"
)

// fixedDate is a Thursday in ISO week 1 of 2025.
var fixedDate = time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T) (*digest.Store, string) {
	t.Helper()
	dir := t.TempDir()
	return digest.NewStore(dir, time.UTC, nil), dir
}

func TestTitle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		date     time.Time
		language string
		expected string
	}{
		{
			name:     "english title with incremented ISO week",
			date:     fixedDate,
			language: "en",
			expected: "2025-01-02 Week 2 Thursday Digest",
		},
		{
			name:     "chinese title",
			date:     fixedDate,
			language: "zh",
			expected: "2025-01-02 第2周 星期四",
		},
		{
			name:     "late-year week number",
			date:     time.Date(2025, 12, 22, 8, 0, 0, 0, time.UTC), // Monday, ISO week 52
			language: "en",
			expected: "2025-12-22 Week 53 Monday Digest",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := digest.Title(tc.date, tc.language); got != tc.expected {
				t.Errorf("Title(%v, %q) = %q, want %q", tc.date, tc.language, got, tc.expected)
			}
		})
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	t.Parallel()

	store, dir := newStore(t)

	created, err := store.Ensure(fixedDate, "en")
	if err != nil {
		t.Fatalf("first Ensure: %v", err)
	}
	if !created {
		t.Error("first Ensure should report created=true")
	}

	created, err = store.Ensure(fixedDate, "en")
	if err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if created {
		t.Error("second Ensure should report created=false")
	}

	entries, err := os.ReadDir(filepath.Join(dir, "daily"))
	if err != nil {
		t.Fatalf("read daily dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one digest document, found %d", len(entries))
	}

	data, err := os.ReadFile(filepath.Join(dir, "daily", "2025-01-02.md"))
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "Week 2 Thursday Digest") || !strings.Contains(doc, "title:") {
		t.Errorf("front matter missing localized title:\n%s", doc)
	}
	if !strings.Contains(doc, "type: daily") {
		t.Errorf("front matter missing type:\n%s", doc)
	}
	if !strings.Contains(doc, "No entries yet.") {
		t.Errorf("placeholder section missing:\n%s", doc)
	}
}

func TestAppendCreatesThenAppendsInOrder(t *testing.T) {
	t.Parallel()

	store, dir := newStore(t)

	title, path, err := store.Append(fixedDate, "first thought", "en")
	if err != nil {
		t.Fatalf("first Append: %v", err)
	}
	if title != "2025-01-02 Week 2 Thursday Digest" {
		t.Errorf("unexpected title %q", title)
	}
	if path != filepath.Join(dir, "daily", "2025-01-02.md") {
		t.Errorf("unexpected path %q", path)
	}

	later := fixedDate.Add(95 * time.Minute)
	if _, _, err := store.Append(later, "second thought", "en"); err != nil {
		t.Fatalf("second Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	doc := string(data)

	first := strings.Index(doc, "## 09:30")
	second := strings.Index(doc, "## 11:05")
	if first < 0 || second < 0 {
		t.Fatalf("expected two timestamped sections:\n%s", doc)
	}
	if first > second {
		t.Errorf("sections out of submission order:\n%s", doc)
	}
	if !strings.Contains(doc, "first thought") || !strings.Contains(doc, "second thought") {
		t.Errorf("append overwrote an earlier entry:\n%s", doc)
	}
}

func TestAppendNormalizesParagraphs(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	_, path, err := store.Append(fixedDate, "line one\nline two\n\n\nline three  ", "en")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if !strings.Contains(string(data), "line one\n\nline two\n\nline three") {
		t.Errorf("paragraphs not normalized:\n%s", string(data))
	}
}

func TestAppendUsesConfiguredZone(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Vancouver")
	if err != nil {
		t.Skipf("zone database unavailable: %v", err)
	}
	store := digest.NewStore(t.TempDir(), loc, nil)

	// 03:00 UTC on Jan 2 is 19:00 on Jan 1 in Vancouver; the entry must land
	// in the Jan 1 document with a local timestamp.
	utc := time.Date(2025, 1, 2, 3, 0, 0, 0, time.UTC)
	_, path, err := store.Append(utc, "west coast evening", "en")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if filepath.Base(path) != "2025-01-01.md" {
		t.Errorf("expected routing day 2025-01-01, got %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read digest: %v", err)
	}
	if !strings.Contains(string(data), "## 19:00") {
		t.Errorf("expected local timestamp 19:00:\n%s", string(data))
	}
}
