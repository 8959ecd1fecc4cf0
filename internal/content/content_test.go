package content_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ejwen/inkroute/internal/content"
)

var fixedDate = time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

func newStore(t *testing.T) (*content.Store, string) {
	t.Helper()
	dir := t.TempDir()
	return content.NewStore(dir, time.UTC, nil), dir
}

func TestCreateDraft(t *testing.T) {
	t.Parallel()

	store, dir := newStore(t)

	title, path, err := store.Create(content.SubtypeDraft, "My first draft\n\nwith a body paragraph", []string{"BLOG"}, "en", fixedDate)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if title != "My first draft" {
		t.Errorf("title = %q, want %q", title, "My first draft")
	}
	if want := filepath.Join(dir, "drafts", "my-first-draft.md"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc := string(data)

	for _, want := range []string{"title: My first draft", "type: blog", "draft: true", "- BLOG", "language: en", "with a body paragraph"} {
		if !strings.Contains(doc, want) {
			t.Errorf("document missing %q:\n%s", want, doc)
		}
	}
}

func TestCreatePostIsNotDraft(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	_, path, err := store.Create(content.SubtypePost, "Shipping today", nil, "en", fixedDate)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if filepath.Base(filepath.Dir(path)) != "posts" {
		t.Errorf("post document in wrong directory: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	if !strings.Contains(string(data), "draft: false") {
		t.Errorf("post should not be a draft:\n%s", string(data))
	}
}

func TestCreateIdeaDefaultDir(t *testing.T) {
	t.Parallel()

	store, dir := newStore(t)

	_, path, err := store.Create(content.SubtypeIdea, "Random spark", nil, "en", fixedDate)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if want := filepath.Join(dir, "ideas", "random-spark.md"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}

func TestCreateCJKTitleFallsBackToTimestampSlug(t *testing.T) {
	t.Parallel()

	store, dir := newStore(t)

	title, path, err := store.Create(content.SubtypeIdea, "今天的想法", nil, "zh", fixedDate)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if title != "今天的想法" {
		t.Errorf("title = %q, want original CJK line", title)
	}
	if want := filepath.Join(dir, "ideas", "2025-01-02-150405.md"); path != want {
		t.Errorf("path = %q, want timestamp slug %q", path, want)
	}
}

func TestCreateSlugCollisionGetsSuffix(t *testing.T) {
	t.Parallel()

	store, dir := newStore(t)

	if _, _, err := store.Create(content.SubtypeIdea, "Same title", nil, "en", fixedDate); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, path, err := store.Create(content.SubtypeIdea, "Same title", nil, "en", fixedDate)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if want := filepath.Join(dir, "ideas", "same-title-2.md"); path != want {
		t.Errorf("collision path = %q, want %q", path, want)
	}
}

func TestCreateRejectsEmptyText(t *testing.T) {
	t.Parallel()

	store, _ := newStore(t)

	if _, _, err := store.Create(content.SubtypeDraft, "   \n  ", nil, "en", fixedDate); err == nil {
		t.Fatal("expected error for empty text")
	}
}
