package router_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ejwen/inkroute/internal/content"
	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/digest"
	"github.com/ejwen/inkroute/internal/router"
)

var fixedNow = time.Date(2025, 1, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	router *router.Router
	store  database.Store
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, nil)

	dir := t.TempDir()
	r := router.New(router.Deps{
		Store:          store,
		Digest:         digest.NewStore(dir, time.UTC, nil),
		Content:        content.NewStore(dir, time.UTC, nil),
		KnownPlatforms: []string{"mastodon", "threads", "telegram"},
		Now:            func() time.Time { return fixedNow },
	})
	return &fixture{router: r, store: store, dir: dir}
}

func (f *fixture) queueTexts(t *testing.T, platform string) []string {
	t.Helper()
	items, err := f.store.ListQueue(context.Background(), platform)
	if err != nil {
		t.Fatalf("ListQueue(%s): %v", platform, err)
	}
	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.Text
	}
	return texts
}

func TestRouteBlogDraft(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1001", "Hello #BLOG::draft")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}

	if res.Kind != router.KindDraft {
		t.Errorf("kind = %q, want %q", res.Kind, router.KindDraft)
	}
	if res.Title != "Hello" {
		t.Errorf("title = %q, want %q (first line, tags stripped)", res.Title, "Hello")
	}
	if want := filepath.Join(f.dir, "drafts", "hello.md"); res.Path != want {
		t.Errorf("path = %q, want %q", res.Path, want)
	}

	data, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read document: %v", err)
	}
	doc := string(data)
	if !strings.Contains(doc, "- BLOG") {
		t.Errorf("front matter should list the BLOG tag:\n%s", doc)
	}
	if strings.Contains(doc, "#BLOG") {
		t.Errorf("tag marker leaked into document body:\n%s", doc)
	}
}

func TestRouteBlogSubtypeLastRecognizedWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1002", "Final thoughts #BLOG::draft::post")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindPost {
		t.Errorf("kind = %q, want %q (last recognized sub-token wins)", res.Kind, router.KindPost)
	}
}

func TestRouteBlogDefaultsToIdea(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1003", "A rough spark #BLOG::whatever")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindIdea {
		t.Errorf("kind = %q, want %q", res.Kind, router.KindIdea)
	}
}

func TestRouteBlogTodayDelegatesToDigest(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1004", "journal entry #BLOG::today")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindDaily {
		t.Errorf("kind = %q, want %q", res.Kind, router.KindDaily)
	}
	if res.Title != "2025-01-02 Week 2 Thursday Digest" {
		t.Errorf("title = %q, want digest title", res.Title)
	}

	data, err := os.ReadFile(filepath.Join(f.dir, "daily", "2025-01-02.md"))
	if err != nil {
		t.Fatalf("digest document missing: %v", err)
	}
	if !strings.Contains(string(data), "journal entry") {
		t.Errorf("digest missing entry text:\n%s", string(data))
	}
}

func TestRouteTopicTagTakesPriorityOverDistribution(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1005", "Both tags #BLOG::draft #SNS::mastodon")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindDraft {
		t.Errorf("kind = %q, want %q (topic tag first)", res.Kind, router.KindDraft)
	}
	if got := f.queueTexts(t, "mastodon"); len(got) != 0 {
		t.Errorf("distribution write happened despite topic priority: %v", got)
	}
}

func TestRouteSNSNamedPlatformNow(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	// Pre-existing queue content; "now" must land at the head.
	seed := database.QueueItem{Text: "older", SourceMessageID: "1", EnqueuedAt: fixedNow}
	if err := f.store.Enqueue(context.Background(), "mastodon", seed, database.ModeQueue); err != nil {
		t.Fatalf("seed enqueue: %v", err)
	}

	res, err := f.router.Route(context.Background(), "1006", "#SNS::mastodon::now check this out")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindSNS {
		t.Errorf("kind = %q, want %q", res.Kind, router.KindSNS)
	}
	if len(res.Platforms) != 1 || res.Platforms[0] != "mastodon:now" {
		t.Errorf("platforms = %v, want [mastodon:now]", res.Platforms)
	}

	got := f.queueTexts(t, "mastodon")
	if len(got) != 2 || got[0] != "check this out" {
		t.Errorf("queue = %v, want new head %q", got, "check this out")
	}
}

func TestRouteSNSWithoutPlatformTargetsAllKnown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1007", "broadcast this #SNS")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindSNS {
		t.Fatalf("kind = %q, want %q", res.Kind, router.KindSNS)
	}
	if len(res.Platforms) != 3 {
		t.Errorf("platforms = %v, want all three known platforms", res.Platforms)
	}
	for _, name := range []string{"mastodon", "threads", "telegram"} {
		if got := f.queueTexts(t, name); len(got) != 1 || got[0] != "broadcast this" {
			t.Errorf("%s queue = %v, want [broadcast this]", name, got)
		}
	}
}

func TestRouteSNSEmptyKnownSetIsNoOp(t *testing.T) {
	t.Parallel()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("open in-memory database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })
	store := database.NewStore(db, nil)

	dir := t.TempDir()
	r := router.New(router.Deps{
		Store:          store,
		Digest:         digest.NewStore(dir, time.UTC, nil),
		Content:        content.NewStore(dir, time.UTC, nil),
		KnownPlatforms: nil,
		Now:            func() time.Time { return fixedNow },
	})

	res, err := r.Route(context.Background(), "1008", "#SNS nothing to target")
	if err != nil {
		t.Fatalf("Route should accept the message: %v", err)
	}
	if res.Kind != router.KindNone {
		t.Errorf("kind = %q, want %q", res.Kind, router.KindNone)
	}
}

func TestRouteUntaggedStoresThought(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1009", "a loose thought without tags")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Kind != router.KindUntagged {
		t.Errorf("kind = %q, want %q", res.Kind, router.KindUntagged)
	}

	thoughts, err := f.store.ListUntagged(context.Background())
	if err != nil {
		t.Fatalf("ListUntagged: %v", err)
	}
	if len(thoughts) != 1 {
		t.Fatalf("expected 1 stored thought, got %d", len(thoughts))
	}
	if thoughts[0].Content != "a loose thought without tags" {
		t.Errorf("content = %q, want original text", thoughts[0].Content)
	}
	if thoughts[0].MessageID != "1009" {
		t.Errorf("message id = %q, want 1009", thoughts[0].MessageID)
	}
	if thoughts[0].Language != "en" {
		t.Errorf("language = %q, want en", thoughts[0].Language)
	}
}

func TestRouteDetectsChinese(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res, err := f.router.Route(context.Background(), "1010", "今天的记录 #BLOG::today")
	if err != nil {
		t.Fatalf("Route: %v", err)
	}
	if res.Language != "zh" {
		t.Errorf("language = %q, want zh", res.Language)
	}
	if res.Title != "2025-01-02 第2周 星期四" {
		t.Errorf("title = %q, want localized digest title", res.Title)
	}
}
