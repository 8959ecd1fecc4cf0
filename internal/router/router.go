// Package router decides which sink receives an inbound message based on
// its parsed tags, performs the sink write, and returns a structured result.
// Policy, in fixed priority order: topic tag first, then distribution tag,
// then the untagged fallback (store the thought for a later reminder).
package router

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ejwen/inkroute/internal/content"
	"github.com/ejwen/inkroute/internal/database"
	"github.com/ejwen/inkroute/internal/digest"
	"github.com/ejwen/inkroute/internal/tag"
	"github.com/ejwen/inkroute/internal/util"
)

// Tag names recognized by the routing policy.
const (
	TopicTag        = "BLOG"
	DistributionTag = "SNS"
)

// Kind identifies which sink a message was routed to.
type Kind string

const (
	KindDaily    Kind = "daily"
	KindDraft    Kind = "blog/draft"
	KindPost     Kind = "blog/post"
	KindIdea     Kind = "blog/idea"
	KindSNS      Kind = "sns"
	KindUntagged Kind = "untagged"
	// KindNone marks an accepted message that produced no routed write, e.g.
	// a distribution tag resolving to an empty platform set.
	KindNone Kind = "none"
)

// Result describes a completed routing decision and the write it performed.
type Result struct {
	Kind     Kind
	Title    string
	Language string
	// Platforms lists "<platform>:<mode>" entries for KindSNS.
	Platforms []string
	// Path is the document file touched, when the sink is file-backed.
	Path string
}

// Deps carries the router's collaborators. The router owns orchestration
// only; all persistence lives behind the stores.
type Deps struct {
	Logger  *slog.Logger
	Store   database.Store
	Digest  *digest.Store
	Content *content.Store
	// KnownPlatforms are the platform names configured for distribution.
	KnownPlatforms []string
	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

// Router routes one message at a time. It assumes a single writer, matching
// the stores underneath it.
type Router struct {
	deps Deps
}

// New creates a Router.
func New(deps Deps) *Router {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	deps.Logger = deps.Logger.With("component", "router")
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Router{deps: deps}
}

// Route classifies text by its tags, performs the sink write, and returns
// the decision. Write failures are logged and returned; the caller receives
// a nil result in that case, never a partial one.
func (r *Router) Route(ctx context.Context, messageID, text string) (*Result, error) {
	tags := tag.Parse(text)
	language := util.DetectLanguage(text)

	switch {
	case tags.Has(TopicTag):
		return r.routeTopic(ctx, tags, text, language)
	case tags.Has(DistributionTag):
		return r.routeDistribution(ctx, messageID, tags, text, language)
	default:
		return r.routeUntagged(ctx, messageID, text, language)
	}
}

// routeTopic handles the topic (blog) tag. The subtype comes from the tag's
// sub-tokens: among the recognized keywords draft/post/today the last
// occurrence wins; anything else falls back to the idea subtype. The "today"
// keyword delegates to the daily digest instead of creating a document.
func (r *Router) routeTopic(ctx context.Context, tags tag.Tags, text, language string) (*Result, error) {
	subtype := "idea"
	for _, sub := range tags.Subs(TopicTag) {
		switch strings.ToLower(sub) {
		case "draft", "post", "today":
			subtype = strings.ToLower(sub)
		}
	}

	clean := tag.Strip(text)
	now := r.deps.Now()

	if subtype == "today" {
		title, path, err := r.deps.Digest.Append(now, clean, language)
		if err != nil {
			r.deps.Logger.ErrorContext(ctx, "Failed to append to daily digest", "error", err)
			return nil, err
		}
		return &Result{Kind: KindDaily, Title: title, Language: language, Path: path}, nil
	}

	var kind Kind
	var ctype content.Subtype
	switch subtype {
	case "draft":
		kind, ctype = KindDraft, content.SubtypeDraft
	case "post":
		kind, ctype = KindPost, content.SubtypePost
	default:
		kind, ctype = KindIdea, content.SubtypeIdea
	}

	title, path, err := r.deps.Content.Create(ctype, clean, tagNames(tags), language, now)
	if err != nil {
		r.deps.Logger.ErrorContext(ctx, "Failed to create topic document",
			"subtype", subtype, "error", err)
		return nil, err
	}
	return &Result{Kind: kind, Title: title, Language: language, Path: path}, nil
}

// routeDistribution handles the distribution tag: resolve the target
// platform set and scheduling mode from the sub-tokens, then enqueue the
// cleaned text once per platform. With no recognized platform sub-token the
// message targets all known platforms.
func (r *Router) routeDistribution(ctx context.Context, messageID string, tags tag.Tags, text, language string) (*Result, error) {
	known := make(map[string]bool, len(r.deps.KnownPlatforms))
	for _, name := range r.deps.KnownPlatforms {
		known[name] = true
	}

	mode := database.ModeQueue
	var targets []string
	seen := make(map[string]bool)
	for _, sub := range tags.Subs(DistributionTag) {
		lower := strings.ToLower(sub)
		switch {
		case lower == "now":
			mode = database.ModeNow
		case lower == "next":
			mode = database.ModeNext
		case known[lower] && !seen[lower]:
			targets = append(targets, lower)
			seen[lower] = true
		default:
			r.deps.Logger.DebugContext(ctx, "Ignoring unrecognized distribution sub-token", "sub", sub)
		}
	}
	if len(targets) == 0 {
		// No recognized platform named: fan out to every known platform.
		targets = append([]string(nil), r.deps.KnownPlatforms...)
		sort.Strings(targets)
	}
	if len(targets) == 0 {
		r.deps.Logger.InfoContext(ctx, "Distribution tag resolved to empty platform set, nothing to do")
		return &Result{Kind: KindNone, Language: language}, nil
	}

	clean := tag.Strip(text)
	item := database.QueueItem{
		Text:            clean,
		SourceMessageID: messageID,
		EnqueuedAt:      r.deps.Now().UTC(),
	}

	var routed []string
	var lastErr error
	for _, name := range targets {
		if err := r.deps.Store.Enqueue(ctx, name, item, mode); err != nil {
			// No rollback across platforms; the queues that took the item
			// keep it.
			r.deps.Logger.ErrorContext(ctx, "Failed to enqueue for platform",
				"platform", name, "error", err)
			lastErr = err
			continue
		}
		routed = append(routed, fmt.Sprintf("%s:%s", name, mode))
	}
	if len(routed) == 0 {
		return nil, fmt.Errorf("all enqueues failed: %w", lastErr)
	}

	return &Result{Kind: KindSNS, Language: language, Platforms: routed}, nil
}

// routeUntagged stores the message for the reminder task. The original text
// is kept verbatim so the user can re-send it with tags later.
func (r *Router) routeUntagged(ctx context.Context, messageID, text, language string) (*Result, error) {
	thought := &database.UntaggedThought{
		MessageID: messageID,
		Content:   text,
		Language:  language,
		CreatedAt: r.deps.Now().UTC(),
	}
	if err := r.deps.Store.SaveUntagged(ctx, thought); err != nil {
		r.deps.Logger.ErrorContext(ctx, "Failed to store untagged thought", "error", err)
		return nil, err
	}
	return &Result{Kind: KindUntagged, Language: language, Title: util.Truncate(text, 50)}, nil
}

func tagNames(tags tag.Tags) []string {
	names := make([]string, 0, len(tags))
	for name := range tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
