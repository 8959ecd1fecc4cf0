package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ejwen/inkroute/internal/util"
)

const threadsAPIBase = "https://graph.threads.net/v1.0"

// Threads posts to Meta's Threads via the Graph API. Publishing is a
// two-step flow: create a text media container, then publish it.
type Threads struct {
	userID      string
	accessToken string
	apiBase     string
	client      *http.Client
	logger      *slog.Logger
}

// NewThreads creates a Threads adapter for the given user and token.
func NewThreads(userID, accessToken string, client *http.Client, logger *slog.Logger) *Threads {
	if logger == nil {
		logger = slog.Default()
	}
	return &Threads{
		userID:      userID,
		accessToken: accessToken,
		apiBase:     threadsAPIBase,
		client:      client,
		logger:      logger.With("component", "threads_poster"),
	}
}

// Post publishes text as a new thread.
func (t *Threads) Post(ctx context.Context, text string) error {
	if t.userID == "" || t.accessToken == "" {
		return fmt.Errorf("threads: missing user id or access token")
	}

	containerID, err := t.call(ctx, fmt.Sprintf("%s/%s/threads", t.apiBase, t.userID), url.Values{
		"media_type": {"TEXT"},
		"text":       {text},
	})
	if err != nil {
		return fmt.Errorf("threads: create container: %w", err)
	}

	if _, err := t.call(ctx, fmt.Sprintf("%s/%s/threads_publish", t.apiBase, t.userID), url.Values{
		"creation_id": {containerID},
	}); err != nil {
		return fmt.Errorf("threads: publish container %s: %w", containerID, err)
	}

	t.logger.Info("Posted to Threads", "user_id", t.userID, "text_preview", util.Truncate(text, 30))
	return nil
}

// call POSTs a Graph API form request and returns the id field of the
// JSON response.
func (t *Threads) call(ctx context.Context, endpoint string, form url.Values) (string, error) {
	form.Set("access_token", t.accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d, response %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if result.ID == "" {
		return "", fmt.Errorf("response missing id: %s", strings.TrimSpace(string(body)))
	}
	return result.ID, nil
}
