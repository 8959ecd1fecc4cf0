package platform

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ejwen/inkroute/internal/util"
)

// Mastodon posts statuses to a Mastodon instance via its REST API.
type Mastodon struct {
	instanceURL string
	accessToken string
	client      *http.Client
	logger      *slog.Logger
}

// NewMastodon creates a Mastodon adapter for the given instance and token.
func NewMastodon(instanceURL, accessToken string, client *http.Client, logger *slog.Logger) *Mastodon {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mastodon{
		instanceURL: strings.TrimSuffix(instanceURL, "/"),
		accessToken: accessToken,
		client:      client,
		logger:      logger.With("component", "mastodon_poster"),
	}
}

// Post publishes text as a new status.
func (m *Mastodon) Post(ctx context.Context, text string) error {
	if m.instanceURL == "" || m.accessToken == "" {
		return fmt.Errorf("mastodon: missing instance URL or access token")
	}

	form := url.Values{"status": {text}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.instanceURL+"/api/v1/statuses", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("mastodon: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mastodon: post status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mastodon: post status failed: status %d, response %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	m.logger.Info("Posted to Mastodon", "instance", m.instanceURL, "text_preview", util.Truncate(text, 30))
	return nil
}
