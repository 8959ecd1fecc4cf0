package platform_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ejwen/inkroute/internal/platform"
)

func TestMastodonPost(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotStatus string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotStatus = r.PostFormValue("status")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"1"}`))
	}))
	defer srv.Close()

	m := platform.NewMastodon(srv.URL, "token123", srv.Client(), nil)
	if err := m.Post(context.Background(), "hello fediverse"); err != nil {
		t.Fatalf("Post: %v", err)
	}

	if gotPath != "/api/v1/statuses" {
		t.Errorf("path = %q, want /api/v1/statuses", gotPath)
	}
	if gotAuth != "Bearer token123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if gotStatus != "hello fediverse" {
		t.Errorf("status = %q", gotStatus)
	}
}

func TestMastodonPostServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":"Validation failed"}`))
	}))
	defer srv.Close()

	m := platform.NewMastodon(srv.URL, "token123", srv.Client(), nil)
	err := m.Post(context.Background(), "too long maybe")
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
	if !strings.Contains(err.Error(), "422") || !strings.Contains(err.Error(), "Validation failed") {
		t.Errorf("error should carry status and body excerpt, got: %v", err)
	}
}

func TestMastodonPostMissingCredentials(t *testing.T) {
	t.Parallel()

	m := platform.NewMastodon("", "", http.DefaultClient, nil)
	if err := m.Post(context.Background(), "text"); err == nil {
		t.Fatal("expected error with empty configuration")
	}
}
