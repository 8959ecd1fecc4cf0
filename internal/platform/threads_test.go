package platform

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestThreadsPostTwoStepFlow(t *testing.T) {
	t.Parallel()

	var calls []string
	var publishedCreationID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		calls = append(calls, r.URL.Path)

		switch {
		case strings.HasSuffix(r.URL.Path, "/threads"):
			if got := r.PostFormValue("media_type"); got != "TEXT" {
				t.Errorf("media_type = %q, want TEXT", got)
			}
			if got := r.PostFormValue("text"); got != "a short note" {
				t.Errorf("text = %q", got)
			}
			_, _ = w.Write([]byte(`{"id":"container-9"}`))
		case strings.HasSuffix(r.URL.Path, "/threads_publish"):
			publishedCreationID = r.PostFormValue("creation_id")
			_, _ = w.Write([]byte(`{"id":"post-42"}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	th := NewThreads("user1", "tok", srv.Client(), nil)
	th.apiBase = srv.URL

	if err := th.Post(context.Background(), "a short note"); err != nil {
		t.Fatalf("Post: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("expected 2 API calls, got %d: %v", len(calls), calls)
	}
	if publishedCreationID != "container-9" {
		t.Errorf("creation_id = %q, want container-9", publishedCreationID)
	}
}

func TestThreadsPostContainerFailureSkipsPublish(t *testing.T) {
	t.Parallel()

	var publishCalled bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/threads_publish") {
			publishCalled = true
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad token"}}`))
	}))
	defer srv.Close()

	th := NewThreads("user1", "tok", srv.Client(), nil)
	th.apiBase = srv.URL

	err := th.Post(context.Background(), "note")
	if err == nil {
		t.Fatal("expected error when container creation fails")
	}
	if !strings.Contains(err.Error(), "create container") {
		t.Errorf("error should name the failing step, got: %v", err)
	}
	if publishCalled {
		t.Error("publish must not run after container creation fails")
	}
}

func TestThreadsPostMissingCredentials(t *testing.T) {
	t.Parallel()

	th := NewThreads("", "", http.DefaultClient, nil)
	if err := th.Post(context.Background(), "note"); err == nil {
		t.Fatal("expected error with empty configuration")
	}
}
