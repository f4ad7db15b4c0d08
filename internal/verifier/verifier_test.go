package verifier

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyOkay(t *testing.T) {
	var gotAssertion, gotAudience string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/x-www-form-urlencoded" {
			t.Errorf("content type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		gotAssertion = r.PostFormValue("assertion")
		gotAudience = r.PostFormValue("audience")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "okay", "email": "alice@example.org"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Verify(context.Background(), "some-assertion", "example.org")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !result.Okay() {
		t.Errorf("status = %q, want okay", result.Status)
	}
	if result.Email != "alice@example.org" {
		t.Errorf("email = %q, want alice@example.org", result.Email)
	}
	if gotAssertion != "some-assertion" {
		t.Errorf("posted assertion = %q", gotAssertion)
	}
	if gotAudience != "example.org" {
		t.Errorf("posted audience = %q", gotAudience)
	}
}

func TestVerifyRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "failure", "reason": "assertion has expired"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	result, err := c.Verify(context.Background(), "stale-assertion", "example.org")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Okay() {
		t.Error("expected rejection, got okay")
	}
	if result.Reason != "assertion has expired" {
		t.Errorf("reason = %q", result.Reason)
	}
}

func TestVerifyTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewClient(srv.URL)
	if _, err := c.Verify(context.Background(), "a", "example.org"); err == nil {
		t.Fatal("expected transport error, got nil")
	}
}

func TestVerifyBadStatusCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "verifier down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Verify(context.Background(), "a", "example.org"); err == nil {
		t.Fatal("expected error for 503, got nil")
	}
}

func TestVerifyMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if _, err := c.Verify(context.Background(), "a", "example.org"); err == nil {
		t.Fatal("expected decode error, got nil")
	}
}
