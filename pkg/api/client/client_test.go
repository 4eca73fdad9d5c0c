package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLoginDecodesSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "a@example.com" {
			t.Errorf("unexpected email %q", body["email"])
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok","user":{"id":"u1","email":"a@example.com","fullName":"A"}}`))
	}))
	defer srv.Close()

	cli, err := New(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	session, err := cli.Login(context.Background(), "a@example.com", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Token != "tok" || session.User.ID != "u1" {
		t.Fatalf("unexpected session %+v", session)
	}
}

func TestErrorsCarryStatusAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"forbidden"}`))
	}))
	defer srv.Close()

	cli, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	err = cli.DeletePost(context.Background(), "tok", "p1")
	var apiErr APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusForbidden || apiErr.Message != "forbidden" {
		t.Fatalf("unexpected error %+v", apiErr)
	}
}
