package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	apiclient "github.com/MetehanCam/real-estate-social-app/pkg/api/client"
)

func TestPrintPosts(t *testing.T) {
	var buf bytes.Buffer
	posts := []apiclient.Post{{
		ID:        "p1",
		Author:    apiclient.Author{Username: "alice"},
		Content:   "Sunny two-bedroom\nnear the park",
		Likes:     []string{"u2"},
		CreatedAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}}
	if err := printPosts(&buf, posts); err != nil {
		t.Fatalf("print: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "@alice") || !strings.Contains(out, "Sunny two-bedroom near the park") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestPrintPostsEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printPosts(&buf, nil); err != nil {
		t.Fatalf("print: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "no posts yet" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected %q", got)
	}
	if got := truncate("ééééééééééé", 5); got != "éééé…" {
		t.Fatalf("unexpected %q", got)
	}
}
