package storage

import (
	"encoding/json"
	"regexp"
	"testing"
	"time"
)

func TestPosterObjectName(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	name := PosterObjectName(PosterSmall, "Dune.JPG", now)

	re := regexp.MustCompile(`^posters/sm/2024/03/09/[0-9a-f-]{36}\.jpg$`)
	if !re.MatchString(name) {
		t.Fatalf("object name = %q", name)
	}
	if PosterObjectName(PosterSmall, "Dune.JPG", now) == name {
		t.Fatal("object names should be unique")
	}
}

func TestImageContentType(t *testing.T) {
	tests := map[string]string{
		"a.jpg":  "image/jpeg",
		"a.JPEG": "image/jpeg",
		"a.png":  "image/png",
		"a.webp": "image/webp",
		"a.gif":  "image/gif",
		"a.mp4":  "",
		"a":      "",
	}
	for name, want := range tests {
		if got := ImageContentType(name); got != want {
			t.Errorf("ImageContentType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestBuildPublicURL(t *testing.T) {
	if got := buildPublicURL("https://cdn.example.com/", "minio:9000", "posters", "a/b.jpg", false); got != "https://cdn.example.com/posters/a/b.jpg" {
		t.Fatalf("public url = %q", got)
	}
	if got := buildPublicURL("", "minio:9000", "posters", "a/b.jpg", true); got != "https://minio:9000/posters/a/b.jpg" {
		t.Fatalf("endpoint url = %q", got)
	}
}

func TestPublicReadPolicyIsJSON(t *testing.T) {
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(publicReadPolicy("posters")), &v); err != nil {
		t.Fatalf("policy is not valid JSON: %v", err)
	}
}
