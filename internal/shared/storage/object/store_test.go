package object

import (
	"strings"
	"testing"
	"time"
)

func TestArchiveKey(t *testing.T) {
	now := time.Date(2025, 3, 7, 23, 30, 0, 0, time.FixedZone("x", -5*3600))
	key := ArchiveKey(now, []byte("data"), "My CV.pdf")
	if !strings.HasPrefix(key, "resumes/2025/03/08/") {
		t.Fatalf("expected UTC date prefix, got %s", key)
	}
	if !strings.HasSuffix(key, "_My CV.pdf") {
		t.Fatalf("expected file name suffix, got %s", key)
	}

	fallback := ArchiveKey(now, []byte("data"), "../../etc")
	if !strings.HasSuffix(fallback, "_resume") {
		t.Fatalf("expected fallback name, got %s", fallback)
	}
}

func TestCleanKey(t *testing.T) {
	valid := []string{"resumes/a.pdf", "resumes//b.pdf", " a/b "}
	for _, k := range valid {
		if _, err := CleanKey(k); err != nil {
			t.Fatalf("CleanKey(%q): %v", k, err)
		}
	}
	invalid := []string{"", "../a", "/abs/key", "."}
	for _, k := range invalid {
		if _, err := CleanKey(k); err == nil {
			t.Fatalf("expected error for %q", k)
		}
	}
}
