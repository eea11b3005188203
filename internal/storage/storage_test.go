package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

func TestNewObjectPath(t *testing.T) {
	tests := []struct {
		dir, source, prefix, ext string
	}{
		{"repo-1", "old/shot.png", "repo-1/", ".png"},
		{"/repo-1/", "shot.jpeg", "repo-1/", ".jpeg"},
		{"", "shot", "", ""},
	}
	for _, tt := range tests {
		got := NewObjectPath(tt.dir, tt.source)
		if !strings.HasPrefix(got, tt.prefix) || !strings.HasSuffix(got, tt.ext) {
			t.Errorf("NewObjectPath(%q, %q) = %q", tt.dir, tt.source, got)
		}
		if strings.Contains(got, "//") {
			t.Errorf("NewObjectPath(%q, %q) = %q has an empty segment", tt.dir, tt.source, got)
		}
	}
	if NewObjectPath("d", "a.png") == NewObjectPath("d", "a.png") {
		t.Error("object paths must be unique")
	}
}

func TestMemoryStore_CopyDuplicates(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	if err := m.Put(ctx, "r1/a.png", []byte("png"), "image/png"); err != nil {
		t.Fatal(err)
	}

	dest, err := m.Copy(ctx, "r1/a.png", "r2")
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	if !strings.HasPrefix(dest, "r2/") {
		t.Errorf("dest = %q, want under r2/", dest)
	}

	// the copy is independent of the source
	if err := m.Delete(ctx, "r1/a.png"); err != nil {
		t.Fatal(err)
	}
	data, err := m.Get(ctx, dest)
	if err != nil || string(data) != "png" {
		t.Errorf("Get(copy) = %q, %v", data, err)
	}

	if _, err := m.Copy(ctx, "r1/a.png", "r2"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("copy of deleted blob err = %v, want ErrBlobNotFound", err)
	}
	if m.Copies() != 1 {
		t.Errorf("Copies = %d, want 1", m.Copies())
	}
}

func TestEscapeKey(t *testing.T) {
	if got := escapeKey("repo 1/my shot#2.png"); got != "repo%201/my%20shot%232.png" {
		t.Errorf("escapeKey = %q", got)
	}
}

func TestIsS3NotFound(t *testing.T) {
	if !isS3NotFound(fmt.Errorf("head: %w", &types.NoSuchKey{})) {
		t.Error("NoSuchKey not recognized")
	}
	if !isS3NotFound(&types.NotFound{}) {
		t.Error("NotFound not recognized")
	}
	if isS3NotFound(errors.New("timeout")) {
		t.Error("generic error treated as not found")
	}
}
