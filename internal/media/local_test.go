package media

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/frimousse/patisserie-backend/pkg/errors"
)

func newTestLocalStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocalStore(t.TempDir(), "http://localhost:3000")
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	return store
}

func TestLocalStoreRoundTrip(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	stored, err := store.Store(ctx, Upload{
		OriginalName: "cake-reference.PNG",
		ContentType:  "image/png",
		Data:         []byte("png-bytes"),
	})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	if !strings.HasSuffix(stored.Filename, ".png") {
		t.Fatalf("expected lowercased extension preserved, got %q", stored.Filename)
	}
	if stored.OriginalName != "cake-reference.PNG" {
		t.Fatalf("unexpected original name %q", stored.OriginalName)
	}
	if want := "http://localhost:3000/uploads/" + stored.Filename; stored.URL != want {
		t.Fatalf("expected url %q got %q", want, stored.URL)
	}
	if stored.Size != int64(len("png-bytes")) {
		t.Fatalf("unexpected size %d", stored.Size)
	}

	file, err := store.Retrieve(ctx, stored.Filename)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if string(file.Data) != "png-bytes" {
		t.Fatalf("unexpected payload %q", file.Data)
	}
	if file.Info.ContentType != "image/png" {
		t.Fatalf("unexpected content type %q", file.Info.ContentType)
	}
}

func TestLocalStoreUniqueNames(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	first, err := store.Store(ctx, Upload{OriginalName: "a.png", ContentType: "image/png", Data: []byte("one")})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	second, err := store.Store(ctx, Upload{OriginalName: "a.png", ContentType: "image/png", Data: []byte("two")})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}
	if first.Filename == second.Filename {
		t.Fatalf("expected distinct generated names, both were %q", first.Filename)
	}
}

func TestLocalStoreRetrieveMissing(t *testing.T) {
	store := newTestLocalStore(t)

	_, err := store.Retrieve(context.Background(), "nope.png")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLocalStoreRemoveIdempotent(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	stored, err := store.Store(ctx, Upload{OriginalName: "a.png", ContentType: "image/png", Data: []byte("x")})
	if err != nil {
		t.Fatalf("Store: %v", err)
	}

	removed, err := store.Remove(ctx, stored.Filename)
	if err != nil || !removed {
		t.Fatalf("first remove expected (true, nil), got (%v, %v)", removed, err)
	}

	removed, err = store.Remove(ctx, stored.Filename)
	if err != nil {
		t.Fatalf("second remove should not error: %v", err)
	}
	if removed {
		t.Fatal("second remove should report already absent")
	}
}

func TestLocalStoreRejectsPathEscape(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	for _, name := range []string{"../secrets.txt", "a/b.png", ".hidden", ""} {
		if _, err := store.Retrieve(ctx, name); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
		if _, err := store.Remove(ctx, name); err == nil {
			t.Fatalf("expected rejection for %q", name)
		}
	}
}

func TestLocalStoreList(t *testing.T) {
	store := newTestLocalStore(t)
	ctx := context.Background()

	for _, name := range []string{"a.png", "b.jpg"} {
		if _, err := store.Store(ctx, Upload{OriginalName: name, ContentType: contentTypeFor(name), Data: []byte("x")}); err != nil {
			t.Fatalf("Store %s: %v", name, err)
		}
	}
	// Subdirectories are skipped.
	if err := os.Mkdir(filepath.Join(store.Dir(), "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	infos, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 files, got %d", len(infos))
	}
}
