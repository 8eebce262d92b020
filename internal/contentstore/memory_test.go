package contentstore

import (
	"bytes"
	"context"
	"testing"

	"heirloom-go/internal/config"
)

func TestMemoryStore(t *testing.T) {
	t.Run("upload then fetch round trips", func(t *testing.T) {
		s := NewMemoryStore()
		hash, err := s.Upload(context.Background(), "will.pdf", []byte("ciphertext"))
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if hash == "" {
			t.Fatal("expected a content hash")
		}

		got, err := s.Fetch(context.Background(), hash)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if !bytes.Equal(got, []byte("ciphertext")) {
			t.Errorf("expected the uploaded bytes back, got %q", got)
		}
	})

	t.Run("identical content gets the same hash", func(t *testing.T) {
		s := NewMemoryStore()
		first, err := s.Upload(context.Background(), "a.pdf", []byte("same"))
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		second, err := s.Upload(context.Background(), "b.pdf", []byte("same"))
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if first != second {
			t.Errorf("expected content addressing, got %q and %q", first, second)
		}
	})

	t.Run("fetch of unknown hash fails", func(t *testing.T) {
		s := NewMemoryStore()
		if _, err := s.Fetch(context.Background(), "QmUnknown"); err == nil {
			t.Fatal("expected an error for unknown content")
		}
	})

	t.Run("stored bytes are isolated from the caller", func(t *testing.T) {
		s := NewMemoryStore()
		data := []byte("original")
		hash, err := s.Upload(context.Background(), "a.pdf", data)
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		data[0] = 'X'

		got, err := s.Fetch(context.Background(), hash)
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if !bytes.Equal(got, []byte("original")) {
			t.Errorf("stored content was mutated: %q", got)
		}
	})
}

func TestNewStoreFromConfig(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		s, err := NewStoreFromConfig(context.Background(), config.StoreConfig{Type: "memory"})
		if err != nil {
			t.Fatalf("NewStoreFromConfig: %v", err)
		}
		if _, ok := s.(*MemoryStore); !ok {
			t.Errorf("expected a MemoryStore, got %T", s)
		}
	})

	t.Run("pinata without credentials", func(t *testing.T) {
		_, err := NewStoreFromConfig(context.Background(), config.StoreConfig{Type: "pinata"})
		if err == nil {
			t.Fatal("expected an error for missing credentials")
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewStoreFromConfig(context.Background(), config.StoreConfig{Type: "carrier-pigeon"})
		if err == nil {
			t.Fatal("expected an error for an unknown store type")
		}
	})
}
