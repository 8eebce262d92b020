package contentstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"heirloom-go/internal/heirloom"
)

func newPinataTestStore(t *testing.T, handler http.HandlerFunc) *PinataStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := NewPinataStore("key", "secret", server.URL)
	if err != nil {
		t.Fatalf("NewPinataStore: %v", err)
	}
	store.apiURL = server.URL + "/pinning/pinFileToIPFS"
	return store
}

func TestPinataUpload(t *testing.T) {
	t.Run("pins content and returns the assigned hash", func(t *testing.T) {
		var gotKey, gotSecret, gotFile string
		var gotData []byte
		store := newPinataTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("pinata_api_key")
			gotSecret = r.Header.Get("pinata_secret_api_key")

			file, header, err := r.FormFile("file")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			defer file.Close()
			gotFile = header.Filename
			gotData, _ = io.ReadAll(file)

			w.Write([]byte(`{"IpfsHash":"QmAssigned"}`))
		})

		hash, err := store.Upload(context.Background(), "will.pdf", []byte("ciphertext"))
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if hash != "QmAssigned" {
			t.Errorf("expected the assigned hash, got %q", hash)
		}
		if gotKey != "key" || gotSecret != "secret" {
			t.Errorf("expected credential headers, got key=%q secret=%q", gotKey, gotSecret)
		}
		if gotFile != "will.pdf" {
			t.Errorf("expected the asset name in the form, got %q", gotFile)
		}
		if !bytes.Equal(gotData, []byte("ciphertext")) {
			t.Errorf("expected the payload in the form, got %q", gotData)
		}
	})

	t.Run("api error is an UploadError", func(t *testing.T) {
		store := newPinataTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
		})

		_, err := store.Upload(context.Background(), "will.pdf", []byte("ciphertext"))
		var uploadErr *heirloom.UploadError
		if !errors.As(err, &uploadErr) {
			t.Fatalf("expected UploadError, got %v", err)
		}
	})

	t.Run("response without a hash is an UploadError", func(t *testing.T) {
		store := newPinataTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		_, err := store.Upload(context.Background(), "will.pdf", []byte("ciphertext"))
		var uploadErr *heirloom.UploadError
		if !errors.As(err, &uploadErr) {
			t.Fatalf("expected UploadError, got %v", err)
		}
	})
}

func TestPinataFetch(t *testing.T) {
	t.Run("downloads from the gateway path", func(t *testing.T) {
		store := newPinataTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/ipfs/QmHash" {
				http.NotFound(w, r)
				return
			}
			w.Write([]byte("ciphertext"))
		})

		got, err := store.Fetch(context.Background(), "QmHash")
		if err != nil {
			t.Fatalf("Fetch: %v", err)
		}
		if !bytes.Equal(got, []byte("ciphertext")) {
			t.Errorf("expected the gateway payload, got %q", got)
		}
	})

	t.Run("gateway error surfaces", func(t *testing.T) {
		store := newPinataTestStore(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})

		if _, err := store.Fetch(context.Background(), "QmMissing"); err == nil {
			t.Fatal("expected an error for missing content")
		}
	})
}

func TestPinataResolveURL(t *testing.T) {
	store, err := NewPinataStore("key", "secret", "https://gateway.pinata.cloud")
	if err != nil {
		t.Fatalf("NewPinataStore: %v", err)
	}
	if got := store.ResolveURL("QmHash"); got != "https://gateway.pinata.cloud/ipfs/QmHash" {
		t.Errorf("unexpected url: %q", got)
	}
}

func TestNewPinataStoreValidation(t *testing.T) {
	if _, err := NewPinataStore("", "secret", "https://gateway"); err == nil {
		t.Error("expected an error for a missing api key")
	}
	if _, err := NewPinataStore("key", "", "https://gateway"); err == nil {
		t.Error("expected an error for a missing secret key")
	}
	if _, err := NewPinataStore("key", "secret", ""); err == nil {
		t.Error("expected an error for a missing gateway url")
	}
}
