package encryption

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"heirloom-go/internal/config"
)

func newTestAgeEncryptor(t *testing.T) *AgeEncryptor {
	t.Helper()

	dir := t.TempDir()
	return NewAgeEncryptor(config.EncryptionConfig{
		PublicKeyPath:  filepath.Join(dir, "key.pub"),
		PrivateKeyPath: filepath.Join(dir, "key.age"),
	})
}

func TestAgeEncryptor(t *testing.T) {
	t.Run("setup produces usable keys", func(t *testing.T) {
		e := newTestAgeEncryptor(t)
		if e.IsConfigured() {
			t.Fatal("expected unconfigured before setup")
		}

		if err := e.Setup("passphrase"); err != nil {
			t.Fatalf("Setup: %v", err)
		}
		if !e.IsConfigured() {
			t.Fatal("expected configured after setup")
		}

		recipient, err := e.Recipient()
		if err != nil {
			t.Fatalf("Recipient: %v", err)
		}
		if !strings.HasPrefix(recipient, "age1") {
			t.Errorf("expected an age recipient key, got %q", recipient)
		}
	})

	t.Run("encrypt then decrypt round trips", func(t *testing.T) {
		e := newTestAgeEncryptor(t)
		if err := e.Setup("passphrase"); err != nil {
			t.Fatalf("Setup: %v", err)
		}
		recipient, err := e.Recipient()
		if err != nil {
			t.Fatalf("Recipient: %v", err)
		}

		plaintext := []byte("my last will")
		var ciphertext bytes.Buffer
		if err := e.Encrypt(recipient, bytes.NewReader(plaintext), &ciphertext); err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if bytes.Contains(ciphertext.Bytes(), plaintext) {
			t.Error("ciphertext contains the plaintext")
		}

		dec, err := e.Unlock("passphrase")
		if err != nil {
			t.Fatalf("Unlock: %v", err)
		}
		var out bytes.Buffer
		if err := dec.Decrypt(bytes.NewReader(ciphertext.Bytes()), &out); err != nil {
			t.Fatalf("Decrypt: %v", err)
		}
		if !bytes.Equal(out.Bytes(), plaintext) {
			t.Errorf("expected the original plaintext, got %q", out.Bytes())
		}
	})

	t.Run("wrong passphrase fails to unlock", func(t *testing.T) {
		e := newTestAgeEncryptor(t)
		if err := e.Setup("passphrase"); err != nil {
			t.Fatalf("Setup: %v", err)
		}

		if _, err := e.Unlock("wrong"); err == nil {
			t.Fatal("expected unlocking with the wrong passphrase to fail")
		}
	})

	t.Run("invalid recipient key is rejected", func(t *testing.T) {
		e := newTestAgeEncryptor(t)
		var ciphertext bytes.Buffer
		err := e.Encrypt("not-a-key", strings.NewReader("data"), &ciphertext)
		if err == nil {
			t.Fatal("expected an error for a malformed recipient key")
		}
	})

	t.Run("wrong identity cannot decrypt", func(t *testing.T) {
		alice := newTestAgeEncryptor(t)
		bob := newTestAgeEncryptor(t)
		if err := alice.Setup("alice"); err != nil {
			t.Fatalf("Setup: %v", err)
		}
		if err := bob.Setup("bob"); err != nil {
			t.Fatalf("Setup: %v", err)
		}
		recipient, err := alice.Recipient()
		if err != nil {
			t.Fatalf("Recipient: %v", err)
		}

		var ciphertext bytes.Buffer
		if err := alice.Encrypt(recipient, strings.NewReader("secret"), &ciphertext); err != nil {
			t.Fatalf("Encrypt: %v", err)
		}

		dec, err := bob.Unlock("bob")
		if err != nil {
			t.Fatalf("Unlock: %v", err)
		}
		var out bytes.Buffer
		if err := dec.Decrypt(bytes.NewReader(ciphertext.Bytes()), &out); err == nil {
			t.Fatal("expected decryption with the wrong identity to fail")
		}
	})
}

func TestTestEncryptor(t *testing.T) {
	e := NewTestEncryptor()

	var ciphertext bytes.Buffer
	if err := e.Encrypt("some-recipient", strings.NewReader("data"), &ciphertext); err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if e.LastRecipient != "some-recipient" {
		t.Errorf("expected the recipient to be recorded, got %q", e.LastRecipient)
	}
	if ciphertext.String() == "data" {
		t.Error("expected output to differ from input")
	}

	dec, err := e.Unlock("")
	if err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	var out bytes.Buffer
	if err := dec.Decrypt(bytes.NewReader(ciphertext.Bytes()), &out); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if out.String() != "data" {
		t.Errorf("expected the original data, got %q", out.String())
	}
}

func TestNewEncryptorFromConfig(t *testing.T) {
	t.Run("age is the default", func(t *testing.T) {
		e, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "age"})
		if err != nil {
			t.Fatalf("NewEncryptorFromConfig: %v", err)
		}
		if _, ok := e.(*AgeEncryptor); !ok {
			t.Errorf("expected an AgeEncryptor, got %T", e)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		if _, err := NewEncryptorFromConfig(config.EncryptionConfig{Type: "rot13"}); err == nil {
			t.Fatal("expected an error for an unknown encryptor type")
		}
	})
}
