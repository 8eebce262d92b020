package heirloom

import "io"

// Encryptor handles encryption of asset payloads and unlocking for
// decryption. Encryption targets the successor's public recipient key, so
// only the successor can ever read the stored payload. Decryption requires
// a passphrase to unlock the local private key, producing a
// DecryptionContext for the session.
type Encryptor interface {
	// Setup performs one-time key generation. Stores the public key in
	// plaintext and encrypts the private key with the passphrase.
	Setup(passphrase string) error

	// Recipient returns this wallet's public recipient key, to be shared
	// with owners who want to designate this wallet as successor.
	Recipient() (string, error)

	// Encrypt encrypts data read from r for the given recipient key and
	// writes ciphertext to w. No passphrase required.
	Encrypt(recipient string, r io.Reader, w io.Writer) error

	// Unlock decrypts the private key using the passphrase and returns a
	// DecryptionContext valid for the duration of the session.
	Unlock(passphrase string) (DecryptionContext, error)

	// IsConfigured returns true if both key files exist.
	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory for the
// duration of a fetch session. The unlocked key is never written to disk.
type DecryptionContext interface {
	// Decrypt decrypts data read from r and writes plaintext to w.
	Decrypt(r io.Reader, w io.Writer) error
}
