package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"heirloom-go/internal/heirloom"
)

const defaultPinataAPIURL = "https://api.pinata.cloud/pinning/pinFileToIPFS"

// PinataStore pins content to IPFS through Pinata's REST API and resolves
// identifiers through an IPFS gateway.
type PinataStore struct {
	apiURL     string
	gatewayURL string
	apiKey     string
	secretKey  string
	client     *http.Client
}

var _ heirloom.ContentStore = (*PinataStore)(nil)

// NewPinataStore creates a Pinata-backed store. gatewayURL is the base URL
// content is fetched from, e.g. "https://gateway.pinata.cloud".
func NewPinataStore(apiKey, secretKey, gatewayURL string) (*PinataStore, error) {
	if apiKey == "" || secretKey == "" {
		return nil, fmt.Errorf("pinata store requires api key and secret key")
	}
	if gatewayURL == "" {
		return nil, fmt.Errorf("pinata store requires a gateway url")
	}
	return &PinataStore{
		apiURL:     defaultPinataAPIURL,
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		secretKey:  secretKey,
		client:     &http.Client{Timeout: 2 * time.Minute},
	}, nil
}

// Upload pins data and returns the IPFS hash Pinata assigned. A single
// attempt is made; failures surface as heirloom.UploadError.
func (p *PinataStore) Upload(ctx context.Context, name string, data []byte) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", name)
	if err != nil {
		return "", &heirloom.UploadError{Err: fmt.Errorf("building upload form: %w", err)}
	}
	if _, err := part.Write(data); err != nil {
		return "", &heirloom.UploadError{Err: fmt.Errorf("writing upload form: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return "", &heirloom.UploadError{Err: fmt.Errorf("finalizing upload form: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, &body)
	if err != nil {
		return "", &heirloom.UploadError{Err: err}
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("pinata_api_key", p.apiKey)
	req.Header.Set("pinata_secret_api_key", p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", &heirloom.UploadError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &heirloom.UploadError{Err: fmt.Errorf("pinata returned %s: %s", resp.Status, msg)}
	}

	var result struct {
		IpfsHash string `json:"IpfsHash"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &heirloom.UploadError{Err: fmt.Errorf("decoding pinata response: %w", err)}
	}
	if result.IpfsHash == "" {
		return "", &heirloom.UploadError{Err: fmt.Errorf("pinata response carried no hash")}
	}

	return result.IpfsHash, nil
}

// Fetch downloads content from the gateway.
func (p *PinataStore) Fetch(ctx context.Context, contentHash string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.ResolveURL(contentHash), nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", contentHash, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned %s for %s", resp.Status, contentHash)
	}

	return io.ReadAll(resp.Body)
}

func (p *PinataStore) ResolveURL(contentHash string) string {
	return p.gatewayURL + "/ipfs/" + contentHash
}
