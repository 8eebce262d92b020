package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/home/user/.local/share/heirloom")

	if cfg.Chain.ChainID != 11155111 {
		t.Errorf("expected Sepolia as the default chain, got %d", cfg.Chain.ChainID)
	}
	if cfg.Store.Type != "pinata" {
		t.Errorf("expected pinata as the default store, got %q", cfg.Store.Type)
	}
	if cfg.Cache.Type != "sqlite" {
		t.Errorf("expected sqlite as the default cache, got %q", cfg.Cache.Type)
	}
	if !strings.HasPrefix(cfg.LogDir, cfg.BaseDir) {
		t.Errorf("expected the log dir under the base dir, got %q", cfg.LogDir)
	}
}

func TestReadWrite(t *testing.T) {
	t.Run("write then read round trips", func(t *testing.T) {
		want := NewConfig("/data/heirloom")
		want.Chain.RPCURL = "https://rpc.sepolia.org"
		want.Chain.ContractAddress = "0x00000000000000000000000000000000000000AA"
		want.Store.PinataAPIKey = "key"
		want.Store.PinataSecretKey = "secret"

		var buf bytes.Buffer
		if err := Write(want, &buf); err != nil {
			t.Fatalf("Write: %v", err)
		}

		got, err := Read(&buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if *got != *want {
			t.Errorf("expected %+v, got %+v", want, got)
		}
	})

	t.Run("partial config keeps zero values", func(t *testing.T) {
		got, err := Read(strings.NewReader(`
[chain]
rpc_url = "https://rpc.sepolia.org"
chain_id = 11155111
`))
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if got.Chain.RPCURL != "https://rpc.sepolia.org" {
			t.Errorf("unexpected rpc url: %q", got.Chain.RPCURL)
		}
		if got.Store.Type != "" {
			t.Errorf("expected an unset store type, got %q", got.Store.Type)
		}
	})

	t.Run("malformed toml fails", func(t *testing.T) {
		if _, err := Read(strings.NewReader("chain = [unclosed")); err == nil {
			t.Fatal("expected a decode error")
		}
	})
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "heirloom.toml")
	cfg := NewConfig("/data/heirloom")

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init: %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile: %v", err)
	}
	if got.Cache.DataDir != cfg.Cache.DataDir {
		t.Errorf("expected %q, got %q", cfg.Cache.DataDir, got.Cache.DataDir)
	}

	if err := Init(path, cfg); err == nil {
		t.Fatal("expected init over an existing file to fail")
	}
}
