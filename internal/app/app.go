package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"heirloom-go/internal/cache"
	"heirloom-go/internal/config"
	"heirloom-go/internal/contentstore"
	"heirloom-go/internal/encryption"
	"heirloom-go/internal/heirloom"
	"heirloom-go/internal/ledger"
)

// App is the application layer between the CLI and the heirloom service.
// It constructs all dependencies from config and manages their lifecycle
// on Close.
type App struct {
	cfg       *config.Config
	cache     heirloom.Cache
	store     heirloom.ContentStore
	encryptor heirloom.Encryptor
	transport *ledger.RPCTransport
	service   *heirloom.Service
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Create", "Owned").
// The caller must call Close when done.
func NewApp(ctx context.Context, cfg *config.Config, operation string) (*App, error) {
	if !common.IsHexAddress(cfg.Chain.ContractAddress) {
		return nil, fmt.Errorf("invalid contract address: %q", cfg.Chain.ContractAddress)
	}

	keyHex, err := os.ReadFile(cfg.Chain.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("reading wallet key: %w", err)
	}

	transport, err := ledger.NewRPCTransport(ctx, cfg.Chain.RPCURL, strings.TrimSpace(string(keyHex)))
	if err != nil {
		return nil, fmt.Errorf("connecting to ledger: %w", err)
	}

	client, err := ledger.NewClient(transport, common.HexToAddress(cfg.Chain.ContractAddress), cfg.Chain.ChainID)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("creating ledger client: %w", err)
	}

	store, err := contentstore.NewStoreFromConfig(ctx, cfg.Store)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("creating content store: %w", err)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	c, err := cache.NewCacheFromConfig(cfg.Cache)
	if err != nil {
		transport.Close()
		return nil, fmt.Errorf("creating cache: %w", err)
	}

	runID := operation + "-" + uuid.New().String()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		c.Close()
		transport.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	svc, err := heirloom.NewService(client, ledger.NewDecoder(), store, enc, c, &slogAdapter{l: logger}, heirloom.RealClock{})
	if err != nil {
		logFile.Close()
		c.Close()
		transport.Close()
		return nil, fmt.Errorf("creating service: %w", err)
	}

	return &App{
		cfg:       cfg,
		cache:     c,
		store:     store,
		encryptor: enc,
		transport: transport,
		service:   svc,
		logFile:   logFile,
	}, nil
}

// Service returns the wired lifecycle coordinator.
func (a *App) Service() *heirloom.Service { return a.service }

// Encryptor returns the wired encryption collaborator.
func (a *App) Encryptor() heirloom.Encryptor { return a.encryptor }

// Store returns the wired content store.
func (a *App) Store() heirloom.ContentStore { return a.store }

// Wallet returns the address operations are signed with.
func (a *App) Wallet() common.Address { return a.transport.From() }

// Close releases the cache, the RPC connection and the log file.
func (a *App) Close() error {
	var firstErr error
	if err := a.cache.Close(); err != nil {
		firstErr = err
	}
	a.transport.Close()
	if err := a.logFile.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
