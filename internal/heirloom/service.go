package heirloom

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"heirloom-go/internal/model"
)

// resolveConcurrency bounds how many ledger reads a listing issues at once.
const resolveConcurrency = 8

// Service is the orchestration layer that glues the content store and the
// ledger into atomic-feeling user actions, and exposes the read surface.
type Service struct {
	ledger  Ledger
	decoder EventDecoder
	store   ContentStore
	enc     Encryptor
	cache   Cache
	logger  Logger
	clock   Clock
}

// NewService creates a Service with the provided dependencies. The ledger,
// decoder, store, encryptor and cache are required capabilities; their
// absence is a construction error, not a failure deep inside an operation.
func NewService(ledger Ledger, decoder EventDecoder, store ContentStore, enc Encryptor, cache Cache, logger Logger, clock Clock) (*Service, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger is required")
	}
	if decoder == nil {
		return nil, fmt.Errorf("event decoder is required")
	}
	if store == nil {
		return nil, fmt.Errorf("content store is required")
	}
	if enc == nil {
		return nil, fmt.Errorf("encryptor is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("cache is required")
	}
	if logger == nil {
		logger = NewNopLogger()
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &Service{
		ledger:  ledger,
		decoder: decoder,
		store:   store,
		enc:     enc,
		cache:   cache,
		logger:  logger,
		clock:   clock,
	}, nil
}

// Asset is a plaintext payload to register for inheritance.
type Asset struct {
	Name    string
	Size    int64
	Content io.Reader
}

// CreateInheritance encrypts the asset for the recipient key, uploads the
// ciphertext to the content store, registers the inheritance on the ledger
// and returns the assembled record.
//
// The upload happens before any ledger call, so a failed upload never
// produces a half-created ledger record. The reverse is not compensated:
// if the ledger write fails after a successful upload, the orphaned
// ciphertext is harmless (it is referenced nowhere) and the failure is
// reported as-is.
func (s *Service) CreateInheritance(ctx context.Context, successor common.Address, asset Asset, recipient string, tag string) (*model.Inheritance, error) {
	var ciphertext bytes.Buffer
	if err := s.enc.Encrypt(recipient, asset.Content, &ciphertext); err != nil {
		return nil, fmt.Errorf("encrypting asset: %w", err)
	}

	contentHash, err := s.store.Upload(ctx, asset.Name, ciphertext.Bytes())
	if err != nil {
		return nil, fmt.Errorf("uploading ciphertext: %w", err)
	}
	s.logger.Debug("ciphertext uploaded", "hash", contentHash, "name", asset.Name)

	receipt, err := s.ledger.Create(ctx, successor, contentHash, tag, asset.Name, asset.Size)
	if err != nil {
		return nil, fmt.Errorf("creating inheritance: %w", err)
	}

	ev, err := s.decoder.DecodeCreated(receipt)
	if err != nil {
		return nil, fmt.Errorf("decoding create receipt: %w", err)
	}

	// Re-read so the cached copy carries the ledger-recorded timestamp.
	// The record is confirmed at this point, so a failed read only costs
	// us the canonical timestamp; assemble from inputs in that case.
	rec, err := s.ledger.Read(ctx, ev.ID)
	if err != nil {
		s.logger.Warn("reading back created record", "id", ev.ID, "error", err)
		rec = &model.Inheritance{
			ID:          ev.ID,
			Owner:       ev.Owner,
			Successor:   ev.Successor,
			ContentHash: contentHash,
			Tag:         tag,
			FileName:    asset.Name,
			FileSize:    asset.Size,
			Timestamp:   s.clock.Now(),
			IsActive:    true,
			IsClaimed:   false,
		}
	}

	if err := s.cache.Put(*rec); err != nil {
		s.logger.Warn("caching created record", "id", rec.ID, "error", err)
	}

	s.logger.Info("inheritance created", "id", rec.ID, "successor", rec.Successor.Hex(), "tag", tag)
	return rec, nil
}

// ListOwned returns the caller-visible records owned by the address.
// Individual reads that fail are skipped (the result may be shorter than
// the id index); deleted records are excluded. If the id index itself is
// unreachable the cached view is returned instead.
func (s *Service) ListOwned(ctx context.Context, owner common.Address) ([]model.Inheritance, error) {
	ids, err := s.ledger.OwnerIDs(ctx, owner)
	if err != nil {
		s.logger.Warn("owner index unreachable, serving cache", "owner", owner.Hex(), "error", err)
		return s.cachedFallback(s.cache.ByOwner(owner))
	}
	return s.resolve(ctx, ids)
}

// ListInherited returns the caller-visible records designating the address
// as successor, with the same degradation rules as ListOwned.
func (s *Service) ListInherited(ctx context.Context, successor common.Address) ([]model.Inheritance, error) {
	ids, err := s.ledger.SuccessorIDs(ctx, successor)
	if err != nil {
		s.logger.Warn("successor index unreachable, serving cache", "successor", successor.Hex(), "error", err)
		return s.cachedFallback(s.cache.BySuccessor(successor))
	}
	return s.resolve(ctx, ids)
}

// ListOwnedStrict is the all-or-nothing variant of ListOwned: any failed
// read fails the whole listing, so a partial ledger outage can never be
// mistaken for fewer records existing.
func (s *Service) ListOwnedStrict(ctx context.Context, owner common.Address) ([]model.Inheritance, error) {
	ids, err := s.ledger.OwnerIDs(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetching owner index: %w", err)
	}
	return s.resolveStrict(ctx, ids)
}

// ListInheritedStrict is the all-or-nothing variant of ListInherited.
func (s *Service) ListInheritedStrict(ctx context.Context, successor common.Address) ([]model.Inheritance, error) {
	ids, err := s.ledger.SuccessorIDs(ctx, successor)
	if err != nil {
		return nil, fmt.Errorf("fetching successor index: %w", err)
	}
	return s.resolveStrict(ctx, ids)
}

// Claim exercises the successor's claim on a record.
func (s *Service) Claim(ctx context.Context, id uint64) error {
	receipt, err := s.ledger.Claim(ctx, id)
	if err != nil {
		return fmt.Errorf("claiming inheritance %d: %w", id, err)
	}
	if _, err := s.decoder.DecodeClaimed(receipt); err != nil {
		return fmt.Errorf("decoding claim receipt: %w", err)
	}
	s.refresh(ctx, id)
	s.logger.Info("inheritance claimed", "id", id)
	return nil
}

// Revoke deactivates a record without deleting it. Owner only.
func (s *Service) Revoke(ctx context.Context, id uint64) error {
	receipt, err := s.ledger.Revoke(ctx, id)
	if err != nil {
		return fmt.Errorf("revoking inheritance %d: %w", id, err)
	}
	if _, err := s.decoder.DecodeRevoked(receipt); err != nil {
		return fmt.Errorf("decoding revoke receipt: %w", err)
	}
	s.refresh(ctx, id)
	s.logger.Info("inheritance revoked", "id", id)
	return nil
}

// DeleteRecord deletes a record. The id stays permanently reserved on the
// ledger but the record disappears from all listings. Owner only.
func (s *Service) DeleteRecord(ctx context.Context, id uint64) error {
	receipt, err := s.ledger.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting inheritance %d: %w", id, err)
	}
	if _, err := s.decoder.DecodeDeleted(receipt); err != nil {
		return fmt.Errorf("decoding delete receipt: %w", err)
	}
	if err := s.cache.Delete(id); err != nil {
		s.logger.Warn("dropping cached record", "id", id, "error", err)
	}
	s.logger.Info("inheritance deleted", "id", id)
	return nil
}

// ReassignSuccessor designates a new successor for an active, unclaimed
// record. Owner only.
func (s *Service) ReassignSuccessor(ctx context.Context, id uint64, newSuccessor common.Address) error {
	receipt, err := s.ledger.UpdateSuccessor(ctx, id, newSuccessor)
	if err != nil {
		return fmt.Errorf("reassigning successor for inheritance %d: %w", id, err)
	}
	if _, err := s.decoder.DecodeSuccessorUpdated(receipt); err != nil {
		return fmt.Errorf("decoding successor update receipt: %w", err)
	}
	s.refresh(ctx, id)
	s.logger.Info("successor reassigned", "id", id, "successor", newSuccessor.Hex())
	return nil
}

// FetchAsset retrieves and decrypts a record's payload. The record is
// looked up in the cache first; a ledger read fills a miss.
func (s *Service) FetchAsset(ctx context.Context, id uint64, dec DecryptionContext) ([]byte, *model.Inheritance, error) {
	if dec == nil {
		return nil, nil, fmt.Errorf("decryption context is required")
	}

	rec, err := s.cache.Get(id)
	if err != nil {
		s.logger.Warn("cache lookup failed", "id", id, "error", err)
	}
	if rec == nil {
		rec, err = s.ledger.Read(ctx, id)
		if err != nil {
			return nil, nil, fmt.Errorf("reading inheritance %d: %w", id, err)
		}
		if err := s.cache.Put(*rec); err != nil {
			s.logger.Warn("caching fetched record", "id", id, "error", err)
		}
	}
	if rec.Deleted() {
		return nil, nil, fmt.Errorf("inheritance %d has been deleted", id)
	}

	ciphertext, err := s.store.Fetch(ctx, rec.ContentHash)
	if err != nil {
		return nil, nil, fmt.Errorf("fetching ciphertext for inheritance %d: %w", id, err)
	}

	var plaintext bytes.Buffer
	if err := dec.Decrypt(bytes.NewReader(ciphertext), &plaintext); err != nil {
		return nil, nil, fmt.Errorf("decrypting asset for inheritance %d: %w", id, err)
	}

	return plaintext.Bytes(), rec, nil
}

// resolve reads every id concurrently, preserving index order in the
// result. Failed reads are skipped and logged; the caller can detect the
// degradation by comparing result length against the index.
func (s *Service) resolve(ctx context.Context, ids []uint64) ([]model.Inheritance, error) {
	records := make([]*model.Inheritance, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := s.ledger.Read(gctx, id)
			if err != nil {
				s.logger.Warn("skipping unreadable record", "id", id, "error", err)
				return nil
			}
			records[i] = rec
			return nil
		})
	}
	// Workers only log failures, so Wait cannot return an error here.
	g.Wait()

	out := make([]model.Inheritance, 0, len(ids))
	for _, rec := range records {
		if rec == nil || rec.Deleted() {
			continue
		}
		if err := s.cache.Put(*rec); err != nil {
			s.logger.Warn("caching resolved record", "id", rec.ID, "error", err)
		}
		out = append(out, *rec)
	}
	return out, nil
}

// resolveStrict reads every id concurrently and fails the whole batch on
// the first unreadable id.
func (s *Service) resolveStrict(ctx context.Context, ids []uint64) ([]model.Inheritance, error) {
	records := make([]*model.Inheritance, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, id := range ids {
		g.Go(func() error {
			rec, err := s.ledger.Read(gctx, id)
			if err != nil {
				return fmt.Errorf("reading inheritance %d: %w", id, err)
			}
			records[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.Inheritance, 0, len(ids))
	for _, rec := range records {
		if rec.Deleted() {
			continue
		}
		if err := s.cache.Put(*rec); err != nil {
			s.logger.Warn("caching resolved record", "id", rec.ID, "error", err)
		}
		out = append(out, *rec)
	}
	return out, nil
}

// refresh overwrites the cached entry for id with a fresh ledger read.
// Cache maintenance is best-effort; failures are logged, never surfaced.
func (s *Service) refresh(ctx context.Context, id uint64) {
	rec, err := s.ledger.Read(ctx, id)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := s.cache.Delete(id); err != nil {
			s.logger.Warn("dropping cached record", "id", id, "error", err)
		}
	case err != nil:
		s.logger.Warn("refreshing cached record", "id", id, "error", err)
	default:
		if err := s.cache.Put(*rec); err != nil {
			s.logger.Warn("caching refreshed record", "id", id, "error", err)
		}
	}
}

// cachedFallback filters deleted records out of a cached listing.
func (s *Service) cachedFallback(recs []model.Inheritance, err error) ([]model.Inheritance, error) {
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	out := make([]model.Inheritance, 0, len(recs))
	for _, rec := range recs {
		if rec.Deleted() {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}
