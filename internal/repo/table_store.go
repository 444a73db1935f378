package repo

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/miradorstack/mirador-rul/internal/cache"
	"github.com/miradorstack/mirador-rul/internal/engine"
	"github.com/miradorstack/mirador-rul/internal/models"
)

const snapshotVersion = 1

type tableSnapshot struct {
	Version     int                    `json:"version"`
	Fingerprint string                 `json:"fingerprint"`
	Records     int                    `json:"records"`
	BuiltAt     time.Time              `json:"built_at"`
	Groups      []engine.GroupEstimate `json:"groups"`
}

// TableStore builds parameter tables and reuses cached snapshots of identical corpora.
type TableStore struct {
	logger *slog.Logger
	cache  cache.Provider
	ttl    time.Duration
}

// NewTableStore constructs a TableStore; a nil provider disables caching.
func NewTableStore(logger *slog.Logger, provider cache.Provider, ttl time.Duration) *TableStore {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	return &TableStore{logger: logger, cache: provider, ttl: ttl}
}

// Load returns the parameter table for corpus, from cache when a snapshot of the same
// corpus exists. The second return value reports a cache hit. Cache failures only log.
func (s *TableStore) Load(ctx context.Context, corpus []models.FailureRecord) (*engine.ParameterTable, bool, error) {
	fingerprint := Fingerprint(corpus)
	key := cacheTableKey(fingerprint)

	if data, err := s.cache.Get(ctx, key); err == nil {
		table, decodeErr := decodeSnapshot(data, fingerprint)
		if decodeErr == nil {
			s.logger.Info("parameter table loaded from cache", slog.String("fingerprint", fingerprint))
			return table, true, nil
		}
		s.logger.Warn("discarding cached parameter table", slog.String("fingerprint", fingerprint), slog.Any("error", decodeErr))
		_ = s.cache.Del(ctx, key)
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("parameter table cache unavailable", slog.Any("error", err))
	}

	table, err := engine.BuildParameterTable(corpus)
	if err != nil {
		return nil, false, err
	}
	estimated, insufficient := table.Counts()
	s.logger.Info("parameter table built",
		slog.Int("records", len(corpus)),
		slog.Int("estimated_groups", estimated),
		slog.Int("insufficient_groups", insufficient),
	)

	payload, err := json.Marshal(tableSnapshot{
		Version:     snapshotVersion,
		Fingerprint: fingerprint,
		Records:     len(corpus),
		BuiltAt:     time.Now().UTC(),
		Groups:      table.Snapshot(),
	})
	if err == nil {
		if err := s.cache.Set(ctx, key, payload, s.ttl); err != nil {
			s.logger.Warn("failed to cache parameter table", slog.Any("error", err))
		}
	}
	return table, false, nil
}

// Fingerprint hashes the ordered corpus. Any change to a record changes the result.
func Fingerprint(corpus []models.FailureRecord) string {
	digest := xxhash.New()
	var buf [24]byte
	for _, rec := range corpus {
		binary.LittleEndian.PutUint64(buf[0:8], uint64(rec.MachineCategory))
		binary.LittleEndian.PutUint64(buf[8:16], uint64(rec.FailureType))
		binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(rec.DurationHours))
		_, _ = digest.Write(buf[:])
	}
	var sum [8]byte
	binary.BigEndian.PutUint64(sum[:], digest.Sum64())
	return hex.EncodeToString(sum[:])
}

func decodeSnapshot(data []byte, fingerprint string) (*engine.ParameterTable, error) {
	var snap tableSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, snapshotVersion)
	}
	if snap.Fingerprint != fingerprint {
		return nil, fmt.Errorf("snapshot fingerprint %s does not match %s", snap.Fingerprint, fingerprint)
	}
	return engine.TableFromSnapshot(snap.Groups)
}

func cacheTableKey(fingerprint string) string {
	return fmt.Sprintf("mirador-rul:parameter-table:v%d:%s", snapshotVersion, fingerprint)
}
