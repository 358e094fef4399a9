// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package history persists per-rollout step contexts for contribution
// bookkeeping.
//
// The contribution signal compares the current step context against the
// previous one. Rollout pipelines that stream steps one at a time often
// cannot forward the previous context themselves; this store records
// each context keyed by (rollout ID, step) in an embedded BadgerDB so
// the scoring service can resolve the predecessor on their behalf.
//
// Records carry a TTL so abandoned rollouts age out without explicit
// cleanup. In-memory mode exists for tests.
package history

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/AleutianAI/AleutianRL/services/reward"
)

// ErrClosed is returned when operations are called on a closed store.
var ErrClosed = errors.New("history store is closed")

// Config holds configuration for the history store.
type Config struct {
	// Path is the directory for BadgerDB files.
	// Required unless InMemory is true.
	Path string

	// InMemory enables in-memory mode (no disk persistence).
	// Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	// Contribution bookkeeping tolerates losing the tail of a rollout
	// on crash, so async writes are the default.
	SyncWrites bool

	// TTL is how long step contexts are retained. Default: 24h.
	// Zero disables expiry.
	TTL time.Duration

	// Logger receives BadgerDB's internal logging. If nil, that
	// logging is disabled.
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig(path string) Config {
	return Config{
		Path:       path,
		SyncWrites: false,
		TTL:        24 * time.Hour,
	}
}

// InMemoryConfig returns configuration optimized for testing.
func InMemoryConfig() Config {
	return Config{
		InMemory: true,
		TTL:      0,
	}
}

// Store is a BadgerDB-backed step-context store.
//
// Thread Safety: Safe for concurrent use; BadgerDB transactions
// provide isolation.
type Store struct {
	db  *badger.DB
	ttl time.Duration
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Open creates and opens a history store with the given configuration.
//
// Inputs:
//   - cfg: Store configuration. Path is created if it does not exist.
//
// Outputs:
//   - *Store: Ready-to-use store. Call Close when done.
//   - error: Non-nil if the directory cannot be created or BadgerDB
//     fails to open.
func Open(cfg Config) (*Store, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("history: path required for persistent store")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("history: create dir: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path).WithSyncWrites(cfg.SyncWrites)
	}

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("history: open badger: %w", err)
	}
	return &Store{db: db, ttl: cfg.TTL}, nil
}

// Record stores the step context for (rolloutID, step).
func (s *Store) Record(rolloutID string, step int, sc reward.StepContext) error {
	if s.db.IsClosed() {
		return ErrClosed
	}
	if rolloutID == "" {
		return errors.New("history: rollout ID required")
	}
	if step < 0 {
		return fmt.Errorf("history: negative step %d", step)
	}

	val, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("history: marshal context: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry(stepKey(rolloutID, step), val)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Step returns the recorded context for (rolloutID, step).
//
// Outputs:
//   - reward.StepContext: The recorded context, zero when not found.
//   - bool: Whether a record was found.
//   - error: Non-nil only for storage failures; absence is not an error.
func (s *Store) Step(rolloutID string, step int) (reward.StepContext, bool, error) {
	if s.db.IsClosed() {
		return reward.StepContext{}, false, ErrClosed
	}

	var sc reward.StepContext
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(stepKey(rolloutID, step))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sc)
		})
	})
	if err != nil {
		return reward.StepContext{}, false, fmt.Errorf("history: read step: %w", err)
	}
	return sc, found, nil
}

// Previous returns the most recent recorded context strictly before
// step for the rollout.
//
// Description:
//
//	Steps may be sparse (the pipeline can skip recording), so this
//	walks the rollout's keys in reverse from step-1 rather than
//	assuming step-1 exists. Absence yields the neutral zero context
//	and found=false; contribution degrades to 0 in that case.
func (s *Store) Previous(rolloutID string, step int) (reward.StepContext, bool, error) {
	if s.db.IsClosed() {
		return reward.StepContext{}, false, ErrClosed
	}
	if step <= 0 {
		return reward.StepContext{}, false, nil
	}

	prefix := rolloutPrefix(rolloutID)
	var sc reward.StepContext
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(stepKey(rolloutID, step-1))
		if !it.ValidForPrefix(prefix) {
			return nil
		}
		found = true
		return it.Item().Value(func(val []byte) error {
			return json.Unmarshal(val, &sc)
		})
	})
	if err != nil {
		return reward.StepContext{}, false, fmt.Errorf("history: read previous: %w", err)
	}
	return sc, found, nil
}

// DropRollout removes every record for the rollout. Called when the
// trainer reports a trajectory as finished.
func (s *Store) DropRollout(rolloutID string) error {
	if s.db.IsClosed() {
		return ErrClosed
	}

	prefix := rolloutPrefix(rolloutID)
	var keys [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("history: list rollout: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return fmt.Errorf("history: delete rollout: %w", err)
		}
	}
	return wb.Flush()
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s.db.IsClosed() {
		return nil
	}
	return s.db.Close()
}

// stepKey builds "ctx/{rollout}/{step}" with a big-endian step so
// lexicographic key order matches step order.
func stepKey(rolloutID string, step int) []byte {
	key := rolloutPrefix(rolloutID)
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(step))
	return append(key, b[:]...)
}

func rolloutPrefix(rolloutID string) []byte {
	return append([]byte("ctx/"+rolloutID), '/')
}
