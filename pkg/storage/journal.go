// Package storage persists an append-only audit journal of proxied
// requests. The journal is write-behind bookkeeping only: the substitution
// pipeline re-derives every address per request and never reads from here.
package storage

import (
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

// Record is one journal entry: what came in, what the chain decided.
type Record struct {
	Seq         uint64
	Time        int64 // unix milliseconds
	Instruction string
	Status      string // "forwarded" or "rejected"
	Error       string // empty on success
	Accounts    []string
}

// Journal is a pebble-backed sequence of Records.
type Journal struct {
	db *pebble.DB

	mu      sync.Mutex
	nextSeq uint64
}

// OpenJournal opens (or creates) the journal at path and resumes the
// sequence after the last persisted record.
func OpenJournal(path string) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{
		Cache:        pebble.NewCache(16 << 20),
		MemTableSize: 8 << 20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", path, err)
	}

	j := &Journal{db: db}
	j.nextSeq, err = lastSeq(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func lastSeq(db *pebble.DB) (uint64, error) {
	iter, err := db.NewIter(nil)
	if err != nil {
		return 0, fmt.Errorf("failed to scan journal: %w", err)
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, nil
	}
	return seqFromKey(iter.Key()) + 1, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Append assigns the next sequence number to rec and persists it.
func (j *Journal) Append(rec *Record) error {
	j.mu.Lock()
	rec.Seq = j.nextSeq
	j.nextSeq++
	j.mu.Unlock()

	data, err := encodeGob(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := j.db.Set(seqKey(rec.Seq), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to append record %d: %w", rec.Seq, err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (j *Journal) Recent(limit int) ([]*Record, error) {
	iter, err := j.db.NewIter(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	defer iter.Close()

	var records []*Record
	for ok := iter.Last(); ok && len(records) < limit; ok = iter.Prev() {
		var rec Record
		if err := decodeGob(iter.Value(), &rec); err != nil {
			continue // skip undecodable entries
		}
		records = append(records, &rec)
	}
	return records, nil
}
