package queue

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/classmark/classmark/internal/domain"
)

// Entry is one attendance event awaiting sync. Unresolved identities
// are queued too, carrying only their label, so a roster fix can
// recover them later.
type Entry struct {
	ID       uuid.UUID               `json:"id"`
	Record   domain.AttendanceRecord `json:"record"`
	Identity domain.Identity         `json:"identity"`
	QueuedAt time.Time               `json:"queued_at"`
}

// Queue is a durable FIFO of attendance events backed by a JSON file.
// Every mutation is flushed to disk via a temp file and atomic rename,
// so a crash mid-write never corrupts the previous state.
type Queue struct {
	path    string
	entries []Entry
	mu      sync.Mutex
}

// Open loads the queue at path, creating parent directories as needed.
// A missing file is an empty queue.
func Open(path string) (*Queue, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create queue directory: %w", err)
	}

	q := &Queue{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return q, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read queue file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &q.entries); err != nil {
			return nil, fmt.Errorf("decode queue file: %w", err)
		}
	}

	return q, nil
}

// Enqueue appends an event and persists the queue
func (q *Queue) Enqueue(record domain.AttendanceRecord, identity domain.Identity) (Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entry := Entry{
		ID:       uuid.New(),
		Record:   record,
		Identity: identity,
		QueuedAt: time.Now().UTC(),
	}

	q.entries = append(q.entries, entry)
	if err := q.persist(); err != nil {
		q.entries = q.entries[:len(q.entries)-1]
		return Entry{}, err
	}

	return entry, nil
}

// Snapshot returns a copy of the current entries in FIFO order. The
// caller syncs the snapshot and then calls Remove with the ids the
// server confirmed; events enqueued in between are never lost.
func (q *Queue) Snapshot() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Remove deletes the entries with the given ids and persists the queue
func (q *Queue) Remove(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	drop := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := q.entries[:0]
	for _, entry := range q.entries {
		if _, ok := drop[entry.ID]; !ok {
			kept = append(kept, entry)
		}
	}
	q.entries = kept

	return q.persist()
}

// Len returns the number of queued entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// persist writes the queue to disk. Caller must hold the lock.
func (q *Queue) persist() error {
	data, err := json.MarshalIndent(q.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode queue: %w", err)
	}

	tmp := q.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write queue temp file: %w", err)
	}

	if err := os.Rename(tmp, q.path); err != nil {
		return fmt.Errorf("replace queue file: %w", err)
	}

	return nil
}
