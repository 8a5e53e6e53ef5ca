package queue

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmark/classmark/internal/domain"
)

func testRecord(studentID int64) domain.AttendanceRecord {
	return domain.AttendanceRecord{
		StudentID: studentID,
		Date:      domain.Today(),
		Status:    domain.StatusPresent,
		Method:    domain.MethodFace,
	}
}

func TestQueue_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")

	q, err := Open(path)
	require.NoError(t, err)

	_, err = q.Enqueue(testRecord(1), domain.ResolvedIdentity(1, "Ada"))
	require.NoError(t, err)
	_, err = q.Enqueue(testRecord(2), domain.ResolvedIdentity(2, "Grace"))
	require.NoError(t, err)

	// Simulated restart
	reopened, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 2, reopened.Len())

	entries := reopened.Snapshot()
	assert.Equal(t, int64(1), entries[0].Record.StudentID)
	assert.Equal(t, int64(2), entries[1].Record.StudentID)
}

func TestQueue_MissingFileIsEmpty(t *testing.T) {
	q, err := Open(filepath.Join(t.TempDir(), "nested", "queue.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_RemoveOnlyConfirmedBatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	q, err := Open(path)
	require.NoError(t, err)

	e1, err := q.Enqueue(testRecord(1), domain.ResolvedIdentity(1, "Ada"))
	require.NoError(t, err)
	e2, err := q.Enqueue(testRecord(2), domain.ResolvedIdentity(2, "Grace"))
	require.NoError(t, err)

	batch := q.Snapshot()
	require.Len(t, batch, 2)

	// An event lands while the batch is in flight
	e3, err := q.Enqueue(testRecord(3), domain.ResolvedIdentity(3, "Katherine"))
	require.NoError(t, err)

	// Only the synced batch is removed
	require.NoError(t, q.Remove([]uuid.UUID{e1.ID, e2.ID}))

	remaining := q.Snapshot()
	require.Len(t, remaining, 1)
	assert.Equal(t, e3.ID, remaining[0].ID)

	// Removal is durable
	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 1, reopened.Len())
}

func TestQueue_RemoveEmptyIsNoop(t *testing.T) {
	q, err := Open(filepath.Join(t.TempDir(), "queue.json"))
	require.NoError(t, err)

	_, err = q.Enqueue(testRecord(1), domain.ResolvedIdentity(1, "Ada"))
	require.NoError(t, err)

	require.NoError(t, q.Remove(nil))
	assert.Equal(t, 1, q.Len())
}

func TestQueue_KeepsUnresolvedIdentities(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	q, err := Open(path)
	require.NoError(t, err)

	record := testRecord(0)
	_, err = q.Enqueue(record, domain.UnresolvedIdentity("unknown-visitor"))
	require.NoError(t, err)

	reopened, err := Open(path)
	require.NoError(t, err)

	entries := reopened.Snapshot()
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Identity.Resolved())
	assert.Equal(t, "unknown-visitor", entries[0].Identity.Label)
}

func TestQueue_ConcurrentEnqueue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "queue.json")
	q, err := Open(path)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := q.Enqueue(testRecord(id), domain.ResolvedIdentity(id, "x"))
			assert.NoError(t, err)
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 20, q.Len())

	reopened, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, 20, reopened.Len())
}
