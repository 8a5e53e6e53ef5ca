package syncclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classmark/classmark/internal/domain"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, APIKey: "test-key", Timeout: 2 * time.Second})
}

func record(studentID int64) domain.AttendanceRecord {
	date, _ := domain.ParseDate("2024-03-01")
	return domain.AttendanceRecord{
		StudentID: studentID,
		Date:      date,
		Status:    domain.StatusPresent,
		Method:    domain.MethodFace,
	}
}

func TestClient_Mark(t *testing.T) {
	t.Run("sends record with api key", func(t *testing.T) {
		var gotKey string
		var gotBody map[string]any
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get("X-API-Key")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		})

		require.NoError(t, c.Mark(context.Background(), record(42)))
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, float64(42), gotBody["student_id"])
		assert.Equal(t, "2024-03-01", gotBody["date"])
	})

	t.Run("conflict maps to already marked", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":{"code":"already_marked","message":"dup"}}`))
		})

		err := c.Mark(context.Background(), record(42))
		assert.ErrorIs(t, err, domain.ErrAlreadyMarked)
		assert.False(t, IsTransient(err))
	})

	t.Run("server error is transient", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := c.Mark(context.Background(), record(42))
		assert.True(t, IsTransient(err))
	})

	t.Run("unreachable server is transient", func(t *testing.T) {
		c := New(Config{BaseURL: "http://127.0.0.1:1", Timeout: time.Second})

		err := c.Mark(context.Background(), record(42))
		assert.True(t, IsTransient(err))
	})

	t.Run("bad request is permanent", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":"invalid_payload","message":"bad"}}`))
		})

		err := c.Mark(context.Background(), record(42))
		assert.ErrorIs(t, err, domain.ErrInvalidPayload)
		assert.False(t, IsTransient(err))
	})
}

func TestClient_Sync(t *testing.T) {
	t.Run("returns inserted count", func(t *testing.T) {
		var gotBody syncRequest
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "inserted": 2})
		})

		inserted, err := c.Sync(context.Background(), []domain.AttendanceRecord{
			record(1), record(2), record(1),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inserted)
		assert.Len(t, gotBody.Records, 3)
	})

	t.Run("unauthorized", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"no"}}`))
		})

		_, err := c.Sync(context.Background(), []domain.AttendanceRecord{record(1)})
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestClient_FetchEmbeddings(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]domain.ReferenceFace{
			{StudentID: 1, Roll: "r-001", Name: "Ada", Embedding: []float32{0.1, 0.2}},
		})
	})

	refs, err := c.FetchEmbeddings(context.Background())
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, "Ada", refs[0].Name)
	assert.Len(t, refs[0].Embedding, 2)
}

func TestClient_RegisterFace(t *testing.T) {
	t.Run("unknown student", func(t *testing.T) {
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"student_not_found","message":"missing"}}`))
		})

		err := c.RegisterFace(context.Background(), 999, []float32{0.1})
		assert.ErrorIs(t, err, domain.ErrStudentNotFound)
	})

	t.Run("success", func(t *testing.T) {
		var gotBody registerFaceRequest
		c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
		})

		require.NoError(t, c.RegisterFace(context.Background(), 7, []float32{0.5, 0.25}))
		assert.Equal(t, int64(7), gotBody.StudentID)
		assert.Len(t, gotBody.Embedding, 2)
	})
}
