//go:build integration

package api

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/classmark/classmark/internal/database"
	"github.com/classmark/classmark/internal/repository"
)

var (
	testDB      *pgxpool.Pool
	testConnStr string
)

func TestMain(m *testing.M) {
	ctx := context.Background()

	// Start PostgreSQL container with pgvector
	req := testcontainers.ContainerRequest{
		Image:        "pgvector/pgvector:pg16",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "classmark_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		fmt.Printf("Failed to start container: %v\n", err)
		os.Exit(1)
	}

	defer func() {
		if err := container.Terminate(ctx); err != nil {
			fmt.Printf("Failed to terminate container: %v\n", err)
		}
	}()

	host, _ := container.Host(ctx)
	port, _ := container.MappedPort(ctx, "5432")

	testConnStr = fmt.Sprintf("postgres://test:test@%s:%s/classmark_test?sslmode=disable", host, port.Port())

	// Apply the real migrations
	migrationDB, err := sql.Open("pgx", testConnStr)
	if err != nil {
		fmt.Printf("Failed to open migration connection: %v\n", err)
		os.Exit(1)
	}

	migrator, err := database.NewMigrator(migrationDB, "classmark_test")
	if err != nil {
		fmt.Printf("Failed to create migrator: %v\n", err)
		os.Exit(1)
	}
	if err := migrator.Up(); err != nil {
		fmt.Printf("Failed to run migrations: %v\n", err)
		os.Exit(1)
	}
	migrator.Close()

	testDB, err = pgxpool.New(ctx, testConnStr)
	if err != nil {
		fmt.Printf("Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer testDB.Close()

	code := m.Run()
	os.Exit(code)
}

func newTestRouter() *Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(logger, &Dependencies{
		StudentRepo:    repository.NewStudentRepository(testDB),
		AttendanceRepo: repository.NewAttendanceRepository(testDB),
		EmbeddingRepo:  repository.NewEmbeddingRepository(testDB),
		DB:             testDB,
	})
	router.Setup()
	return router
}

func doJSON(t *testing.T, router *Router, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := router.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	var decoded map[string]any
	if len(data) > 0 {
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("Failed to parse response %q: %v", data, err)
		}
	}

	return resp.StatusCode, decoded
}

func TestIntegration_HealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	resp, err := router.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
}

func TestIntegration_ReadyEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest("GET", "/ready", nil)
	resp, err := router.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if resp.StatusCode != 200 {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
}

func TestIntegration_MarkSyncRoundTrip(t *testing.T) {
	router := newTestRouter()

	// Roster
	status, created := doJSON(t, router, "POST", "/api/v1/students", map[string]any{
		"roll": "it-001", "name": "Grace Hopper",
	})
	if status != 201 {
		t.Fatalf("Create student status = %d, want 201 (%v)", status, created)
	}
	gID := int64(created["id"].(float64))

	status, created = doJSON(t, router, "POST", "/api/v1/students", map[string]any{
		"roll": "it-002", "name": "Alan Turing",
	})
	if status != 201 {
		t.Fatalf("Create student status = %d, want 201 (%v)", status, created)
	}
	aID := int64(created["id"].(float64))

	mark := map[string]any{
		"student_id": gID,
		"date":       "2024-03-01",
		"status":     "present",
		"method":     "face",
		"confidence": 0.93,
	}

	// First mark lands
	status, body := doJSON(t, router, "POST", "/api/v1/attendance/mark", mark)
	if status != 201 {
		t.Fatalf("Mark status = %d, want 201 (%v)", status, body)
	}

	// Identical second mark conflicts without duplicating the row
	status, body = doJSON(t, router, "POST", "/api/v1/attendance/mark", mark)
	if status != 409 {
		t.Fatalf("Duplicate mark status = %d, want 409 (%v)", status, body)
	}
	errBody := body["error"].(map[string]any)
	if errBody["code"] != "already_marked" {
		t.Errorf("Duplicate mark code = %v, want already_marked", errBody["code"])
	}

	// Batch containing one duplicate and one new record
	status, body = doJSON(t, router, "POST", "/api/v1/attendance/sync", map[string]any{
		"records": []map[string]any{
			{"student_id": gID, "date": "2024-03-01", "method": "face"},
			{"student_id": aID, "date": "2024-03-01", "method": "face"},
		},
	})
	if status != 200 {
		t.Fatalf("Sync status = %d, want 200 (%v)", status, body)
	}
	if body["inserted"] != float64(1) {
		t.Errorf("Sync inserted = %v, want 1", body["inserted"])
	}

	// The day holds exactly one row per student
	status, _ = doJSON(t, router, "GET", "/api/v1/attendance?date=2024-03-01", nil)
	if status != 200 {
		t.Fatalf("List status = %d, want 200", status)
	}

	var count int
	if err := testDB.QueryRow(context.Background(),
		"SELECT COUNT(*) FROM attendance WHERE date = '2024-03-01'").Scan(&count); err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Attendance rows = %d, want 2", count)
	}
}

func TestIntegration_RegisterFaceAndFetchEmbeddings(t *testing.T) {
	router := newTestRouter()

	status, created := doJSON(t, router, "POST", "/api/v1/students", map[string]any{
		"roll": "it-010", "name": "Katherine Johnson",
	})
	if status != 201 {
		t.Fatalf("Create student status = %d, want 201 (%v)", status, created)
	}
	id := int64(created["id"].(float64))

	embedding := make([]float32, 512)
	for i := range embedding {
		embedding[i] = float32(i) / 512
	}

	status, body := doJSON(t, router, "POST", "/api/v1/face/register", map[string]any{
		"student_id": id,
		"embedding":  embedding,
	})
	if status != 200 {
		t.Fatalf("Register face status = %d, want 200 (%v)", status, body)
	}

	req := httptest.NewRequest("GET", "/api/v1/embeddings", nil)
	resp, err := router.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("Embeddings status = %d, want 200", resp.StatusCode)
	}

	var refs []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&refs); err != nil {
		t.Fatalf("Failed to parse embeddings: %v", err)
	}

	found := false
	for _, ref := range refs {
		if int64(ref["student_id"].(float64)) == id {
			found = true
			if n := len(ref["embedding"].([]any)); n != 512 {
				t.Errorf("Embedding length = %d, want 512", n)
			}
		}
	}
	if !found {
		t.Errorf("Registered student %d missing from reference set", id)
	}
}
