package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/classmark/classmark/internal/domain"
)

// DefaultTimeout bounds every request to the attendance server
const DefaultTimeout = 10 * time.Second

// headerAPIKey matches the server's shared-secret header
const headerAPIKey = "X-API-Key"

// TransientError marks failures worth retrying later: network errors,
// timeouts, and 5xx responses. The capture loop queues the event and
// moves on instead of blocking on them.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient sync failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the error should be retried via the queue
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// Config holds the sync client settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the attendance server's v1 API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// New creates a sync client. A zero timeout falls back to DefaultTimeout.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
	}
}

type markRequest struct {
	StudentID  int64    `json:"student_id"`
	Date       string   `json:"date"`
	Status     string   `json:"status,omitempty"`
	Method     string   `json:"method,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type syncRequest struct {
	Records []markRequest `json:"records"`
}

type syncResponse struct {
	Success  bool  `json:"success"`
	Inserted int64 `json:"inserted"`
}

type registerFaceRequest struct {
	StudentID int64     `json:"student_id"`
	Embedding []float32 `json:"embedding"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func toMarkRequest(record domain.AttendanceRecord) markRequest {
	return markRequest{
		StudentID:  record.StudentID,
		Date:       record.Date.String(),
		Status:     string(record.Status),
		Method:     string(record.Method),
		Confidence: record.Confidence,
	}
}

// Mark submits a single attendance record. A duplicate-day conflict
// comes back as domain.ErrAlreadyMarked; callers treat it the same as
// success because the server already holds the record.
func (c *Client) Mark(ctx context.Context, record domain.AttendanceRecord) error {
	return c.do(ctx, "POST", "/api/v1/attendance/mark", toMarkRequest(record), nil)
}

// Sync submits a batch of records and returns how many were genuinely new
func (c *Client) Sync(ctx context.Context, records []domain.AttendanceRecord) (int64, error) {
	req := syncRequest{Records: make([]markRequest, len(records))}
	for i, record := range records {
		req.Records[i] = toMarkRequest(record)
	}

	var resp syncResponse
	if err := c.do(ctx, "POST", "/api/v1/attendance/sync", req, &resp); err != nil {
		return 0, err
	}

	return resp.Inserted, nil
}

// FetchEmbeddings downloads the labeled reference set
func (c *Client) FetchEmbeddings(ctx context.Context) ([]domain.ReferenceFace, error) {
	var refs []domain.ReferenceFace
	if err := c.do(ctx, "GET", "/api/v1/embeddings", nil, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}

// RegisterFace uploads an additional reference descriptor for a student
func (c *Client) RegisterFace(ctx context.Context, studentID int64, embedding []float32) error {
	req := registerFaceRequest{StudentID: studentID, Embedding: embedding}
	return c.do(ctx, "POST", "/api/v1/face/register", req, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransientError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return c.mapError(resp.StatusCode, respBody)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// mapError turns an HTTP error response into the domain error taxonomy
func (c *Client) mapError(status int, body []byte) error {
	var decoded errorResponse
	_ = json.Unmarshal(body, &decoded)

	switch {
	case status == http.StatusConflict:
		return domain.ErrAlreadyMarked
	case status == http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case status == http.StatusNotFound && decoded.Error.Code == "student_not_found":
		return domain.ErrStudentNotFound
	case status >= 500:
		return &TransientError{Err: fmt.Errorf("server returned status %d: %s", status, body)}
	case status == http.StatusBadRequest:
		return domain.ErrInvalidPayload
	default:
		return fmt.Errorf("server returned status %d: %s", status, body)
	}
}
