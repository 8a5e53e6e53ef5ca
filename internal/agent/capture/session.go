package capture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/classmark/classmark/internal/agent/camera"
	"github.com/classmark/classmark/internal/agent/debounce"
	"github.com/classmark/classmark/internal/agent/matcher"
	"github.com/classmark/classmark/internal/agent/provider"
	"github.com/classmark/classmark/internal/agent/queue"
	"github.com/classmark/classmark/internal/agent/syncclient"
	"github.com/classmark/classmark/internal/domain"
)

const (
	// DefaultScanInterval is how often the loop samples a frame
	DefaultScanInterval = 300 * time.Millisecond
	// MaxFaces caps per-frame processing, largest boxes first
	MaxFaces = 10
)

// State is the capture session lifecycle state
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// SyncClient is the server surface the session needs
type SyncClient interface {
	Mark(ctx context.Context, record domain.AttendanceRecord) error
	Sync(ctx context.Context, records []domain.AttendanceRecord) (int64, error)
	FetchEmbeddings(ctx context.Context) ([]domain.ReferenceFace, error)
}

// Config holds capture session settings
type Config struct {
	ScanInterval time.Duration
	Cooldown     time.Duration
	Threshold    float64
}

// Session drives the capture loop: frame → descriptors → matches →
// attendance events. All mutable state lives on the session; two
// sessions never interfere.
type Session struct {
	source   camera.FrameSource
	provider provider.EmbeddingProvider
	client   SyncClient
	queue    *queue.Queue
	logger   *slog.Logger
	cfg      Config

	matcher *matcher.Matcher
	limiter *debounce.Limiter

	state    atomic.Int32
	inFlight atomic.Bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex

	// markedToday holds labels already confirmed by the server for the
	// current date, so a student is never re-posted the same day
	markedToday map[string]struct{}
	markedDate  domain.Date
}

// NewSession creates an idle capture session
func NewSession(
	source camera.FrameSource,
	embProvider provider.EmbeddingProvider,
	client SyncClient,
	q *queue.Queue,
	logger *slog.Logger,
	cfg Config,
) *Session {
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = DefaultScanInterval
	}

	return &Session{
		source:      source,
		provider:    embProvider,
		client:      client,
		queue:       q,
		logger:      logger,
		cfg:         cfg,
		matcher:     matcher.New(cfg.Threshold),
		limiter:     debounce.New(cfg.Cooldown),
		markedToday: make(map[string]struct{}),
		done:        make(chan struct{}),
	}
}

// State returns the current lifecycle state
func (s *Session) State() State {
	return State(s.state.Load())
}

// Start fetches the reference set, drains the offline queue, and
// launches the capture loop. Returns an error without changing state
// when the session is already running or startup fails.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if State(s.state.Load()) == StateRunning {
		return errors.New("session already running")
	}

	refs, err := s.client.FetchEmbeddings(ctx)
	if err != nil {
		return fmt.Errorf("fetch reference set: %w", err)
	}
	s.matcher.Load(refs)
	s.logger.Info("reference set loaded", slog.Int("descriptors", s.matcher.Len()))

	// Best effort: events from previous sessions should land before
	// new ones are produced
	if flushed, err := s.Flush(ctx); err != nil {
		s.logger.Warn("startup flush failed", slog.Any("error", err))
	} else if flushed > 0 {
		s.logger.Info("startup flush complete", slog.Int("synced", flushed))
	}

	s.markedToday = make(map[string]struct{})
	s.markedDate = domain.Today()
	s.limiter.Reset()

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state.Store(int32(StateRunning))

	go s.run(loopCtx)

	return nil
}

// Stop halts the capture loop and releases the frame source. Safe to
// call more than once and on a session that never started.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State(s.state.Load())
	if state != StateRunning && state != StateError {
		return
	}

	s.cancel()
	<-s.done
	s.state.Store(int32(StateIdle))

	if err := s.source.Close(); err != nil {
		s.logger.Warn("closing frame source", slog.Any("error", err))
	}
}

// maxFrameFailures is how many consecutive capture failures are
// tolerated before the session gives up on the camera
const maxFrameFailures = 20

// run is the ticker loop; it owns no state beyond scheduling
func (s *Session) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	var frameFailures int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Never stack scans: a slow provider response just means
			// intermediate ticks are dropped
			if !s.inFlight.CompareAndSwap(false, true) {
				continue
			}
			ok := s.scan(ctx)
			s.inFlight.Store(false)

			if ok {
				frameFailures = 0
				continue
			}
			frameFailures++
			if frameFailures >= maxFrameFailures {
				s.logger.Error("giving up on frame source",
					slog.Int("consecutive_failures", frameFailures))
				s.state.Store(int32(StateError))
				s.cancel()
				return
			}
		}
	}
}

// scan processes a single frame end to end. The return value reports
// whether a frame was captured, not whether anything matched.
func (s *Session) scan(ctx context.Context) bool {
	frame, err := s.source.Frame(ctx)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, camera.ErrNoFrames) {
			s.logger.Warn("frame capture failed", slog.Any("error", err))
			return false
		}
		return true
	}

	faces, err := s.provider.Represent(ctx, frame)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn("embedding extraction failed", slog.Any("error", err))
		}
		return true
	}
	if len(faces) == 0 {
		return true
	}

	// Results that complete after Stop are stale; drop them
	if ctx.Err() != nil {
		return true
	}

	for _, detection := range s.dedupe(faces) {
		s.handleDetection(ctx, detection)
	}
	return true
}

// dedupe ranks faces by prominence, caps the count, matches each, and
// keeps only the best-distance occurrence per label within the frame
func (s *Session) dedupe(faces []provider.Face) []domain.Detection {
	sort.Slice(faces, func(i, j int) bool {
		return faces[i].Box.Area() > faces[j].Box.Area()
	})
	if len(faces) > MaxFaces {
		faces = faces[:MaxFaces]
	}

	best := make(map[string]domain.Detection)
	for _, face := range faces {
		match, err := s.matcher.Match(face.Descriptor)
		if err != nil {
			// Empty reference set: nothing can resolve this session
			s.logger.Warn("matcher unavailable", slog.Any("error", err))
			return nil
		}
		if !match.OK {
			continue
		}

		detection := domain.Detection{
			Identity:   match.Identity,
			Distance:   match.Distance,
			CapturedAt: time.Now().UTC(),
		}

		if existing, ok := best[match.Identity.Label]; !ok || detection.Distance < existing.Distance {
			best[match.Identity.Label] = detection
		}
	}

	out := make([]domain.Detection, 0, len(best))
	for _, d := range best {
		out = append(out, d)
	}
	return out
}

// handleDetection turns one deduplicated detection into at most one
// attendance event
func (s *Session) handleDetection(ctx context.Context, detection domain.Detection) {
	label := detection.Identity.Label

	s.rollDate()
	if s.alreadyMarked(label) {
		return
	}

	if !s.limiter.ShouldEmit(label, detection.CapturedAt) {
		return
	}

	confidence := detection.Confidence()
	record := domain.AttendanceRecord{
		Date:       domain.Today(),
		Status:     domain.StatusPresent,
		Method:     domain.MethodFace,
		Confidence: &confidence,
	}

	if !detection.Identity.Resolved() {
		// Queue with the raw label for manual reconciliation
		if _, err := s.queue.Enqueue(record, detection.Identity); err != nil {
			s.logger.Error("queueing unresolved identity", slog.Any("error", err))
		}
		s.logger.Info("unresolved identity queued", slog.String("label", label))
		return
	}

	record.StudentID = *detection.Identity.StudentID

	err := s.client.Mark(ctx, record)
	switch {
	case err == nil:
		s.logger.Info("attendance marked",
			slog.String("label", label),
			slog.Int64("student_id", record.StudentID),
			slog.Float64("distance", detection.Distance),
		)
		s.setMarked(label)

	case errors.Is(err, domain.ErrAlreadyMarked):
		// Server already holds the record; remember and move on
		s.setMarked(label)

	case syncclient.IsTransient(err):
		// A mark cut short by Stop looks like a transport failure;
		// the scan result is stale and must not be queued
		if ctx.Err() != nil {
			return
		}
		if _, qerr := s.queue.Enqueue(record, detection.Identity); qerr != nil {
			s.logger.Error("queueing after transient failure", slog.Any("error", qerr))
			return
		}
		s.logger.Warn("server unreachable, event queued",
			slog.String("label", label),
			slog.Any("error", err),
		)
		// Treat as locally marked so one outage does not spam the queue
		s.setMarked(label)

	default:
		// Permanent rejection: dropping is correct, retrying is not
		s.logger.Error("mark rejected",
			slog.String("label", label),
			slog.Any("error", err),
		)
	}
}

// Flush drains the offline queue in one batch. Only entries confirmed
// by the server are removed; unresolved-identity entries stay queued.
func (s *Session) Flush(ctx context.Context) (int, error) {
	return FlushQueue(ctx, s.queue, s.client, s.logger)
}

// FlushQueue syncs all resolvable queued entries via one batch call
// and removes exactly those entries on success.
func FlushQueue(ctx context.Context, q *queue.Queue, client SyncClient, logger *slog.Logger) (int, error) {
	batch := q.Snapshot()
	if len(batch) == 0 {
		return 0, nil
	}

	records := make([]domain.AttendanceRecord, 0, len(batch))
	ids := make([]uuid.UUID, 0, len(batch))
	for _, entry := range batch {
		if !entry.Identity.Resolved() {
			continue
		}
		record := entry.Record
		record.StudentID = *entry.Identity.StudentID
		records = append(records, record)
		ids = append(ids, entry.ID)
	}
	if len(records) == 0 {
		return 0, nil
	}

	inserted, err := client.Sync(ctx, records)
	if err != nil {
		return 0, fmt.Errorf("sync batch: %w", err)
	}

	if err := q.Remove(ids); err != nil {
		return 0, fmt.Errorf("remove synced entries: %w", err)
	}

	logger.Info("queue flushed",
		slog.Int("synced", len(records)),
		slog.Int64("inserted", inserted),
		slog.Int("remaining", q.Len()),
	)

	return len(records), nil
}

// rollDate clears the marked-today set when the calendar day changes.
// Caller does not hold the session lock; the set is only touched from
// the capture goroutine and Start, which never overlap while running.
func (s *Session) rollDate() {
	today := domain.Today()
	if !s.markedDate.Equal(today) {
		s.markedToday = make(map[string]struct{})
		s.markedDate = today
		s.limiter.Reset()
	}
}

func (s *Session) alreadyMarked(label string) bool {
	_, ok := s.markedToday[label]
	return ok
}

func (s *Session) setMarked(label string) {
	s.markedToday[label] = struct{}{}
}
