package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	flushInterval = 5 * time.Second
	flushSize     = 50
)

// pgSink is shared by a PGHandler and every handler derived from it with
// WithAttrs or WithGroup.
type pgSink struct {
	write  func([]models.SystemLog) error
	mu     sync.Mutex
	buffer []models.SystemLog
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// PGHandler is an slog.Handler that batches ERROR+ logs to PostgreSQL.
type PGHandler struct {
	sink   *pgSink
	attrs  []slog.Attr
	prefix string
}

func NewPGHandler(db *gorm.DB) *PGHandler {
	return newPGHandler(func(batch []models.SystemLog) error {
		return db.CreateInBatches(batch, flushSize).Error
	}, flushInterval)
}

func newPGHandler(write func([]models.SystemLog) error, interval time.Duration) *PGHandler {
	s := &pgSink{
		write:  write,
		buffer: make([]models.SystemLog, 0, flushSize),
		ticker: time.NewTicker(interval),
		done:   make(chan struct{}),
	}
	go s.flushLoop()
	return &PGHandler{sink: s}
}

func (s *pgSink) flushLoop() {
	for {
		select {
		case <-s.ticker.C:
			s.flush()
		case <-s.done:
			s.flush()
			return
		}
	}
}

func (s *pgSink) flush() {
	s.mu.Lock()
	if len(s.buffer) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.buffer
	s.buffer = make([]models.SystemLog, 0, flushSize)
	s.mu.Unlock()

	if err := s.write(batch); err != nil {
		// Warn stays below the ERROR threshold so this cannot loop.
		slog.Warn("failed to flush system logs to DB", "error", err, "count", len(batch))
	}
}

// Stop flushes what is buffered and stops the background loop.
func (h *PGHandler) Stop() {
	h.sink.once.Do(func() {
		h.sink.ticker.Stop()
		close(h.sink.done)
	})
}

// Enabled only handles ERROR and above.
func (h *PGHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= slog.LevelError
}

func (h *PGHandler) Handle(ctx context.Context, record slog.Record) error {
	entry := models.SystemLog{
		ID:        uuid.New(),
		Timestamp: record.Time,
		Level:     record.Level.String(),
		Message:   record.Message,
	}

	extra := make(map[string]interface{})
	apply := func(key string, v slog.Value) {
		switch key {
		case "request_id":
			entry.RequestID = v.String()
		case "user_id":
			s := v.String()
			entry.UserID = &s
		case "action":
			entry.Action = v.String()
		case "error":
			entry.Error = v.String()
		case "latency_ms":
			switch n := v.Any().(type) {
			case float64:
				entry.LatencyMs = int(math.Round(n))
			case int64:
				entry.LatencyMs = int(n)
			}
		default:
			extra[key] = v.Any()
		}
	}
	for _, a := range h.attrs {
		apply(a.Key, a.Value)
	}
	record.Attrs(func(a slog.Attr) bool {
		apply(h.prefix+a.Key, a.Value)
		return true
	})

	if entry.UserID == nil {
		if u, ok := session.UserFrom(ctx); ok {
			s := u.ID.String()
			entry.UserID = &s
		}
	}

	if len(extra) > 0 {
		if b, err := json.Marshal(extra); err == nil {
			entry.Extra = datatypes.JSON(b)
		}
	}

	h.sink.mu.Lock()
	h.sink.buffer = append(h.sink.buffer, entry)
	needFlush := len(h.sink.buffer) >= flushSize
	h.sink.mu.Unlock()

	if needFlush {
		go h.sink.flush()
	}
	return nil
}

func (h *PGHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *PGHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}
