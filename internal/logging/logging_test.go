package logging

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/google/uuid"
)

type captureSink struct {
	mu      sync.Mutex
	batches [][]models.SystemLog
}

func (c *captureSink) write(batch []models.SystemLog) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, batch)
	return nil
}

func (c *captureSink) entries() []models.SystemLog {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []models.SystemLog
	for _, b := range c.batches {
		out = append(out, b...)
	}
	return out
}

func TestPGHandlerPersistsErrorsOnStop(t *testing.T) {
	sink := &captureSink{}
	h := newPGHandler(sink.write, time.Hour)
	logger := slog.New(h)

	logger.Info("ignored")
	logger.Error("rename failed",
		"request_id", "req-1",
		"action", "rename_list",
		"error", errors.New("boom"),
		"latency_ms", 12.6,
		"list_id", "abc",
	)
	h.Stop()
	h.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.entries()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	entries := sink.entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 persisted entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Message != "rename failed" || e.Level != "ERROR" {
		t.Errorf("unexpected entry %+v", e)
	}
	if e.RequestID != "req-1" || e.Action != "rename_list" || e.Error != "boom" || e.LatencyMs != 13 {
		t.Errorf("expected mapped columns, got %+v", e)
	}

	var extra map[string]any
	if err := json.Unmarshal(e.Extra, &extra); err != nil {
		t.Fatalf("decode extra: %v", err)
	}
	if extra["list_id"] != "abc" {
		t.Errorf("expected list_id in extra, got %v", extra)
	}
}

func TestPGHandlerTakesUserFromContext(t *testing.T) {
	sink := &captureSink{}
	h := newPGHandler(sink.write, time.Hour)
	u := session.User{ID: uuid.New()}

	slog.New(h).ErrorContext(session.WithUser(context.Background(), u), "load failed")
	h.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.entries()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	entries := sink.entries()
	if len(entries) != 1 || entries[0].UserID == nil || *entries[0].UserID != u.ID.String() {
		t.Fatalf("expected user id from context, got %+v", entries)
	}
}

func TestPGHandlerWithAttrsAndGroup(t *testing.T) {
	sink := &captureSink{}
	h := newPGHandler(sink.write, time.Hour)

	logger := slog.New(h).With("request_id", "req-9").WithGroup("db")
	logger.Error("query failed", "table", "tasks")
	h.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.entries()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}

	entries := sink.entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].RequestID != "req-9" {
		t.Errorf("expected request id from With, got %q", entries[0].RequestID)
	}
	var extra map[string]any
	if err := json.Unmarshal(entries[0].Extra, &extra); err != nil {
		t.Fatalf("decode extra: %v", err)
	}
	if extra["db.table"] != "tasks" {
		t.Errorf("expected grouped key db.table, got %v", extra)
	}
}

type countingHandler struct {
	level slog.Level
	n     int
}

func (c *countingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level }
func (c *countingHandler) Handle(context.Context, slog.Record) error    { c.n++; return nil }
func (c *countingHandler) WithAttrs([]slog.Attr) slog.Handler           { return c }
func (c *countingHandler) WithGroup(string) slog.Handler                { return c }

func TestMultiHandlerRespectsEachLevel(t *testing.T) {
	info := &countingHandler{level: slog.LevelInfo}
	errs := &countingHandler{level: slog.LevelError}
	logger := slog.New(NewMultiHandler(info, errs))

	logger.Debug("dropped")
	logger.Info("one")
	logger.Error("two")

	if info.n != 2 {
		t.Errorf("expected info handler to see 2 records, got %d", info.n)
	}
	if errs.n != 1 {
		t.Errorf("expected error handler to see 1 record, got %d", errs.n)
	}
}

type failingHandler struct{ err error }

func (f failingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (f failingHandler) Handle(context.Context, slog.Record) error { return f.err }
func (f failingHandler) WithAttrs([]slog.Attr) slog.Handler        { return f }
func (f failingHandler) WithGroup(string) slog.Handler             { return f }

func TestMultiHandlerKeepsGoingAfterAFailure(t *testing.T) {
	boom := errors.New("database unavailable")
	stdout := &countingHandler{level: slog.LevelInfo}
	h := NewMultiHandler(failingHandler{err: boom}, nil, stdout)

	err := h.Handle(context.Background(), slog.NewRecord(time.Now(), slog.LevelError, "save failed", 0))

	if !errors.Is(err, boom) {
		t.Errorf("expected the failure reported, got %v", err)
	}
	if stdout.n != 1 {
		t.Errorf("expected the record still written to stdout, got %d", stdout.n)
	}
}

func TestCleanupPurgesBeyondRetention(t *testing.T) {
	now := time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cutoffs []time.Time
	c := &Cleanup{
		retention: 30 * 24 * time.Hour,
		interval:  time.Hour,
		now:       func() time.Time { return now },
		purge: func(_ context.Context, cutoff time.Time) (int64, error) {
			cutoffs = append(cutoffs, cutoff)
			cancel()
			return 3, nil
		},
	}

	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected Run to stop when the context ends")
	}
	if len(cutoffs) != 1 {
		t.Fatalf("expected one sweep at start, got %d", len(cutoffs))
	}
	if want := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC); !cutoffs[0].Equal(want) {
		t.Errorf("expected cutoff %v, got %v", want, cutoffs[0])
	}
}
