package slogx

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultRingCapacity bounds the in-memory log view.
const DefaultRingCapacity = 1000

// Entry is one captured log record.
type Entry struct {
	Time     time.Time      `json:"time"`
	Level    string         `json:"level"`
	Category string         `json:"category,omitempty"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// Ring keeps the most recent log entries; once full the oldest entry is
// overwritten. It is safe for concurrent use.
type Ring struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// NewRing returns a ring holding at most capacity entries.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{entries: make([]Entry, capacity)}
}

// Handler returns a slog.Handler that appends into the ring.
func (r *Ring) Handler(level slog.Leveler) slog.Handler {
	if level == nil {
		level = slog.LevelDebug
	}
	return &ringHandler{ring: r, level: level}
}

func (r *Ring) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = e
	r.next = (r.next + 1) % len(r.entries)
	if r.next == 0 {
		r.full = true
	}
}

// Entries returns a copy of the buffered entries, oldest first.
func (r *Ring) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		return append([]Entry(nil), r.entries[:r.next]...)
	}
	out := make([]Entry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	return append(out, r.entries[:r.next]...)
}

// Len returns the number of buffered entries.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.entries)
	}
	return r.next
}

// Capacity returns the maximum number of entries kept.
func (r *Ring) Capacity() int { return len(r.entries) }

// Clear drops every buffered entry.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.entries)
	r.next = 0
	r.full = false
}

type ringHandler struct {
	ring   *Ring
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func (h *ringHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *ringHandler) Handle(_ context.Context, rec slog.Record) error {
	e := Entry{
		Time:    rec.Time,
		Level:   rec.Level.String(),
		Message: rec.Message,
		Data:    map[string]any{},
	}

	for _, a := range h.attrs {
		collect(&e, "", a)
	}
	rec.Attrs(func(a slog.Attr) bool {
		collect(&e, h.prefix, a)
		return true
	})
	if len(e.Data) == 0 {
		e.Data = nil
	}

	h.ring.add(e)
	return nil
}

func (h *ringHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	qualified := make([]slog.Attr, 0, len(attrs))
	for _, a := range attrs {
		if h.prefix != "" && a.Key != CategoryKey {
			a.Key = h.prefix + a.Key
		}
		qualified = append(qualified, a)
	}
	return &ringHandler{
		ring:   h.ring,
		level:  h.level,
		attrs:  append(append([]slog.Attr(nil), h.attrs...), qualified...),
		prefix: h.prefix,
	}
}

func (h *ringHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &ringHandler{ring: h.ring, level: h.level, attrs: h.attrs, prefix: h.prefix + name + "."}
}

func collect(e *Entry, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Key == CategoryKey && prefix == "" {
		e.Category = a.Value.String()
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			collect(e, p, ga)
		}
		return
	}

	v := a.Value.Any()
	if err, ok := v.(error); ok {
		v = err.Error()
	}
	e.Data[prefix+a.Key] = v
}
