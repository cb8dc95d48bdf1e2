package debug

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

// LogFilter narrows GetLogs. Zero values match everything.
type LogFilter struct {
	// Level is the minimum level: debug, info, warn or error.
	Level    string
	Category string
	// Text matches the message case-insensitively.
	Text  string
	Limit int
}

// GetLogs returns captured entries matching f, newest first.
func (s *Service) GetLogs(ctx context.Context, sess *service.Session, f LogFilter) ([]slogx.Entry, error) {
	if _, err := sess.RequireAdmin(); err != nil {
		return nil, err
	}
	out := []slogx.Entry{}
	if s.Logs == nil {
		return out, nil
	}

	var minLevel slog.Level
	if f.Level != "" {
		minLevel = slogx.ParseLevel(f.Level)
	} else {
		minLevel = slog.LevelDebug
	}
	text := strings.ToLower(f.Text)

	entries := s.Logs.Entries()
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if entryLevel(e) < minLevel {
			continue
		}
		if f.Category != "" && !strings.EqualFold(e.Category, f.Category) {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(e.Message), text) {
			continue
		}
		out = append(out, e)
		if f.Limit > 0 && len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

// ClearLogs empties the captured log buffer.
func (s *Service) ClearLogs(ctx context.Context, sess *service.Session) error {
	admin, err := sess.RequireAdmin()
	if err != nil {
		return err
	}
	if s.Logs != nil {
		s.Logs.Clear()
	}
	slogx.Category(ctx, "debug").Info("logs cleared", slog.String("by", admin.ID))
	return nil
}

func entryLevel(e slogx.Entry) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(e.Level)); err != nil {
		return slog.LevelInfo
	}
	return l
}
