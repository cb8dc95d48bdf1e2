package debug

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aussiebroadwan/directory/internal/directory/service"
	"github.com/aussiebroadwan/directory/internal/directory/store"
	"github.com/aussiebroadwan/directory/pkg/slogx"
)

var ErrUnsupportedQuery = errors.New("unsupported_query")

// SupportedQueries describes the whole query grammar.
const SupportedQueries = "SELECT * FROM {users|businesses|reviews}, SELECT COUNT(*) [AS alias] FROM {users|businesses|reviews}"

var queryPattern = regexp.MustCompile(`(?is)^\s*SELECT\s+(\*|COUNT\s*\(\s*\*\s*\)(?:\s+AS\s+[a-z_][a-z0-9_]*)?)\s+FROM\s+([a-z_]+)\s*;?\s*$`)

// QueryResult carries either the selected rows or only their count.
type QueryResult struct {
	Query string `json:"query"`
	Table string `json:"table"`
	Count int    `json:"count"`
	Rows  any    `json:"rows,omitempty"`
}

// ExecuteQuery runs one of the two supported read-only query shapes.
func (s *Service) ExecuteQuery(ctx context.Context, sess *service.Session, text string) (QueryResult, error) {
	admin, err := sess.RequireAdmin()
	if err != nil {
		return QueryResult{}, err
	}

	m := queryPattern.FindStringSubmatch(text)
	if m == nil {
		return QueryResult{}, unsupported()
	}
	countOnly := m[1] != "*"
	table := strings.ToLower(m[2])

	res := QueryResult{Query: strings.TrimSpace(text), Table: table}
	switch table {
	case "users":
		rows, err := s.Store.Users().ListUsers(ctx)
		if err != nil {
			return QueryResult{}, err
		}
		res.Count, res.Rows = len(rows), rows
	case "businesses":
		rows, err := s.Store.Businesses().ListBusinesses(ctx, store.BusinessFilter{})
		if err != nil {
			return QueryResult{}, err
		}
		res.Count, res.Rows = len(rows), rows
	case "reviews":
		rows, err := s.Store.Reviews().ListReviews(ctx)
		if err != nil {
			return QueryResult{}, err
		}
		res.Count, res.Rows = len(rows), rows
	default:
		return QueryResult{}, unsupported()
	}
	if countOnly {
		res.Rows = nil
	}

	slogx.Category(ctx, "debug").Info("query executed",
		slog.String("table", table),
		slog.Bool("count_only", countOnly),
		slog.String("by", admin.ID),
	)
	return res, nil
}

func unsupported() error {
	return fmt.Errorf("%w: supported queries are %s", ErrUnsupportedQuery, SupportedQueries)
}
