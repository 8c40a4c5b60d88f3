package dto

import (
	"FileVault/internal/repo"
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ListFilesQuery binds the query string of GET /api/files.
type ListFilesQuery struct {
	Search     string `form:"search"`
	MinSize    *int64 `form:"min_size" binding:"omitempty,gte=0"`
	MaxSize    *int64 `form:"max_size" binding:"omitempty,gte=0"`
	Type       string `form:"type"`
	DateFrom   string `form:"date_from"`
	DateTo     string `form:"date_to"`
	NamePrefix string `form:"name_prefix"`
	Page       int    `form:"page" binding:"omitempty,gte=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,gte=1"`
}

// parseDate accepts YYYY-MM-DD or RFC 3339. A bare date covers the whole UTC
// day: as a lower bound it is the day's first instant, as an upper bound the
// last.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation(dateLayout, raw, time.UTC); err == nil {
		if endOfDay {
			t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		}
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD or RFC 3339", raw)
	}
	t = t.UTC()
	return &t, nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// Filter converts the query into a record filter.
func (q *ListFilesQuery) Filter() (repo.RecordFilter, error) {
	from, err := parseDate(q.DateFrom, false)
	if err != nil {
		return repo.RecordFilter{}, fmt.Errorf("date_from: %w", err)
	}
	to, err := parseDate(q.DateTo, true)
	if err != nil {
		return repo.RecordFilter{}, fmt.Errorf("date_to: %w", err)
	}
	if (q.MinSize != nil && *q.MinSize < 0) || (q.MaxSize != nil && *q.MaxSize < 0) {
		return repo.RecordFilter{}, errors.New("sizes must not be negative")
	}
	return repo.RecordFilter{
		MinSize:     q.MinSize,
		MaxSize:     q.MaxSize,
		ContentType: optionalString(q.Type),
		DateFrom:    from,
		DateTo:      to,
		NamePrefix:  optionalString(q.NamePrefix),
		Search:      optionalString(q.Search),
	}, nil
}
