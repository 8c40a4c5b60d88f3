package service

import (
	"FileVault/internal/repo"
	"FileVault/model"
	"context"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListResult is one page of records plus paging totals.
type ListResult struct {
	Records    []model.FileRecord
	TotalCount int64
	PageCount  int
	Page       int
	PageSize   int
}

// NormalizePage applies the paging defaults and the page size cap.
func NormalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

// List returns records matching all set filter fields, newest first.
// A page past the end is empty rather than an error.
func (s *FileService) List(ctx context.Context, filter repo.RecordFilter, page, pageSize int) (*ListResult, error) {
	page, pageSize = NormalizePage(page, pageSize)
	records, total, err := s.records.List(ctx, filter, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, err
	}
	pageCount := int((total + int64(pageSize) - 1) / int64(pageSize))
	if pageCount < 1 {
		pageCount = 1
	}
	return &ListResult{
		Records:    records,
		TotalCount: total,
		PageCount:  pageCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}
