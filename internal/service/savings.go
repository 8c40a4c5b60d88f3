package service

import (
	"context"

	"github.com/dustin/go-humanize"
)

// Savings is the space avoided by storing duplicates as references.
type Savings struct {
	BytesSaved     int64
	DuplicateCount int64
	HumanReadable  string
}

// ComputeSavings sums the sizes of all duplicates. Both numbers come from a
// single statement, so they describe the same snapshot.
func (s *FileService) ComputeSavings(ctx context.Context) (*Savings, error) {
	stats, err := s.records.DuplicateStats(ctx)
	if err != nil {
		return nil, err
	}
	return &Savings{
		BytesSaved:     stats.BytesSaved,
		DuplicateCount: stats.DuplicateCount,
		HumanReadable:  humanize.IBytes(uint64(stats.BytesSaved)),
	}, nil
}
