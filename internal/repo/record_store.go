package repo

import (
	"FileVault/model"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordFilter narrows List results. Nil fields are not applied.
type RecordFilter struct {
	MinSize     *int64
	MaxSize     *int64
	ContentType *string
	DateFrom    *time.Time // inclusive
	DateTo      *time.Time // inclusive
	NamePrefix  *string // case-insensitive
	Search      *string // case-insensitive substring of the name
}

// DuplicateStats aggregates all duplicate records.
type DuplicateStats struct {
	DuplicateCount int64
	BytesSaved     int64
}

// AuditViolation describes one broken invariant found by Audit.
type AuditViolation struct {
	Kind        string `json:"kind"`
	RecordID    string `json:"record_id,omitempty"`
	OriginalRef string `json:"original_ref,omitempty"`
	ContentHash string `json:"content_hash,omitempty"`
	Detail      string `json:"detail"`
}

const (
	ViolationMultipleOriginals = "multiple_originals"
	ViolationBrokenReference   = "broken_reference"
	ViolationChainedReference  = "chained_reference"
	ViolationMismatchedContent = "mismatched_content"
	ViolationMisplacedContent  = "misplaced_content"
)

// RecordStore persists file records through gorm. The database constraints
// (unique original_hash, original_ref RESTRICT) are the final arbiter for
// concurrent writers.
type RecordStore struct {
	db *gorm.DB
}

// NewRecordStore creates a record store over an opened database.
func NewRecordStore(db *gorm.DB) *RecordStore {
	return &RecordStore{db: db}
}

// DB returns the underlying gorm handle.
func (s *RecordStore) DB() *gorm.DB {
	return s.db
}

// Ping checks database connectivity.
func (s *RecordStore) Ping(ctx context.Context) error {
	return Ping(ctx, s.db)
}

// Create inserts a record in its own transaction.
func (s *RecordStore) Create(ctx context.Context, rec *model.FileRecord) error {
	err := s.db.WithContext(ctx).Omit(clause.Associations).Create(rec).Error
	switch {
	case err == nil:
		return nil
	case isDuplicateKey(err):
		return fmt.Errorf("%w: %s", ErrOriginalExists, rec.ContentHash)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%w: %s", ErrOriginalGone, derefString(rec.OriginalRef))
	default:
		return fmt.Errorf("create file record: %w", err)
	}
}

// GetByID loads a record by ID.
func (s *RecordStore) GetByID(ctx context.Context, id string) (*model.FileRecord, error) {
	var rec model.FileRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("get file record: %w", err)
	}
	return &rec, nil
}

// FindOriginalByHash returns the original record that owns the content hash.
func (s *RecordStore) FindOriginalByHash(ctx context.Context, hash string) (*model.FileRecord, error) {
	var rec model.FileRecord
	err := s.db.WithContext(ctx).
		Where("original_hash = ? AND is_original = ?", hash, true).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("find original by hash: %w", err)
	}
	return &rec, nil
}

// CountDependents counts duplicates referencing the given original.
func (s *RecordStore) CountDependents(ctx context.Context, id string) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Where("original_ref = ?", id).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count dependents: %w", err)
	}
	return n, nil
}

// Delete removes a record and returns what was removed. Originals that are
// still referenced are refused, both by the pre-check and by the foreign key.
func (s *RecordStore) Delete(ctx context.Context, id string) (*model.FileRecord, error) {
	var deleted model.FileRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&deleted).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if deleted.IsOriginal {
			var n int64
			if err := tx.Model(&model.FileRecord{}).Where("original_ref = ?", id).Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				return ErrHasDependents
			}
		}
		res := tx.Where("id = ?", id).Delete(&model.FileRecord{})
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return ErrHasDependents
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) || errors.Is(err, ErrHasDependents) {
			return nil, err
		}
		return nil, fmt.Errorf("delete file record: %w", err)
	}
	return &deleted, nil
}

// escapeLike escapes LIKE wildcards using '!' which needs no quoting on MySQL or SQLite.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "!", "!!")
	s = strings.ReplaceAll(s, "%", "!%")
	return strings.ReplaceAll(s, "_", "!_")
}

func applyFilter(query *gorm.DB, f RecordFilter) *gorm.DB {
	if f.MinSize != nil {
		query = query.Where("size >= ?", *f.MinSize)
	}
	if f.MaxSize != nil {
		query = query.Where("size <= ?", *f.MaxSize)
	}
	if f.ContentType != nil && *f.ContentType != "" {
		query = query.Where("content_type = ?", *f.ContentType)
	}
	if f.DateFrom != nil {
		query = query.Where("created_at >= ?", f.DateFrom.UTC())
	}
	if f.DateTo != nil {
		query = query.Where("created_at <= ?", f.DateTo.UTC())
	}
	if f.NamePrefix != nil && *f.NamePrefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", escapeLike(strings.ToLower(*f.NamePrefix))+"%")
	}
	if f.Search != nil && *f.Search != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '!'", "%"+escapeLike(strings.ToLower(*f.Search))+"%")
	}
	return query
}

// List returns one page of records, newest first, and the total match count.
func (s *RecordStore) List(ctx context.Context, f RecordFilter, offset, limit int) ([]model.FileRecord, int64, error) {
	filtered := func() *gorm.DB {
		return applyFilter(s.db.WithContext(ctx).Model(&model.FileRecord{}), f)
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count file records: %w", err)
	}

	records := make([]model.FileRecord, 0, limit)
	if total == 0 {
		return records, 0, nil
	}
	if err := filtered().
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("list file records: %w", err)
	}
	return records, total, nil
}

// DuplicateStats computes duplicate count and saved bytes in one statement.
func (s *RecordStore) DuplicateStats(ctx context.Context) (DuplicateStats, error) {
	var stats DuplicateStats
	err := s.db.WithContext(ctx).
		Model(&model.FileRecord{}).
		Select("COUNT(*) AS duplicate_count, COALESCE(SUM(size), 0) AS bytes_saved").
		Where("is_original = ?", false).
		Scan(&stats).Error
	if err != nil {
		return DuplicateStats{}, fmt.Errorf("duplicate stats: %w", err)
	}
	return stats, nil
}

// Audit scans the record set for invariant violations.
func (s *RecordStore) Audit(ctx context.Context) ([]AuditViolation, error) {
	db := s.db.WithContext(ctx)
	violations := make([]AuditViolation, 0)

	var multi []struct {
		ContentHash string
		Originals   int64
	}
	if err := db.Model(&model.FileRecord{}).
		Select("content_hash, COUNT(*) AS originals").
		Where("is_original = ?", true).
		Group("content_hash").
		Having("COUNT(*) > 1").
		Scan(&multi).Error; err != nil {
		return nil, fmt.Errorf("audit originals: %w", err)
	}
	for _, m := range multi {
		violations = append(violations, AuditViolation{
			Kind:        ViolationMultipleOriginals,
			ContentHash: m.ContentHash,
			Detail:      fmt.Sprintf("%d originals share one hash", m.Originals),
		})
	}

	var refs []struct {
		ID             string
		OriginalRef    *string
		ContentHash    string
		Size           int64
		TargetID       *string
		TargetOriginal *bool
		TargetHash     *string
		TargetSize     *int64
	}
	if err := db.Table("file_record AS d").
		Select("d.id, d.original_ref, d.content_hash, d.size, o.id AS target_id, o.is_original AS target_original, o.content_hash AS target_hash, o.size AS target_size").
		Joins("LEFT JOIN file_record AS o ON o.id = d.original_ref").
		Where("d.is_original = ?", false).
		Scan(&refs).Error; err != nil {
		return nil, fmt.Errorf("audit references: %w", err)
	}
	for _, r := range refs {
		v := AuditViolation{RecordID: r.ID, OriginalRef: derefString(r.OriginalRef), ContentHash: r.ContentHash}
		switch {
		case r.OriginalRef == nil || r.TargetID == nil:
			v.Kind, v.Detail = ViolationBrokenReference, "duplicate references a missing record"
		case r.TargetOriginal == nil || !*r.TargetOriginal:
			v.Kind, v.Detail = ViolationChainedReference, "duplicate references another duplicate"
		case derefString(r.TargetHash) != r.ContentHash || r.TargetSize == nil || *r.TargetSize != r.Size:
			v.Kind, v.Detail = ViolationMismatchedContent, "duplicate and original disagree on hash or size"
		default:
			continue
		}
		violations = append(violations, v)
	}

	var misplaced []model.FileRecord
	if err := db.Where(
		"(is_original = ? AND (object_name = '' OR original_ref IS NOT NULL OR original_hash IS NULL)) OR "+
			"(is_original = ? AND (object_name <> '' OR original_hash IS NOT NULL))",
		true, false,
	).Find(&misplaced).Error; err != nil {
		return nil, fmt.Errorf("audit content placement: %w", err)
	}
	for _, r := range misplaced {
		violations = append(violations, AuditViolation{
			Kind:        ViolationMisplacedContent,
			RecordID:    r.ID,
			OriginalRef: derefString(r.OriginalRef),
			ContentHash: r.ContentHash,
			Detail:      "physical content locator does not match original/duplicate status",
		})
	}
	return violations, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
