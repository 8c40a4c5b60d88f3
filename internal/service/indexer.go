package service

import (
	"FileVault/model"
	"context"
)

// SearchIndexer receives record changes for an external search index.
// Delivery is best effort; the record store stays the source of truth.
type SearchIndexer interface {
	IndexFile(ctx context.Context, doc model.FileDocument) error
	RemoveFile(ctx context.Context, id string) error
}

// NopIndexer drops every event.
type NopIndexer struct{}

func (NopIndexer) IndexFile(context.Context, model.FileDocument) error { return nil }

func (NopIndexer) RemoveFile(context.Context, string) error { return nil }
