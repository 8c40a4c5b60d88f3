package mq

import (
	"FileVault/model"
	"time"
)

const (
	ActionIndex  = "index"
	ActionRemove = "remove"
)

// IndexEvent is the message body on the file.index exchange.
type IndexEvent struct {
	Action     string              `json:"action"`
	FileID     string              `json:"file_id"`
	Document   *model.FileDocument `json:"document,omitempty"`
	Attempt    int                 `json:"attempt"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// DeadLetter is published to the DLQ when an event gives up.
type DeadLetter struct {
	Event    IndexEvent `json:"event"`
	Error    string     `json:"error"`
	FailedAt time.Time  `json:"failed_at"`
}
