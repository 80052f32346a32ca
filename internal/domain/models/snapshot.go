package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SourceResult is one endpoint's entry in a RawSnapshot: either the raw
// payload or a failure marker, never both.
type SourceResult struct {
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// OK reports whether the endpoint delivered a payload.
func (s SourceResult) OK() bool {
	return s.Error == ""
}

// RawSnapshot is one immutable capture of every configured source's raw
// response. Written once per ingestion run and kept for audit/replay.
type RawSnapshot struct {
	CapturedAt time.Time               `json:"captured_at"`
	Sources    map[string]SourceResult `json:"sources"`
}

// BlobKey returns the blob store key for the snapshot, under the raw/ namespace.
func (s RawSnapshot) BlobKey() string {
	return fmt.Sprintf("raw/%s.json", s.CapturedAt.UTC().Format("20060102T150405"))
}

// NewRawSnapshot creates an empty snapshot stamped with capture time.
func NewRawSnapshot(capturedAt time.Time) *RawSnapshot {
	return &RawSnapshot{
		CapturedAt: capturedAt.UTC(),
		Sources:    make(map[string]SourceResult),
	}
}
