// Package session holds the per-session dataset state of the server. Every
// session owns its dataset and summary; nothing is shared across sessions.
package session

import (
	"time"

	"trialdash/domain/core"
	"trialdash/domain/dataset"
)

// Session is a snapshot of one client's state. Dataset and Summary are nil
// until a dataset has been admitted, and never mutated afterwards.
type Session struct {
	ID       core.SessionID
	Dataset  *dataset.Dataset
	Summary  *dataset.Summary
	LoadedAt time.Time
	LastSeen time.Time
}

// HasDataset reports whether a dataset has been admitted
func (s *Session) HasDataset() bool {
	return s != nil && s.Dataset != nil
}
