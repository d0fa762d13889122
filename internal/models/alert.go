package models

import "time"

// Alert is one ingested disaster message. The ID is assigned by the
// database at insert time and is monotonically increasing, so the
// highest ID is always the most recently stored message. Alerts are
// immutable once persisted.
type Alert struct {
	ID           int64
	DisasterType string // free-text category from the source (e.g. "호우경보")
	Area         string // hierarchical origin area ("province city district")
	SentDate     string // timestamp string exactly as the source rendered it
	Content      string
	CreatedAt    time.Time // when we ingested it
}

// SameMessage reports whether a freshly fetched message is an exact
// repeat of this alert. The source occasionally re-serves the last
// snapshot unchanged; content plus sent date is the identity the
// upstream portal gives us.
func (a *Alert) SameMessage(content, sentDate string) bool {
	return a.Content == content && a.SentDate == sentDate
}
