package models

// BatchItem is one line of the operator's on-screen running list in the
// batch flow. It is session-scoped and never persisted on its own; the
// durable truth is the corresponding RecordEntry.
type BatchItem struct {
	Seq           int
	TransportCode string
	OrderCode     string
	Divergent     bool
}
