package domain

import "time"

// ProvenanceStatusBronzeCreated marks a successful landing-to-bronze copy.
const ProvenanceStatusBronzeCreated = "BRONZE_CREATED"

// ProvenanceRecord is one entry in the ingestion log: which source object
// became which bronze object, and when. The log is diagnostic only —
// duplicate entries from redelivered events are acceptable, and dedup is
// the marker store's job at load time.
type ProvenanceRecord struct {
	ID           string
	SourceBucket string
	SourceObject string
	BronzeObject string
	Status       string
	IngestedAt   time.Time
}
