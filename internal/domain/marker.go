package domain

import (
	"strings"
	"time"
)

// MarkerStatusProcessed is the only marker status: a marker exists iff the
// object's rows have been committed to the warehouse.
const MarkerStatusProcessed = "PROCESSED"

// IngestionMarker records that a bronze object has been loaded into the
// warehouse. Its existence is the single source of truth for "already
// loaded" — it is written strictly after the warehouse append commits, and
// exactly once per object.
type IngestionMarker struct {
	ID          string
	Company     string
	Domain      string
	BronzePath  string
	Status      string
	ProcessedAt time.Time
}

// MarkerID derives the deterministic marker key for a bronze object:
// "{company}__{domain}__{path with / replaced by __}".
func MarkerID(company, domainName, bronzePath string) string {
	return company + "__" + domainName + "__" + strings.ReplaceAll(bronzePath, "/", "__")
}

// NewMarker builds a PROCESSED marker for a bronze object.
func NewMarker(company, domainName, bronzePath string, at time.Time) *IngestionMarker {
	return &IngestionMarker{
		ID:          MarkerID(company, domainName, bronzePath),
		Company:     company,
		Domain:      domainName,
		BronzePath:  bronzePath,
		Status:      MarkerStatusProcessed,
		ProcessedAt: at,
	}
}
