package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// StrikeID produces a deterministic ID for a strike of the given year.
// Re-ingesting the same feed yields the same IDs, so downstream consumers
// can upsert without duplicates.
func StrikeID(year int, s Strike) string {
	input := fmt.Sprintf("%d|%d|%d|%s|%.4f|%.4f", year, s.Line, s.Hour, s.Month, s.Lat, s.Lon)
	hash := sha256.Sum256([]byte(input))
	return fmt.Sprintf("%d-%s", year, hex.EncodeToString(hash[:8]))
}
