package insights

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"sofa/agi"
)

// PortfolioHash produces a stable digest of a user's event portfolio.
// Each event is serialized with a fixed key order and the entries are
// sorted by id, so neither map-key order nor load order can change the
// result. Timestamps are truncated to whole seconds to survive
// round-trips through the document store.
func PortfolioHash(events []agi.EventProjection) string {
	parts := make([]string, 0, len(events))
	for _, e := range events {
		parts = append(parts, fmt.Sprintf("id=%s|attendeeCount=%d|updatedAt=%d", e.EventID, e.AttendeeCount, e.UpdatedAt.Unix()))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, ";")))
	return hex.EncodeToString(sum[:])
}
