package ticketcode

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// codeBytes gives 2^48 possible codes, large enough that collisions for a
// single venue are retried at the ledger rather than prevented here.
const codeBytes = 6

// Generate returns a fresh 12-character upper-case hex ticket code drawn
// from a cryptographically strong source. Codes are not guaranteed unique;
// the ledger's unique constraint is the arbiter.
func Generate() (string, error) {
	buf := make([]byte, codeBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Normalize maps user- or scanner-supplied input onto the stored form.
// Lookups must always go through this so check-in is case-insensitive.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
