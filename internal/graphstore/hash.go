package graphstore

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// hashPair produces the hex SHA-256 of a colon-joined canonical
// serialization, mirroring typ.UID/term.UID's own canonical-string
// convention.
func hashPair(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, ":")))
	return hex.EncodeToString(sum[:])
}
