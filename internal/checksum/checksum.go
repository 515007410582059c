// Package checksum derives short, deterministic identifiers from vault positions.
package checksum

import (
	"crypto/md5" //nolint:gosec // identifier, not a security boundary
	"encoding/hex"
	"strconv"
)

const positionIDLen = 10

// PositionID hashes a slash-separated vault path and a 1-based line number.
// The result changes whenever the line moves, which is intended.
func PositionID(path string, line int) string {
	h := md5.Sum([]byte(path + ":" + strconv.Itoa(line))) //nolint:gosec
	return hex.EncodeToString(h[:])[:positionIDLen]
}
