// Package fileid provides a deterministic workbook ID from a file path.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "wb:"

// WorkbookID returns a stable catalog ID for the given absolute path.
// Same path always yields the same ID. Used to key workbook records
// across repeated extractions.
func WorkbookID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
