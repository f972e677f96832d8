// Package hashutil computes the content hash used for conflict detection
// (spec.md §3, §4.9): the first N bytes of a file, SHA-256'd. Grounded on
// CineVault's internal/scanner/fingerprint.go FileHash, re-windowed from
// 1 MiB to the 10 MiB spec.md §4.9 names.
package hashutil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
)

// DefaultWindow is the number of leading bytes hashed for conflict
// detection, per spec.md §4.9 ("first 10 MiB, SHA-256").
const DefaultWindow int64 = 10 * 1024 * 1024

// HashFile returns the hex SHA-256 digest of the first window bytes of the
// file at path (or the whole file if shorter).
func HashFile(ctx context.Context, path string, window int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, 64*1024)
	var total int64
	for total < window {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		toRead := buf
		if remaining := window - total; remaining < int64(len(buf)) {
			toRead = buf[:remaining]
		}
		n, err := f.Read(toRead)
		if n > 0 {
			h.Write(toRead[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
