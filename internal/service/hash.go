package service

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/minio/sha256-simd"
)

// HashSize is the length of a hex encoded content hash.
const HashSize = sha256.Size * 2

// ComputeHash digests a stream without holding it in memory.
func ComputeHash(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, fmt.Errorf("read content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// HashBytes digests an in-memory buffer.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type uploadContent struct {
	data []byte
	hash string
}

// readContent buffers at most limit bytes and hashes them in the same pass.
// One extra byte is read to tell "exactly limit" apart from "over limit".
func readContent(r io.Reader, limit int64) (*uploadContent, error) {
	h := sha256.New()
	var buf bytes.Buffer
	n, err := io.Copy(io.MultiWriter(&buf, h), io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read content: %w", ErrIngestionFailed, err)
	}
	if n > limit {
		return nil, &PayloadTooLargeError{Limit: limit, Size: n}
	}
	return &uploadContent{data: buf.Bytes(), hash: hex.EncodeToString(h.Sum(nil))}, nil
}
