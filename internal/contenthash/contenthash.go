// Package contenthash computes deterministic content hashes for registry
// documents.
//
// A document is hashed over its canonical JSON form: object keys sorted at
// every depth, no insignificant whitespace and no HTML escaping. Two documents
// with the same data therefore hash the same regardless of key insertion
// order or struct field order.
package contenthash

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
)

// Canonical returns the canonical JSON encoding of v.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return CanonicalizeJSON(raw)
}

// CanonicalizeJSON rewrites a JSON document into canonical form.
func CanonicalizeJSON(data []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Maps encode with sorted keys.
	if err := enc.Encode(generic); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Sum returns the hex SHA-256 of the canonical encoding of v.
func Sum(v any) (string, error) {
	canonical, err := Canonical(v)
	if err != nil {
		return "", err
	}
	return hexSum(canonical), nil
}

// SumJSON returns the hex SHA-256 of the canonical form of a JSON document.
func SumJSON(data []byte) (string, error) {
	canonical, err := CanonicalizeJSON(data)
	if err != nil {
		return "", err
	}
	return hexSum(canonical), nil
}

// Bytes returns the hex SHA-256 of data as-is.
func Bytes(data []byte) string {
	return hexSum(data)
}

// File returns the hex SHA-256 of a file's raw bytes.
func File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

func hexSum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
