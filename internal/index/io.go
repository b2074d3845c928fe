package index

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
)

// Encode serializes v without HTML escaping. Pretty output is indented with
// two spaces and ends in a newline; compact output has no whitespace.
func Encode(v any, pretty bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if pretty {
		return buf.Bytes(), nil
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// WriteFile encodes v to path, creating parent directories. It returns the
// number of bytes written.
func WriteFile(path string, v any, pretty bool) (int, error) {
	data, err := Encode(v, pretty)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return 0, err
	}
	return len(data), nil
}

// ReadAgentIndex loads an agent index from path.
func ReadAgentIndex(path string) (*AgentIndex, error) {
	var idx AgentIndex
	if err := readJSON(path, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// ReadEntries loads the browser index from path.
func ReadEntries(path string) ([]Entry, error) {
	var entries []Entry
	if err := readJSON(path, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadCompactIndex loads a compact index from path.
func ReadCompactIndex(path string) (*CompactIndex, error) {
	var idx CompactIndex
	if err := readJSON(path, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
