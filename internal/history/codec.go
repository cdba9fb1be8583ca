package history

import (
	"github.com/goccy/go-json"
)

// Encode serializes entries as a JSON array of strings, preserving order.
func Encode(entries []string) ([]byte, error) {
	if entries == nil {
		entries = []string{}
	}
	return json.Marshal(entries)
}

// Decode parses a slot written by Encode.
func Decode(data []byte) ([]string, error) {
	var entries []string
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []string{}
	}
	return entries, nil
}
