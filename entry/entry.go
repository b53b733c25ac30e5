// Package entry converts catalog entities to and from the compact strings we
// keep in the cache.
//
// An entry is "<id>#<name>". Only the id and name survive the trip; anything
// else on the entity (owners, timestamps) is dropped.
package entry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Delimiter separates the id from the name.
const Delimiter = "#"

// ErrFormat is wrapped by every Decode failure.
var ErrFormat = errors.New("malformed cache entry")

// Entry is the cached part of an entity.
type Entry struct {
	ID   int64
	Name string
}

func Encode(e Entry) string {
	return strconv.FormatInt(e.ID, 10) + Delimiter + e.Name
}

// Decode parses an encoded entry. Only the first two delimiter-separated
// fields are used, so a name that itself contains the delimiter comes back
// truncated at its first delimiter rather than failing.
func Decode(s string) (Entry, error) {
	fields := strings.Split(s, Delimiter)
	if len(fields) < 2 {
		return Entry{}, fmt.Errorf("no delimiter in '%s': %w", s, ErrFormat)
	}
	id, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad id in '%s': %w: %w", s, ErrFormat, err)
	}
	return Entry{ID: id, Name: fields[1]}, nil
}

// EncodeAll encodes each entry, preserving order.
func EncodeAll(es []Entry) []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = Encode(e)
	}
	return out
}

// DecodeAll decodes every value, failing on the first malformed one.
func DecodeAll(values []string) ([]Entry, error) {
	out := make([]Entry, len(values))
	for i, v := range values {
		e, err := Decode(v)
		if err != nil {
			return nil, fmt.Errorf("error decoding entry %d: %w", i, err)
		}
		out[i] = e
	}
	return out, nil
}
