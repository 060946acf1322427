// Package webhook records provider callbacks and fans them out to live
// listeners.
package webhook

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Type is the kind of callback received from the provider.
type Type string

// Callback types, one per receiver endpoint.
const (
	TypeSuccess Type = "success"
	TypeFail    Type = "fail"
	TypeRefund  Type = "refund"
	TypeCancel  Type = "cancel"
)

// ErrUnknownType is returned for a callback type outside the known set.
var ErrUnknownType = errors.New("unknown webhook type")

// ParseType validates a callback type name.
func ParseType(s string) (Type, error) {
	switch t := Type(s); t {
	case TypeSuccess, TypeFail, TypeRefund, TypeCancel:
		return t, nil
	default:
		return "", errors.Wrapf(ErrUnknownType, "%q", s)
	}
}

// Entry is a stored callback. Content is the parsed payload, or null when the
// body is not valid JSON.
type Entry struct {
	Filename   string          `json:"filename"`
	Type       Type            `json:"type"`
	ReceivedAt time.Time       `json:"received_at"`
	Content    json.RawMessage `json:"content"`
	Raw        string          `json:"raw"`
}

// Store is an append-only callback log. Concurrent appends must not
// overwrite each other.
type Store interface {
	// Append persists raw and returns the generated filename.
	Append(ctx context.Context, t Type, raw []byte) (string, error)
	// List returns all entries, newest first.
	List(ctx context.Context) ([]Entry, error)
}

const timestampLayout = "20060102_150405.000000"

// NewFilename returns {timestamp}_{random suffix}_{type}.json. The timestamp
// is fixed width UTC, so lexical order is chronological.
func NewFilename(now time.Time, t Type) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return now.UTC().Format(timestampLayout) + "_" + suffix + "_" + string(t) + ".json"
}

// ParseFilename extracts the receive time and type from a stored filename.
func ParseFilename(name string) (time.Time, Type, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok || len(base) < len(timestampLayout)+11 {
		return time.Time{}, "", false
	}
	ts, err := time.Parse(timestampLayout, base[:len(timestampLayout)])
	if err != nil {
		return time.Time{}, "", false
	}
	rest := base[len(timestampLayout):]
	// rest is _xxxxxxxx_type
	if rest[0] != '_' || rest[9] != '_' {
		return time.Time{}, "", false
	}
	return ts, Type(rest[10:]), true
}

// Pruner is implemented by stores that can delete archived entries.
type Pruner interface {
	Remove(ctx context.Context, names ...string) error
}
