package repository

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

// SnapshotPrefix is the type prefix of snapshot ids, e.g. snap_01h455vb4pex5vsknk084sn02q.
const SnapshotPrefix = "snap"

// NewSnapshotID returns a fresh, time-sortable snapshot id.
func NewSnapshotID() string {
	return typeid.MustGenerate(SnapshotPrefix).String()
}

// ValidateSnapshotID checks that id parses and carries the snapshot prefix.
func ValidateSnapshotID(id string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidID, id, err)
	}
	if parsed.Prefix() != SnapshotPrefix {
		return fmt.Errorf("%w: expected prefix %q but got %q", ErrInvalidID, SnapshotPrefix, parsed.Prefix())
	}
	return nil
}
