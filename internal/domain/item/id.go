package item

import (
	"crypto/sha256"
	"encoding/hex"
)

// StorageID returns the canonical persistence identity for an item: the kind
// joined with a short digest of the external id. Stable across fetches, and
// safe to embed in URLs regardless of what the source uses as an id.
func StorageID(kind Kind, externalID string) string {
	sum := sha256.Sum256([]byte(string(kind) + "\x00" + externalID))
	return string(kind) + "_" + hex.EncodeToString(sum[:8])
}

// ID is shorthand for StorageID over the item's own identity.
func (i *Item) ID() string { return StorageID(i.kind, i.externalID) }
