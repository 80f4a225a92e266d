package types

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewMessageID returns a ULID. ULIDs sort by creation time, and ids minted in
// the same millisecond by this process are monotonic.
func NewMessageID() string {
	return ulid.Make().String()
}

// NewEntityID returns a random UUID for stakeholders and other records that
// need no ordering.
func NewEntityID() string {
	return uuid.NewString()
}
