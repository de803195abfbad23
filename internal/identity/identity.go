// Package identity stores the persistent player id that lets a client be
// recognized again after its transport reconnects. Ids expire after a TTL
// and are regenerated on the next read.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long an identity stays valid
const DefaultTTL = 24 * time.Hour

// ErrCorrupt is returned when a stored record cannot be decoded
var ErrCorrupt = errors.New("corrupt identity record")

// Store hands out a persistent identity, creating one if needed
type Store interface {
	GetOrCreate(ctx context.Context) (string, error)
}

// record is the stored form of an identity
type record struct {
	UUID      string `json:"uuid"`
	Timestamp int64  `json:"timestamp"` // unix millis at creation
}

func newRecord(now time.Time) record {
	return record{UUID: uuid.NewString(), Timestamp: now.UnixMilli()}
}

func (r record) expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.UnixMilli(r.Timestamp)) > ttl
}

func decodeRecord(data []byte) (record, error) {
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if _, err := uuid.Parse(r.UUID); err != nil {
		return record{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return r, nil
}
