package util

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewTrackingID mints a callback message id for one recipient.
// ULID keeps ids sortable, which is nice for DB indexes and dashboards.
func NewTrackingID() string {
	t := time.Now().UTC()
	return "rcs_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NewEventID() string {
	t := time.Now().UTC()
	return "evt_" + ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

func NowUTC() time.Time {
	return time.Now().UTC()
}
