package store

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PushKey generates a store-wide unique child key. The millisecond timestamp
// is encoded base-32 and zero-padded so keys created later sort later; the
// uuid suffix breaks ties between keys minted in the same millisecond.
func PushKey() string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 32)
	if len(ts) < 9 {
		ts = strings.Repeat("0", 9-len(ts)) + ts
	}
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
	return "-" + ts + suffix
}
