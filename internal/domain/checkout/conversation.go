package checkout

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// NewConversationID returns CONV_<unix seconds>_<8 hex chars>. The suffix is
// taken from a random UUID, so IDs generated within the same second differ.
func NewConversationID(now time.Time) string {
	return "CONV_" + strconv.FormatInt(now.Unix(), 10) + "_" + uuid.NewString()[:8]
}

// NewReference returns <prefix>-<unix millis>-<8 hex chars>, a client side
// reference for subscriptions and payment terms. Like conversation IDs it
// stays unique within the same millisecond.
func NewReference(prefix string, now time.Time) string {
	return prefix + "-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}
