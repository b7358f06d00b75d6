package transaction

import (
	"strconv"
	"time"
)

// Number derives a human-readable transaction number from the sale instant.
// Millisecond precision plus the unique index on the column is enough for a
// single register; a collision surfaces as a constraint violation and the
// sale is retried.
func Number(now time.Time) string {
	return "TXN-" + strconv.FormatInt(now.UnixMilli(), 10)
}
