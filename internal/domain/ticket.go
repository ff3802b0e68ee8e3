package domain

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// unixEpochTicks is 1970-01-01 expressed in 100ns ticks since 0001-01-01.
const unixEpochTicks int64 = 621355968000000000

// Ticks returns t as 100-nanosecond intervals since 0001-01-01 00:00:00 UTC.
func Ticks(t time.Time) int64 {
	t = t.UTC()
	return t.Unix()*10_000_000 + int64(t.Nanosecond()/100) + unixEpochTicks
}

// GenerateTicket derives the receipt fingerprint of an operation. The same
// operation always yields the same ticket; any change to the hashed fields
// yields a different one.
func GenerateTicket(op *ExchangeOperation) string {
	data := fmt.Sprintf("%s-%s-%s-%s-%s-%d",
		op.ID,
		op.CustomerID,
		op.FromCurrencyID,
		op.ToCurrencyID,
		op.Amount.String(),
		Ticks(op.CreatedAt),
	)

	sum := sha256.Sum256([]byte(data))
	return base64.StdEncoding.EncodeToString(sum[:])
}
