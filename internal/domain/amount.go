package domain

import (
	"math"
	"strconv"
	"strings"
)

// Amount is a validated transaction amount in whole shillings. Daraja only
// accepts integer amounts, so fractional input is truncated before the
// bounds checks run.
type Amount int64

// NormalizeAmount parses raw into an Amount bounded by limit. The bounds are
// checked on the truncated float: converting an out-of-range float64 to
// int64 is unspecified, so the value never reaches the conversion unless it
// fits.
func NormalizeAmount(raw string, limit int64) (Amount, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(f) {
		return 0, ErrInvalidAmountFormat
	}

	f = math.Trunc(f)
	if f < 1 {
		return 0, ErrAmountNotPositive
	}
	if f > float64(limit) {
		return 0, ErrAmountExceedsLimit
	}

	return Amount(int64(f)), nil
}
