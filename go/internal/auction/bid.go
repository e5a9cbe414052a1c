package auction

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Bid is a single bid placed in the auction. Bids are never mutated once
// they have been appended to a Ledger.
type Bid struct {
	Username  string
	Amount    decimal.Decimal
	Timestamp time.Time
}

// NewBid creates a bid placed by username at the given instant
func NewBid(username string, amount decimal.Decimal, at time.Time) Bid {
	return Bid{
		Username:  username,
		Amount:    amount,
		Timestamp: at,
	}
}

// bidJSON is the wire shape clients expect: numeric amount, unix seconds timestamp
type bidJSON struct {
	Username  string  `json:"username"`
	Amount    float64 `json:"amount"`
	Timestamp float64 `json:"timestamp"`
}

// MarshalJSON encodes the bid with a numeric amount and a fractional unix timestamp
func (b Bid) MarshalJSON() ([]byte, error) {
	return json.Marshal(bidJSON{
		Username:  b.Username,
		Amount:    b.Amount.InexactFloat64(),
		Timestamp: float64(b.Timestamp.UnixNano()) / float64(time.Second),
	})
}

// UnmarshalJSON decodes the wire shape produced by MarshalJSON
func (b *Bid) UnmarshalJSON(data []byte) error {
	var raw bidJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sec := int64(raw.Timestamp)
	nsec := int64((raw.Timestamp - float64(sec)) * float64(time.Second))
	b.Username = raw.Username
	b.Amount = decimal.NewFromFloat(raw.Amount)
	b.Timestamp = time.Unix(sec, nsec)
	return nil
}
