package auction

import "sync"

// Ledger is the append-only record of bids for one auction round.
// Insertion order is arrival order; entries are never reordered or deduplicated.
type Ledger struct {
	mu   sync.RWMutex
	bids []Bid
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append records a bid
func (l *Ledger) Append(bid Bid) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.bids = append(l.bids, bid)
}

// Highest returns the bid with the largest amount. When several bids share
// the largest amount the earliest one wins.
func (l *Ledger) Highest() (Bid, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.bids) == 0 {
		return Bid{}, false
	}
	best := l.bids[0]
	for _, b := range l.bids[1:] {
		// strictly greater keeps the first occurrence on ties
		if b.Amount.GreaterThan(best.Amount) {
			best = b
		}
	}
	return best, true
}

// All returns a copy of every bid in insertion order
func (l *Ledger) All() []Bid {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Bid, len(l.bids))
	copy(out, l.bids)
	return out
}

// Len returns the number of bids recorded
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.bids)
}
