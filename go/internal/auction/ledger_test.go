package auction

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBid(username string, amount int64, at time.Time) Bid {
	return NewBid(username, decimal.NewFromInt(amount), at)
}

func TestLedger_HighestEmpty(t *testing.T) {
	t.Parallel()

	_, ok := NewLedger().Highest()
	assert.False(t, ok)
}

func TestLedger_HighestFirstOccurrenceWinsTies(t *testing.T) {
	t.Parallel()

	base := time.Unix(1700000000, 0)
	l := NewLedger()
	l.Append(newTestBid("A", 10, base))
	l.Append(newTestBid("B", 15, base.Add(time.Second)))
	l.Append(newTestBid("C", 15, base.Add(2*time.Second)))

	got, ok := l.Highest()
	require.True(t, ok)
	assert.Equal(t, "B", got.Username)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(15)))
}

func TestLedger_HighestComparesDecimals(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewLedger()
	l.Append(NewBid("A", decimal.RequireFromString("9.9"), now))
	l.Append(NewBid("B", decimal.RequireFromString("10"), now))
	l.Append(NewBid("C", decimal.RequireFromString("2"), now))

	got, ok := l.Highest()
	require.True(t, ok)
	assert.Equal(t, "B", got.Username)
}

func TestLedger_AllKeepsInsertionOrder(t *testing.T) {
	t.Parallel()

	now := time.Now()
	l := NewLedger()
	assert.NotNil(t, l.All())
	assert.Empty(t, l.All())

	l.Append(newTestBid("A", 30, now))
	l.Append(newTestBid("A", 5, now))
	l.Append(newTestBid("B", 20, now))

	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"A", "A", "B"}, []string{all[0].Username, all[1].Username, all[2].Username})

	// repeated reads with no appends are identical
	assert.Equal(t, all, l.All())

	// the snapshot is detached from the ledger
	all[0].Username = "mutated"
	assert.Equal(t, "A", l.All()[0].Username)
}

func TestLedger_ConcurrentAppends(t *testing.T) {
	t.Parallel()

	l := NewLedger()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Append(newTestBid("user", int64(i), time.Now()))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, l.Len())
	got, ok := l.Highest()
	require.True(t, ok)
	assert.True(t, got.Amount.Equal(decimal.NewFromInt(49)))
}

func TestBid_JSON(t *testing.T) {
	t.Parallel()

	at := time.Unix(1700000000, 500000000)
	b := NewBid("alice", decimal.RequireFromString("12.5"), at)

	data, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","amount":12.5,"timestamp":1700000000.5}`, string(data))

	var decoded Bid
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "alice", decoded.Username)
	assert.True(t, decoded.Amount.Equal(b.Amount))
	assert.Equal(t, at.Unix(), decoded.Timestamp.Unix())
}
