package auction

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Coordinator ties bid parsing, the ledger and the countdown together for the
// single auction lane.
type Coordinator struct {
	broadcaster Broadcaster
	clock       clockwork.Clock
	ledger      *Ledger
	timer       *Timer

	// intakeMu keeps append, new_bid and restart for one bid together so
	// new_bid notifications follow ledger order.
	intakeMu sync.Mutex
}

type coordinatorConfig struct {
	clock     clockwork.Clock
	timerOpts []TimerOption
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*coordinatorConfig)

// WithClock sets the clock used for bid timestamps and the countdown
func WithClock(clock clockwork.Clock) CoordinatorOption {
	return func(c *coordinatorConfig) {
		c.clock = clock
	}
}

// WithTimerOptions passes options through to the countdown timer
func WithTimerOptions(opts ...TimerOption) CoordinatorOption {
	return func(c *coordinatorConfig) {
		c.timerOpts = append(c.timerOpts, opts...)
	}
}

// NewCoordinator creates a coordinator that notifies broadcaster
func NewCoordinator(broadcaster Broadcaster, opts ...CoordinatorOption) *Coordinator {
	cfg := coordinatorConfig{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if broadcaster == nil {
		broadcaster = MultiBroadcaster{}
	}

	c := &Coordinator{
		broadcaster: broadcaster,
		clock:       cfg.clock,
		ledger:      NewLedger(),
	}
	c.timer = NewTimer(cfg.clock, c, cfg.timerOpts...)
	return c
}

// OnMessage inspects a chat message from sender. When it is a bid the bid is
// recorded, announced and the countdown restarted. It reports whether a bid
// was placed.
func (c *Coordinator) OnMessage(sender, text string) (Bid, bool) {
	parsed, ok := ParseBid(text)
	if !ok {
		return Bid{}, false
	}

	c.intakeMu.Lock()
	defer c.intakeMu.Unlock()

	bid := NewBid(sender, parsed.Amount, c.clock.Now())
	c.ledger.Append(bid)
	c.broadcaster.Broadcast(Event{Type: EventTypeNewBid, Payload: bid})
	gen := c.timer.Restart()

	log.Info().
		Str("username", bid.Username).
		Str("amount", bid.Amount.String()).
		Uint64("generation", gen).
		Msg("bid placed")

	return bid, true
}

// OnTick implements TimerListener
func (c *Coordinator) OnTick(generation uint64, remaining int) {
	log.Debug().Uint64("generation", generation).Int("remaining", remaining).Msg("auction timer tick")
	c.broadcaster.Broadcast(Event{Type: EventTypeBidTimer, Payload: TimerPayload{Remaining: remaining}})
}

// OnExpire implements TimerListener
func (c *Coordinator) OnExpire(generation uint64) {
	highest, ok := c.ledger.Highest()
	if !ok {
		log.Info().Uint64("generation", generation).Msg("auction ended with no bids")
		c.broadcaster.Broadcast(Event{
			Type:    EventTypeAuctionEnd,
			Payload: AuctionEndPayload{Message: MessageAuctionNoBids},
		})
		return
	}

	amount := highest.Amount.InexactFloat64()
	c.broadcaster.Broadcast(Event{
		Type:    EventTypeAuctionEnd,
		Payload: AuctionEndPayload{Winner: highest.Username, Amount: &amount},
	})
	c.broadcaster.Broadcast(Event{
		Type:    EventTypeHighestBid,
		Payload: HighestBidPayload{HighestBid: &highest},
	})

	log.Info().
		Uint64("generation", generation).
		Str("winner", highest.Username).
		Str("amount", highest.Amount.String()).
		Msg("auction ended")
}

// CurrentHighest returns the highest bid so far
func (c *Coordinator) CurrentHighest() (Bid, bool) {
	return c.ledger.Highest()
}

// Bids returns every bid in arrival order
func (c *Coordinator) Bids() []Bid {
	return c.ledger.All()
}

// HighestBid builds the highest_bid query response
func (c *Coordinator) HighestBid() HighestBidPayload {
	highest, ok := c.ledger.Highest()
	if !ok {
		return HighestBidPayload{Message: MessageNoBidsPlaced}
	}
	return HighestBidPayload{HighestBid: &highest}
}

// AllBids builds the all_bids query response
func (c *Coordinator) AllBids() AllBidsPayload {
	return AllBidsPayload{Bids: c.ledger.All()}
}

// Snapshot describes the auction for a newly connected client
func (c *Coordinator) Snapshot() StatePayload {
	st := c.timer.State()
	state := StatePayload{
		Counting:   st.Counting,
		Remaining:  st.Remaining,
		Generation: st.Generation,
		BidCount:   c.ledger.Len(),
	}
	if highest, ok := c.ledger.Highest(); ok {
		state.HighestBid = &highest
	}
	return state
}

// Countdown returns the configured quiet period
func (c *Coordinator) Countdown() time.Duration {
	return c.timer.Countdown()
}

// Close stops any running countdown without announcing a result
func (c *Coordinator) Close() {
	c.timer.Stop()
}
