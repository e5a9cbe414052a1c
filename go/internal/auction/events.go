package auction

// Event payload types shared between the auction core and the gateway

// EventType names an outbound auction notification
type EventType string

const (
	EventTypeNewBid     EventType = "new_bid"
	EventTypeBidTimer   EventType = "bid_timer"
	EventTypeAuctionEnd EventType = "auction_end"
	EventTypeHighestBid EventType = "highest_bid"
	EventTypeAllBids    EventType = "all_bids"
)

const (
	MessageNoBidsPlaced  = "No bids placed yet"
	MessageAuctionNoBids = "Auction ended with no bids"
)

// Event is a notification handed to a Broadcaster
type Event struct {
	Type    EventType
	Payload interface{}
}

// Broadcaster fans events out to every listener. Delivery is best-effort:
// implementations must not block the caller on slow listeners.
type Broadcaster interface {
	Broadcast(event Event)
}

// BroadcasterFunc adapts a function to the Broadcaster interface
type BroadcasterFunc func(event Event)

// Broadcast calls f(event)
func (f BroadcasterFunc) Broadcast(event Event) {
	f(event)
}

// MultiBroadcaster delivers each event to every wrapped broadcaster in order
type MultiBroadcaster []Broadcaster

// Broadcast forwards the event to each broadcaster
func (m MultiBroadcaster) Broadcast(event Event) {
	for _, b := range m {
		if b != nil {
			b.Broadcast(event)
		}
	}
}

// TimerPayload is the payload for a bid_timer event
type TimerPayload struct {
	Remaining int `json:"remaining"`
}

// AuctionEndPayload is the payload for an auction_end event. Either Winner
// and Amount or Message is set.
type AuctionEndPayload struct {
	Winner  string   `json:"winner,omitempty"`
	Amount  *float64 `json:"amount,omitempty"`
	Message string   `json:"message,omitempty"`
}

// HighestBidPayload is the payload for a highest_bid event
type HighestBidPayload struct {
	HighestBid *Bid   `json:"highest_bid,omitempty"`
	Message    string `json:"message,omitempty"`
}

// AllBidsPayload is the payload for an all_bids event
type AllBidsPayload struct {
	Bids []Bid `json:"bids"`
}

// StatePayload summarizes the auction for clients that join mid-countdown
type StatePayload struct {
	Counting   bool   `json:"counting"`
	Remaining  int    `json:"remaining"`
	Generation uint64 `json:"generation"`
	BidCount   int    `json:"bid_count"`
	HighestBid *Bid   `json:"highest_bid,omitempty"`
}
