package gateway

import (
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidroom/go/internal/auction"
)

// RoomBroadcaster delivers events to every WebSocket connection of the room
type RoomBroadcaster struct {
	conns *ConnectionManager
	clock clockwork.Clock
}

// NewRoomBroadcaster creates a broadcaster stamping envelopes with clock
func NewRoomBroadcaster(conns *ConnectionManager, clock clockwork.Clock) *RoomBroadcaster {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &RoomBroadcaster{conns: conns, clock: clock}
}

// Broadcast implements auction.Broadcaster
func (b *RoomBroadcaster) Broadcast(event auction.Event) {
	env, err := NewEnvelope(EventType(event.Type), event.Payload, b.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to build room event")
		return
	}
	b.conns.Broadcast(env)
}
