package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidroom/go/internal/auction"
	"github.com/mcdev12/bidroom/go/internal/chat"
)

var (
	// ErrUnknownMessageType is returned for client messages the room does not handle
	ErrUnknownMessageType = errors.New("unknown message type")

	// ErrUsernameRequired is returned when set_username carries no name
	ErrUsernameRequired = errors.New("username is required")
)

// Client message types
const (
	MessageTypeSetUsername          = "set_username"
	MessageTypeMessage              = "message"
	MessageTypeTyping               = "typing"
	MessageTypeStoppedTyping        = "stopped_typing"
	MessageTypeRequestHistory       = "request_history"
	MessageTypeRequestHighestBidder = "request_highest_bidder"
	MessageTypeGetBids              = "get_bids"
	MessageTypeGetUsersList         = "get_users_list"
)

// Auction is the part of the auction coordinator the room talks to
type Auction interface {
	OnMessage(sender, text string) (auction.Bid, bool)
	HighestBid() auction.HighestBidPayload
	AllBids() auction.AllBidsPayload
	Snapshot() auction.StatePayload
}

// Room is the single chat room: it dispatches client messages, keeps the
// user directory and chat history, and feeds chat lines to the auction.
type Room struct {
	conns     *ConnectionManager
	out       auction.Broadcaster
	directory *chat.Directory
	history   *chat.History
	auction   Auction
	clock     clockwork.Clock
}

// RoomOption configures a Room
type RoomOption func(*Room)

// WithRoomClock sets the clock used for message and envelope timestamps
func WithRoomClock(clock clockwork.Clock) RoomOption {
	return func(r *Room) {
		r.clock = clock
	}
}

// NewRoom creates a room and attaches it to conns as its connection handler.
// Room-wide events go out through out, direct replies through conns.
func NewRoom(conns *ConnectionManager, out auction.Broadcaster, directory *chat.Directory, history *chat.History, auc Auction, opts ...RoomOption) *Room {
	r := &Room{
		conns:     conns,
		out:       out,
		directory: directory,
		history:   history,
		auction:   auc,
		clock:     clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	conns.SetHandler(r)
	return r
}

// OnConnect implements ConnectionHandler
func (r *Room) OnConnect(conn *Connection) {
	count := r.directory.Connect(conn.ID)
	r.sendTo(conn, EventTypeAuctionState, r.auction.Snapshot())
	r.broadcast(EventTypeUsersCount, UsersCountPayload{Count: count})
}

// OnDisconnect implements ConnectionHandler
func (r *Room) OnDisconnect(conn *Connection) {
	dep := r.directory.Disconnect(conn.ID)
	if dep.Named {
		log.Info().Str("username", dep.Username).Msg("user left the chat")
		r.broadcast(EventTypeUserLeft, PresencePayload{Username: dep.Username, Users: dep.Users})
	}
	r.broadcast(EventTypeUsersCount, UsersCountPayload{Count: dep.Count})
}

// OnMessage implements ConnectionHandler
func (r *Room) OnMessage(conn *Connection, message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		log.Warn().Err(err).Str("connection_id", conn.ID).Msg("invalid client message")
		return
	}
	if err := r.Dispatch(conn, msg); err != nil {
		log.Warn().
			Err(err).
			Str("connection_id", conn.ID).
			Str("message_type", msg.Type).
			Msg("failed to handle client message")
	}
}

// Dispatch handles one decoded client message
func (r *Room) Dispatch(conn *Connection, msg ClientMessage) error {
	switch msg.Type {
	case MessageTypeSetUsername:
		return r.handleSetUsername(conn, msg.Data)
	case MessageTypeMessage:
		return r.handleChat(conn, msg.Data)
	case MessageTypeTyping:
		if name, ok := r.directory.StartTyping(conn.ID); ok {
			r.broadcast(EventTypeUserTyping, UserTypingPayload{Username: name})
		}
		return nil
	case MessageTypeStoppedTyping:
		if r.directory.StopTyping(conn.ID) {
			r.broadcast(EventTypeUserStoppedTyping, nil)
		}
		return nil
	case MessageTypeRequestHistory:
		r.sendHistory(conn)
		return nil
	case MessageTypeRequestHighestBidder:
		r.sendTo(conn, EventType(auction.EventTypeHighestBid), r.auction.HighestBid())
		return nil
	case MessageTypeGetBids:
		// silent when nothing has been bid yet
		if bids := r.auction.AllBids(); len(bids.Bids) > 0 {
			r.sendTo(conn, EventType(auction.EventTypeAllBids), bids)
		}
		return nil
	case MessageTypeGetUsersList:
		r.sendTo(conn, EventTypeUsersList, UsersListPayload{Users: r.directory.Users()})
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessageType, msg.Type)
	}
}

func (r *Room) handleSetUsername(conn *Connection, data json.RawMessage) error {
	name, err := decodeText(data, "username")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrUsernameRequired
	}

	users := r.directory.SetUsername(conn.ID, name)
	r.broadcast(EventTypeUserJoined, PresencePayload{Username: name, Users: users})
	log.Info().Str("username", name).Msg("user joined the chat")

	r.sendHistory(conn)
	return nil
}

func (r *Room) handleChat(conn *Connection, data json.RawMessage) error {
	text, err := decodeText(data, "message")
	if err != nil {
		return err
	}
	username := r.directory.Username(conn.ID)

	msg := chat.NewMessage(username, text, chat.MessageKindUser, r.clock.Now())
	r.history.Append(msg)
	r.broadcast(EventTypeResponse, msg)

	r.auction.OnMessage(username, text)
	return nil
}

// sendHistory replays chat history to conn when there is any
func (r *Room) sendHistory(conn *Connection) {
	if messages := r.history.Messages(); len(messages) > 0 {
		r.sendTo(conn, EventTypeChatHistory, ChatHistoryPayload{Messages: messages})
	}
}

func (r *Room) broadcast(eventType EventType, payload interface{}) {
	r.out.Broadcast(auction.Event{Type: auction.EventType(eventType), Payload: payload})
}

func (r *Room) sendTo(conn *Connection, eventType EventType, payload interface{}) {
	env, err := NewEnvelope(eventType, payload, r.clock.Now())
	if err != nil {
		log.Error().Err(err).Msg("failed to build room event")
		return
	}
	r.conns.SendTo(conn, env)
}

// decodeText accepts either a bare JSON string or an object carrying the
// text under field.
func decodeText(data json.RawMessage, field string) (string, error) {
	if len(data) == 0 {
		return "", nil
	}
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return text, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return "", fmt.Errorf("decode %s: %w", field, err)
	}
	raw, ok := obj[field]
	if !ok {
		return "", nil
	}
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", fmt.Errorf("decode %s: %w", field, err)
	}
	return text, nil
}
