package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidroom/go/internal/auction"
)

// BidQuery is the read side of the auction used by the REST endpoints
type BidQuery interface {
	Bids() []auction.Bid
	CurrentHighest() (auction.Bid, bool)
}

// Handler serves the WebSocket endpoint and the REST API of the room
type Handler struct {
	conns *ConnectionManager
	bids  BidQuery
}

// NewHandler creates the HTTP handler set
func NewHandler(conns *ConnectionManager, bids BidQuery) *Handler {
	return &Handler{conns: conns, bids: bids}
}

// HandleConnection upgrades a request to a room WebSocket
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	if err := h.conns.UpgradeConnection(w, r); err != nil {
		// the upgrader has already replied to the client
		log.Error().
			Err(err).
			Str("remote_addr", r.RemoteAddr).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *Handler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.conns.GetConnectionStats())
}

// HandleBids returns every bid in arrival order
func (h *Handler) HandleBids(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bids.Bids())
}

// HandleHighestBidder returns the highest bid or a no-bids message
func (h *Handler) HandleHighestBidder(w http.ResponseWriter, r *http.Request) {
	highest, ok := h.bids.CurrentHighest()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]string{"message": auction.MessageNoBidsPlaced})
		return
	}
	writeJSON(w, http.StatusOK, highest)
}

// HandleHealth reports liveness
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// RegisterRoutes registers the room routes with an HTTP mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", h.HandleConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
	mux.HandleFunc("GET /api/bids", h.HandleBids)
	mux.HandleFunc("GET /api/highest-bidder", h.HandleHighestBidder)
	mux.HandleFunc("GET /health", h.HandleHealth)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}
