package main

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/bidroom/go/internal/auction"
	"github.com/mcdev12/bidroom/go/internal/chat"
	"github.com/mcdev12/bidroom/go/internal/config"
	"github.com/mcdev12/bidroom/go/internal/gateway"
)

type Services struct {
	Connections *gateway.ConnectionManager
	Coordinator *auction.Coordinator
	Room        *gateway.Room
	Handler     *gateway.Handler
	Publisher   *gateway.JetStreamPublisher // nil when NATS is disabled
}

func setupServices(ctx context.Context, cfg config.Config) (*Services, error) {
	// Wire up the single room
	// Connections → Broadcasters → Auction → Room → HTTP handlers
	clock := clockwork.NewRealClock()

	connCfg := gateway.DefaultConnectionConfig()
	connCfg.CheckOrigin = gateway.OriginChecker(cfg.Server.AllowedOrigins)
	conns := gateway.NewConnectionManager(connCfg)

	out := auction.MultiBroadcaster{gateway.NewRoomBroadcaster(conns, clock)}

	var publisher *gateway.JetStreamPublisher
	if cfg.NATS.Enabled() {
		jsCfg := gateway.DefaultJetStreamConfig()
		jsCfg.URL = cfg.NATS.URL
		jsCfg.StreamName = cfg.NATS.StreamName
		jsCfg.SubjectPrefix = cfg.NATS.SubjectPrefix

		var err error
		publisher, err = gateway.NewJetStreamPublisher(ctx, jsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create event mirror: %w", err)
		}
		out = append(out, publisher)
	}

	coordinator := auction.NewCoordinator(out,
		auction.WithClock(clock),
		auction.WithTimerOptions(
			auction.WithCountdown(cfg.Auction.Countdown()),
			auction.WithTickInterval(cfg.Auction.TickInterval),
		),
	)

	room := gateway.NewRoom(conns, out, chat.NewDirectory(), chat.NewHistory(cfg.Chat.MaxHistory), coordinator,
		gateway.WithRoomClock(clock),
	)

	return &Services{
		Connections: conns,
		Coordinator: coordinator,
		Room:        room,
		Handler:     gateway.NewHandler(conns, coordinator),
		Publisher:   publisher,
	}, nil
}

// start runs the background loops until ctx is done
func (s *Services) start(ctx context.Context) {
	go s.Connections.Start(ctx)
	if s.Publisher != nil {
		go s.Publisher.Start(ctx)
	}
}

// close stops the countdown and releases the NATS connection
func (s *Services) close() error {
	s.Coordinator.Close()
	if s.Publisher != nil {
		return s.Publisher.Close()
	}
	return nil
}
