package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/bidroom/go/internal/auction"
)

// JetStreamConfig configures the NATS JetStream event mirror
type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration // How long to keep messages
	MaxMsgs         int64         // Max number of messages to keep
	Replicas        int
	DuplicateWindow time.Duration
	QueueSize       int
	PublishTimeout  time.Duration
}

// DefaultJetStreamConfig returns the mirror defaults
func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "AUCTION_EVENTS",
		SubjectPrefix:   "auction.events",
		MaxReconnects:   -1, // Infinite
		ReconnectWait:   2 * time.Second,
		MaxAge:          24 * time.Hour,
		MaxMsgs:         -1,
		Replicas:        1,
		DuplicateWindow: 2 * time.Minute,
		QueueSize:       1000,
		PublishTimeout:  5 * time.Second,
	}
}

// JetStreamPublisher mirrors room and auction events to a JetStream stream.
// Broadcast never blocks: events queue up for Start and are dropped when the
// queue is full.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
	clock  clockwork.Clock
	queue  chan Envelope
}

// NewJetStreamPublisher connects to NATS and makes sure the stream exists
func NewJetStreamPublisher(ctx context.Context, cfg JetStreamConfig) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.Name("bidroom"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := newPublisher(cfg)
	p.nc = nc
	p.js = js

	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

func newPublisher(cfg JetStreamConfig) *JetStreamPublisher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &JetStreamPublisher{
		config: cfg,
		clock:  clockwork.NewRealClock(),
		queue:  make(chan Envelope, cfg.QueueSize),
	}
}

func (p *JetStreamPublisher) streamConfig() jetstream.StreamConfig {
	return jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Chat room and auction events",
		Subjects:    []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      p.config.MaxAge,
		MaxMsgs:     p.config.MaxMsgs,
		Storage:     jetstream.FileStorage,
		Replicas:    p.config.Replicas,
		Duplicates:  p.config.DuplicateWindow,
	}
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	sc := p.streamConfig()

	stream, err := p.js.Stream(ctx, p.config.StreamName)
	if err != nil {
		if _, err = p.js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", p.config.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = p.js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", p.config.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

// Broadcast implements auction.Broadcaster
func (p *JetStreamPublisher) Broadcast(event auction.Event) {
	env, err := NewEnvelope(EventType(event.Type), event.Payload, p.clock.Now())
	if err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to build mirrored event")
		return
	}

	select {
	case p.queue <- env:
	default:
		log.Warn().Str("event_type", string(env.Type)).Msg("publish queue full, dropping event")
	}
}

// Start publishes queued events until ctx is done
func (p *JetStreamPublisher) Start(ctx context.Context) {
	log.Info().Str("stream", p.config.StreamName).Msg("event mirror started")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("event mirror shutting down")
			return
		case env := <-p.queue:
			pubCtx, cancel := context.WithTimeout(ctx, p.config.PublishTimeout)
			if err := p.publish(pubCtx, env); err != nil {
				log.Error().
					Err(err).
					Str("event_id", env.ID).
					Str("event_type", string(env.Type)).
					Msg("failed to mirror event")
			}
			cancel()
		}
	}
}

func (p *JetStreamPublisher) publish(ctx context.Context, env Envelope) error {
	msg, err := p.buildMsg(env)
	if err != nil {
		return err
	}

	ack, err := p.js.PublishMsg(ctx, msg,
		jetstream.WithMsgID(env.ID),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Debug().
		Str("subject", msg.Subject).
		Str("event_id", env.ID).
		Uint64("sequence", ack.Sequence).
		Str("stream", ack.Stream).
		Msg("published to JetStream")
	return nil
}

func (p *JetStreamPublisher) subject(eventType EventType) string {
	return fmt.Sprintf("%s.%s", p.config.SubjectPrefix, eventType)
}

func (p *JetStreamPublisher) buildMsg(env Envelope) (*nats.Msg, error) {
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return &nats.Msg{
		Subject: p.subject(env.Type),
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{string(env.Type)},
			"Event-ID":   []string{env.ID},
		},
	}, nil
}

// Close drains the NATS connection
func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		if err := p.nc.Drain(); err != nil {
			return fmt.Errorf("drain NATS connection: %w", err)
		}
	}
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.MaxMsgs == b.MaxMsgs &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates
}
