// Rocksky Relay - Device Relay and Now-Playing Enrichment Hub
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rocksky-relay

package relay

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/rocksky-relay/internal/config"
	"github.com/tomtom215/rocksky-relay/internal/logging"
	"github.com/tomtom215/rocksky-relay/internal/metrics"
)

// TokenVerifier turns a signed identity token into an account id.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Relay holds the process-wide relay state. Construct one per process and
// open a Session for each connection.
type Relay struct {
	registry *Registry
	router   *Router
	enricher *Enricher
	verifier TokenVerifier
	cfg      config.RelayConfig
}

// New creates a Relay. enricher may be nil, in which case payloads are
// relayed as sent.
func New(registry *Registry, enricher *Enricher, verifier TokenVerifier, cfg *config.RelayConfig) *Relay {
	return &Relay{
		registry: registry,
		router:   NewRouter(registry),
		enricher: enricher,
		verifier: verifier,
		cfg:      *cfg,
	}
}

// Registry returns the device registry.
func (r *Relay) Registry() *Registry {
	return r.registry
}

// NewSession starts the lifecycle of one connection. No device exists until
// the connection sends a register frame.
func (r *Relay) NewSession(conn Sender) *Session {
	s := &Session{relay: r, conn: conn}
	if r.cfg.MaxFramesPerSecond > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(r.cfg.MaxFramesPerSecond), r.cfg.MaxFramesPerSecond)
	}
	return s
}

// Session is the per-connection state. Handle and Close must be called from
// the connection's single read loop; frames are processed one at a time in
// arrival order.
type Session struct {
	relay   *Relay
	conn    Sender
	limiter *rate.Limiter

	deviceID  string
	accountID string
}

// DeviceID returns the id assigned at registration, or "".
func (s *Session) DeviceID() string {
	return s.deviceID
}

// AccountID returns the account verified at registration, or "".
func (s *Session) AccountID() string {
	return s.accountID
}

// Handle processes one inbound text frame. Failures never close the
// connection and are never reported to the peer: the frame is dropped and
// the reason logged and counted.
func (s *Session) Handle(ctx context.Context, raw []byte) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.logDrop(ctx, KindInvalid, ErrRateLimited)
		return
	}

	frame := Classify(raw)
	metrics.RelayFramesReceived.WithLabelValues(frame.Kind.String()).Inc()

	if err := s.dispatch(ctx, frame); err != nil {
		s.logDrop(ctx, frame.Kind, err)
	}
}

func (s *Session) dispatch(ctx context.Context, frame Frame) error {
	switch frame.Kind {
	case KindKeepAlive:
		s.conn.Send([]byte(KeepAlivePong))
		return nil
	case KindRegister:
		return s.register(ctx, frame.Register)
	case KindData:
		return s.relayData(ctx, frame.Data)
	case KindControl:
		return s.routeControl(ctx, frame.Control)
	default:
		return frame.Err
	}
}

// verify runs on every frame so a token that expires or is rotated
// mid-session stops working immediately.
func (s *Session) verify(token string) (string, error) {
	accountID, err := s.relay.verifier.Verify(token)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return accountID, nil
}

func (s *Session) register(ctx context.Context, f *RegisterFrame) error {
	accountID, err := s.verify(f.Token)
	if err != nil {
		return err
	}

	registry := s.relay.registry
	if s.deviceID != "" {
		logging.Ctx(ctx).Info().Str("device_id", s.deviceID).Msg("Connection re-registered, replacing previous device")
		registry.Unregister(s.deviceID, s.accountID)
	}

	deviceID := registry.Register(accountID, f.ClientName, s.conn)
	s.deviceID = deviceID
	s.accountID = accountID

	ack, err := encodeRegisteredAck(deviceID)
	if err != nil {
		return fmt.Errorf("encode ack: %w", err)
	}
	if registry.Send(accountID, deviceID, ack) {
		metrics.RelayMessagesSent.WithLabelValues("ack").Inc()
	}

	peers := registry.NotifyPeers(accountID, deviceID, f.ClientName)

	logging.Ctx(ctx).Info().
		Str("device_id", deviceID).
		Str("account", accountID).
		Str("client_name", f.ClientName).
		Int("peers_notified", peers).
		Msg("Device registered")
	return nil
}

func (s *Session) relayData(ctx context.Context, f *DataFrame) error {
	accountID, err := s.verify(f.Token)
	if err != nil {
		return err
	}

	if len(s.relay.registry.DevicesOf(accountID)) == 0 {
		logging.Ctx(ctx).Debug().Str("account", accountID).Msg("No devices to relay to")
		return nil
	}

	if s.relay.enricher != nil && ShouldEnrich(f.Payload) {
		if err := s.relay.enricher.Enrich(ctx, accountID, f.Payload); err != nil {
			if !s.relay.cfg.RelayUnenrichedOnError {
				return err
			}
			logging.Ctx(ctx).Warn().Err(err).Msg("Relaying payload without enrichment")
		}
	}

	sent, err := s.relay.router.FanOut(accountID, f.DeviceID, f.Payload)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Str("device_id", f.DeviceID).Int("recipients", sent).Msg("Relayed now-playing")
	return nil
}

func (s *Session) routeControl(ctx context.Context, f *ControlFrame) error {
	accountID, err := s.verify(f.Token)
	if err != nil {
		return err
	}

	sent, err := s.relay.router.RouteControl(accountID, f)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().
		Str("type", f.Type).
		Str("action", f.Action).
		Bool("targeted", f.Target != nil).
		Int("recipients", sent).
		Msg("Relayed control")
	return nil
}

// Close ends the session and removes its device. Peers are not notified.
func (s *Session) Close() {
	if s.deviceID == "" {
		return
	}
	s.relay.registry.Unregister(s.deviceID, s.accountID)
	logging.Info().Str("device_id", s.deviceID).Msg("Device removed")
	s.deviceID = ""
	s.accountID = ""
}

// logDrop is the single sink for dispatch failures.
func (s *Session) logDrop(ctx context.Context, kind Kind, err error) {
	reason := DropReason(err)
	metrics.RelayFramesDropped.WithLabelValues(reason).Inc()

	level := zerolog.WarnLevel
	switch reason {
	case ReasonRateLimited:
		level = zerolog.DebugLevel
	case ReasonMalformed, ReasonUnknownFrame:
		level = zerolog.InfoLevel
	case ReasonInternal:
		level = zerolog.ErrorLevel
	}

	event := logging.Ctx(ctx).WithLevel(level).Err(err).Str("reason", reason).Str("kind", kind.String())
	if s.deviceID != "" {
		event = event.Str("device_id", s.deviceID)
	}
	event.Msg("Frame dropped")
}
