package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSPublisher publishes events on NATS, persisting them in a JetStream
// stream when one is configured.
type NATSPublisher struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

// StreamConfig returns the event stream definition.
func StreamConfig() nats.StreamConfig {
	return nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxMsgs:   -1,
		MaxBytes:  1024 * 1024 * 1024, // 1GB
		MaxAge:    30 * 24 * time.Hour,
		Storage:   nats.FileStorage,
		Replicas:  1,
	}
}

// NewNATSPublisher returns a publisher on nc. With jetstream set it creates
// or updates the event stream first.
func NewNATSPublisher(nc *nats.Conn, jetstream bool) (*NATSPublisher, error) {
	p := &NATSPublisher{nc: nc}
	if !jetstream {
		return p, nil
	}

	js, err := nc.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create jetstream context: %w", err)
	}
	cfg := StreamConfig()
	if _, err := js.AddStream(&cfg); err != nil {
		if !errors.Is(err, nats.ErrStreamNameAlreadyInUse) {
			return nil, fmt.Errorf("failed to create stream %s: %w", cfg.Name, err)
		}
		if _, err := js.UpdateStream(&cfg); err != nil {
			return nil, fmt.Errorf("failed to update stream %s: %w", cfg.Name, err)
		}
	}
	p.js = js
	return p, nil
}

// Publish sends e on its subject.
func (p *NATSPublisher) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if p.js != nil {
		_, err = p.js.Publish(e.Subject(), payload, nats.Context(ctx))
		return err
	}
	return p.nc.Publish(e.Subject(), payload)
}

// Replay calls fn for every stored event published since start, in order.
// It returns when no message arrives for a second or ctx is done.
func (p *NATSPublisher) Replay(ctx context.Context, start time.Time, fn func(Event)) error {
	if p.js == nil {
		return errors.New("replay requires jetstream")
	}
	sub, err := p.js.SubscribeSync(SubjectAll, nats.StartTime(start), nats.AckNone())
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		msg, err := sub.NextMsg(time.Second)
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				return nil
			}
			return err
		}
		var e Event
		if err := json.Unmarshal(msg.Data, &e); err != nil {
			continue
		}
		fn(e)
	}
}

// StreamInfo reports the event stream state.
func (p *NATSPublisher) StreamInfo() (*nats.StreamInfo, error) {
	if p.js == nil {
		return nil, errors.New("jetstream disabled")
	}
	return p.js.StreamInfo(StreamName)
}
