package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyBroker publishes events over Valkey pub/sub so every registrar
// instance sharing the Valkey server sees them.
type ValkeyBroker struct {
	client    valkey.Client
	closeOnce sync.Once
}

// NewValkeyBroker connects to addr and verifies the connection.
func NewValkeyBroker(addr string) (*ValkeyBroker, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping Valkey: %w", err)
	}

	slog.Info("Initialized Valkey event broker", "address", addr)
	return &ValkeyBroker{client: client}, nil
}

// Publish sends the JSON-encoded event on the kind's channel.
func (b *ValkeyBroker) Publish(ctx context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	cmd := b.client.B().Publish().Channel(Channel(e.Kind)).Message(string(data)).Build()
	return b.client.Do(ctx, cmd).Error()
}

// Subscribe listens on the kind's channel until cancel is called or ctx is done.
func (b *ValkeyBroker) Subscribe(ctx context.Context, kind string) (<-chan Event, func(), error) {
	subCtx, stop := context.WithCancel(ctx)
	out := make(chan Event, 100)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer close(out)

		cmd := b.client.B().Subscribe().Channel(Channel(kind)).Build()
		err := b.client.Receive(subCtx, cmd, func(msg valkey.PubSubMessage) {
			var e Event
			if err := json.Unmarshal([]byte(msg.Message), &e); err != nil {
				slog.Warn("Dropping malformed event", "channel", msg.Channel, "error", err)
				return
			}
			select {
			case out <- e:
			default:
			}
		})
		if err != nil && subCtx.Err() == nil {
			slog.Error("Valkey subscription ended", "channel", Channel(kind), "error", err)
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			<-done
		})
	}
	return out, cancel, nil
}

// Close closes the Valkey client, ending every subscription. Safe to call twice.
func (b *ValkeyBroker) Close() error {
	b.closeOnce.Do(b.client.Close)
	return nil
}
