// Package events fans out notifications about newly created records.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/nebari-dev/registrar/internal/models"
)

// ActionCreated is the only action emitted; records are never updated or deleted.
const ActionCreated = "created"

// Event describes a change to a catalog table.
type Event struct {
	Kind      string        `json:"kind"`
	Action    string        `json:"action"`
	Record    models.Record `json:"record"`
	Timestamp time.Time     `json:"timestamp"`
}

// Created builds the event emitted after rec was inserted.
func Created(kind models.Kind, rec models.Record) Event {
	return Event{
		Kind:      kind.Plural,
		Action:    ActionCreated,
		Record:    rec,
		Timestamp: time.Now().UTC(),
	}
}

// Broker publishes events and hands out subscriptions.
type Broker interface {
	// Publish delivers e to current subscribers of e.Kind
	Publish(ctx context.Context, e Event) error

	// Subscribe returns a channel of events for kind and a func that ends the subscription
	Subscribe(ctx context.Context, kind string) (<-chan Event, func(), error)

	// Close releases broker resources
	Close() error
}

// Channel returns the pub/sub channel name used for kind.
func Channel(kind string) string {
	return fmt.Sprintf("registrar:%s", kind)
}
