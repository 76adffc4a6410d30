// Package pubsub fans events out to web clients over Server-Sent Events.
// Each topic retains its most recent event and replays it to new
// subscribers, so a browser that connects after a records reload still sees
// the current state without polling.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/cluster-tools/impactviz/pkg/logging"
)

// Event is one published message on a topic.
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"`    // e.g. "loaded", "reloaded"
	Data    json.RawMessage `json:"data"`    // event payload
	Version int             `json:"version"` // per-topic ordering
}

// RecordsStatus is the payload published on the "records" topic whenever
// the record set is loaded or reloaded.
type RecordsStatus struct {
	Path  string `json:"path"`
	Units int    `json:"units"`
}

// Subscription is a client subscription to a topic.
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher manages subscriptions and event publishing.
type Publisher interface {
	// Subscribe creates a new subscription to a topic. Context cancellation
	// closes the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic.
	Publish(topic, eventType string, data any) error

	Close() error
}

// SSEPublisher implements Publisher for the SSE endpoints in pkg/web.
type SSEPublisher struct {
	mu      sync.Mutex
	subs    map[string]map[*subscription]bool
	latest  map[string]Event
	version map[string]int
	closed  bool
}

// NewSSEPublisher creates an SSE-backed publisher.
func NewSSEPublisher() *SSEPublisher {
	return &SSEPublisher{
		subs:    make(map[string]map[*subscription]bool),
		latest:  make(map[string]Event),
		version: make(map[string]int),
	}
}

// Subscribe registers a subscriber and immediately replays the topic's
// latest event, if any.
func (p *SSEPublisher) Subscribe(ctx context.Context, topic string) (Subscription, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, fmt.Errorf("publisher is closed")
	}

	sub := &subscription{
		topic:     topic,
		events:    make(chan Event, 16), // buffered so publishers never block
		publisher: p,
	}
	if p.subs[topic] == nil {
		p.subs[topic] = make(map[*subscription]bool)
	}
	p.subs[topic][sub] = true

	latest, hasLatest := p.latest[topic]
	p.mu.Unlock()

	if hasLatest {
		sub.events <- latest
	}

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	return sub, nil
}

// Publish marshals data, records it as the topic's latest event, and fans
// it out without blocking. Slow subscribers drop events; they recover on
// the next publish or reconnect.
func (p *SSEPublisher) Publish(topic, eventType string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("publisher is closed")
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshaling event data: %w", err)
	}

	p.version[topic]++
	event := Event{
		Topic:   topic,
		Type:    eventType,
		Data:    payload,
		Version: p.version[topic],
	}
	p.latest[topic] = event

	for sub := range p.subs[topic] {
		select {
		case sub.events <- event:
		default:
			logging.Warn("subscriber channel full, dropping event", "topic", topic)
		}
	}
	return nil
}

// Close shuts down the publisher and all subscriptions.
func (p *SSEPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	for _, subs := range p.subs {
		for sub := range subs {
			close(sub.events)
		}
	}
	p.subs = make(map[string]map[*subscription]bool)
	return nil
}

func (p *SSEPublisher) unsubscribe(sub *subscription) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if subs := p.subs[sub.topic]; subs != nil {
		delete(subs, sub)
		if len(subs) == 0 {
			delete(p.subs, sub.topic)
		}
	}
}

type subscription struct {
	topic     string
	events    chan Event
	publisher *SSEPublisher
	mu        sync.Mutex
	closed    bool
}

func (s *subscription) Topic() string { return s.topic }

func (s *subscription) Events() <-chan Event { return s.events }

func (s *subscription) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.publisher.unsubscribe(s)
	return nil
}

// WriteSSE writes an event in wire format: "data: {json}\n\n".
func WriteSSE(w io.Writer, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event: %w", err)
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
