// Package events defines the outbound event contract for the snapshot
// pipeline. Emission is strictly fire-and-forget: a failed publish is
// logged and swallowed, never joined into the success or failure of the
// write that triggered it. The consuming snapshot worker is an external
// collaborator; no delivery guarantee is required here.
package events

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

// Topics consumed by the snapshot worker.
const (
	TopicArticlePublished = "article_published"
	TopicArticleViewed    = "article_viewed"
	TopicHomeSnapshot     = "home_snapshot"
)

// PublishedEvent announces a newly created article.
type PublishedEvent struct {
	ID uint `json:"id"`
}

// ViewedEvent records one article view.
type ViewedEvent struct {
	ID string `json:"id"`
}

// SnapshotEvent asks the worker to regenerate the static home page.
type SnapshotEvent struct {
	Reason string `json:"reason"`
}

// Emitter publishes one event to a topic.
type Emitter interface {
	Emit(ctx context.Context, topic string, payload any) error
	Close() error
}

var (
	emitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_emitted_total",
			Help: "Events successfully handed to the broker client.",
		},
		[]string{"topic"},
	)
	emitFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_emit_failures_total",
			Help: "Event publishes that failed and were dropped.",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(emitted, emitFailures)
}

// FireAndForget publishes payload to topic, logging and counting the
// outcome. It is the single place where emission failure is absorbed.
func FireAndForget(ctx context.Context, e Emitter, topic string, payload any) {
	if e == nil {
		return
	}
	if err := e.Emit(ctx, topic, payload); err != nil {
		emitFailures.WithLabelValues(topic).Inc()
		log.Warn().Err(err).Str("topic", topic).Msg("event emission failed; dropped")
		return
	}
	emitted.WithLabelValues(topic).Inc()
}

// Nop is the Emitter used when no broker is configured.
type Nop struct{}

// Emit discards the event.
func (Nop) Emit(context.Context, string, any) error { return nil }

// Close is a no-op.
func (Nop) Close() error { return nil }
