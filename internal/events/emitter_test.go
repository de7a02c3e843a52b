package events

import (
	"context"
	"errors"
	"testing"
)

type stubEmitter struct {
	calls int
	topic string
	err   error
}

func (s *stubEmitter) Emit(_ context.Context, topic string, _ any) error {
	s.calls++
	s.topic = topic
	return s.err
}

func (s *stubEmitter) Close() error { return nil }

func TestFireAndForget_Delivers(t *testing.T) {
	s := &stubEmitter{}
	FireAndForget(context.Background(), s, TopicArticlePublished, PublishedEvent{ID: 1})
	if s.calls != 1 || s.topic != TopicArticlePublished {
		t.Fatalf("calls=%d topic=%q", s.calls, s.topic)
	}
}

func TestFireAndForget_SwallowsFailure(t *testing.T) {
	s := &stubEmitter{err: errors.New("broker down")}
	// Must not panic or propagate.
	FireAndForget(context.Background(), s, TopicHomeSnapshot, SnapshotEvent{Reason: "seed"})
	if s.calls != 1 {
		t.Fatalf("calls = %d", s.calls)
	}
}

func TestFireAndForget_NilEmitter(t *testing.T) {
	FireAndForget(context.Background(), nil, TopicArticleViewed, ViewedEvent{ID: "1"})
}

func TestNop(t *testing.T) {
	var e Emitter = Nop{}
	if err := e.Emit(context.Background(), "any", nil); err != nil {
		t.Fatalf("Nop.Emit: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Nop.Close: %v", err)
	}
}
