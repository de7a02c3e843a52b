package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/tbourn/go-news-backend/internal/cache"
	"github.com/tbourn/go-news-backend/internal/events"
	"github.com/tbourn/go-news-backend/internal/repo"
	"github.com/tbourn/go-news-backend/internal/store"
)

// recordingEmitter captures emitted events for assertions.
type recordingEmitter struct {
	mu     sync.Mutex
	topics []string
	fail   bool
}

func (r *recordingEmitter) Emit(_ context.Context, topic string, _ any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("broker down")
	}
	r.topics = append(r.topics, topic)
	return nil
}

func (r *recordingEmitter) Close() error { return nil }

func (r *recordingEmitter) emitted() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.topics...)
}

func newArticleService(t *testing.T) (*ArticleService, *store.Memory, *recordingEmitter) {
	t.Helper()
	db := newServiceDB(t, true)
	mem := store.NewMemory()
	em := &recordingEmitter{}
	svc := &ArticleService{
		Primary: db,
		Cache:   cache.New(mem, cache.TTLs{}),
		Store:   mem,
		Events:  em,
	}
	return svc, mem, em
}

func TestCreate_BlankTitle_NoSideEffects(t *testing.T) {
	svc, mem, em := newArticleService(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Create(ctx, CreateArticleInput{Title: title}); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("title %q: want ErrInvalidInput, got %v", title, err)
		}
	}

	// No insert, no generation bump, no events.
	n, err := repo.CountArticles(ctx, svc.Primary)
	if err != nil || n != 0 {
		t.Fatalf("rows after rejected creates: n=%d err=%v", n, err)
	}
	if _, err := mem.Get(ctx, cache.GenerationKey); !errors.Is(err, store.ErrMiss) {
		t.Fatal("generation token was touched by a rejected create")
	}
	if got := em.emitted(); len(got) != 0 {
		t.Fatalf("events emitted for rejected create: %v", got)
	}
}

func TestCreate_PersistsInvalidatesAndEmits(t *testing.T) {
	svc, mem, em := newArticleService(t)
	ctx := context.Background()

	// Pre-warm the categories aggregate so the drop is observable.
	svc.Cache.Save(ctx, cache.CategoriesKey, []string{"old"}, 0)

	id, err := svc.Create(ctx, CreateArticleInput{Title: "  hello  ", Summary: "s", Content: "c", Category: "tech"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if id == 0 {
		t.Fatal("Create returned zero id")
	}

	a, err := repo.GetArticle(ctx, svc.Primary, id)
	if err != nil {
		t.Fatalf("load created article: %v", err)
	}
	if a.Title != "hello" || a.Category != "tech" {
		t.Fatalf("unexpected persisted fields: %+v", a)
	}

	if v, err := mem.Get(ctx, cache.GenerationKey); err != nil || v != "1" {
		t.Fatalf("generation after create = %q, %v", v, err)
	}
	if _, err := mem.Get(ctx, cache.CategoriesKey); !errors.Is(err, store.ErrMiss) {
		t.Fatal("categories aggregate survived the create")
	}

	got := strings.Join(em.emitted(), ",")
	if got != events.TopicArticlePublished+","+events.TopicHomeSnapshot {
		t.Fatalf("emitted topics = %q", got)
	}
}

func TestCreate_EmitterFailureDoesNotFailWrite(t *testing.T) {
	svc, _, em := newArticleService(t)
	em.fail = true

	id, err := svc.Create(context.Background(), CreateArticleInput{Title: "t"})
	if err != nil || id == 0 {
		t.Fatalf("Create with broken emitter: id=%d err=%v", id, err)
	}
}

func TestSeed_ClampsCountAndInvalidatesOnce(t *testing.T) {
	svc, mem, em := newArticleService(t)
	ctx := context.Background()

	inserted, rotation, err := svc.Seed(ctx, 30, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if inserted != 30 || rotation != 3 {
		t.Fatalf("Seed = (%d, %d)", inserted, rotation)
	}

	n, err := repo.CountArticles(ctx, svc.Primary)
	if err != nil || n != 30 {
		t.Fatalf("rows after seed: n=%d err=%v", n, err)
	}

	// Exactly one bump for the whole batch.
	if v, err := mem.Get(ctx, cache.GenerationKey); err != nil || v != "1" {
		t.Fatalf("generation after seed = %q, %v", v, err)
	}

	got := em.emitted()
	if len(got) != 1 || got[0] != events.TopicHomeSnapshot {
		t.Fatalf("seed events = %v", got)
	}
}

func TestSeed_CountBounds(t *testing.T) {
	svc, _, _ := newArticleService(t)
	ctx := context.Background()

	inserted, rotation, err := svc.Seed(ctx, -5, nil)
	if err != nil {
		t.Fatalf("Seed(-5): %v", err)
	}
	if inserted != 1 {
		t.Fatalf("Seed(-5) inserted %d, want 1", inserted)
	}
	if rotation == 0 {
		t.Fatal("default category rotation reported as empty")
	}

	n, _ := repo.CountArticles(ctx, svc.Primary)
	if n != 1 {
		t.Fatalf("rows after clamped seed: %d", n)
	}
}

func TestTrackView_EmitsAndBumpsCounter(t *testing.T) {
	svc, mem, em := newArticleService(t)
	ctx := context.Background()

	svc.TrackView(ctx, "42")
	svc.TrackView(ctx, "42")
	svc.TrackView(ctx, "7")

	if got := mem.Score(viewsKey, "42"); got != 2 {
		t.Fatalf("views(42) = %v", got)
	}
	if got := mem.Score(viewsKey, "7"); got != 1 {
		t.Fatalf("views(7) = %v", got)
	}

	got := em.emitted()
	if len(got) != 3 {
		t.Fatalf("want 3 events, got %v", got)
	}
	for _, topic := range got {
		if topic != events.TopicArticleViewed {
			t.Fatalf("unexpected topic %q", topic)
		}
	}
}

func TestTrackView_NilStoreAndEmitter(t *testing.T) {
	svc := &ArticleService{Primary: newServiceDB(t, true), Cache: cache.New(store.NewMemory(), cache.TTLs{})}
	// Must not panic with neither a store nor an emitter wired.
	svc.TrackView(context.Background(), "1")
}
