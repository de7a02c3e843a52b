package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-news-backend/internal/cache"
	"github.com/tbourn/go-news-backend/internal/domain"
	"github.com/tbourn/go-news-backend/internal/query"
	"github.com/tbourn/go-news-backend/internal/store"
)

func newServiceDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("news_service_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	if migrate {
		if err := db.AutoMigrate(&domain.Article{}); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedRows(t *testing.T, db *gorm.DB, n int, category string) []domain.Article {
	t.Helper()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]domain.Article, 0, n)
	for i := 0; i < n; i++ {
		a := domain.Article{
			Title:       fmt.Sprintf("article %02d", i),
			Category:    category,
			PublishedAt: base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&a).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
		out = append(out, a)
	}
	return out
}

// newNewsService wires a NewsService over a memory store and the given
// replica/primary handles.
func newNewsService(t *testing.T, replica, primary *gorm.DB) (*NewsService, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	svc := NewNewsService(
		cache.New(mem, cache.TTLs{}),
		&query.Router{Replica: replica, Primary: primary},
	)
	return svc, mem
}

func TestNormalizeListParams(t *testing.T) {
	cases := []struct {
		cat              string
		page, size       int
		wantCat          string
		wantPg, wantSize int
	}{
		{"", 0, 0, "all", 1, 10},
		{"  ", -3, -1, "all", 1, 1},
		{"tech", 2, 15, "tech", 2, 15},
		{"tech", 1, 999, "tech", 1, 20},
	}
	for _, tc := range cases {
		c, p, s := NormalizeListParams(tc.cat, tc.page, tc.size)
		if c != tc.wantCat || p != tc.wantPg || s != tc.wantSize {
			t.Fatalf("NormalizeListParams(%q,%d,%d) = (%q,%d,%d), want (%q,%d,%d)",
				tc.cat, tc.page, tc.size, c, p, s, tc.wantCat, tc.wantPg, tc.wantSize)
		}
	}
}

func TestList_SecondReadServedFromCache(t *testing.T) {
	replica := newServiceDB(t, true)
	seedRows(t, replica, 3, "tech")
	svc, _ := newNewsService(t, replica, newServiceDB(t, false))
	ctx := context.Background()

	first, src, err := svc.List(ctx, "tech", 1, 10)
	if err != nil {
		t.Fatalf("first List: %v", err)
	}
	if src != domain.SourceReplica {
		t.Fatalf("first read source = %s, want replica", src)
	}

	second, src, err := svc.List(ctx, "tech", 1, 10)
	if err != nil {
		t.Fatalf("second List: %v", err)
	}
	if src != domain.SourceCache {
		t.Fatalf("second read source = %s, want cache", src)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached page differs from origin page:\n%+v\n%+v", first, second)
	}
}

func TestList_GenerationBumpInvalidates(t *testing.T) {
	replica := newServiceDB(t, true)
	seedRows(t, replica, 2, "tech")
	svc, _ := newNewsService(t, replica, newServiceDB(t, false))
	ctx := context.Background()

	// Move off the default token first: the very first Incr yields 1,
	// which collides with the default "1".
	svc.Cache.BumpGeneration(ctx)

	if _, _, err := svc.List(ctx, "tech", 1, 10); err != nil {
		t.Fatalf("warm-up List: %v", err)
	}

	svc.Cache.BumpGeneration(ctx)

	// New generation, new key: the read must go back to the database.
	_, src, err := svc.List(ctx, "tech", 1, 10)
	if err != nil {
		t.Fatalf("List after bump: %v", err)
	}
	if src != domain.SourceReplica {
		t.Fatalf("source after bump = %s, want replica", src)
	}
}

func TestDetail_NotFoundMapped(t *testing.T) {
	svc, _ := newNewsService(t, newServiceDB(t, true), newServiceDB(t, true))

	_, _, err := svc.Detail(context.Background(), 9999)
	if !errors.Is(err, ErrArticleNotFound) {
		t.Fatalf("want ErrArticleNotFound, got %v", err)
	}
}

func TestDetail_CachedWithoutGeneration(t *testing.T) {
	replica := newServiceDB(t, true)
	rows := seedRows(t, replica, 1, "tech")
	svc, _ := newNewsService(t, replica, newServiceDB(t, false))
	ctx := context.Background()

	if _, _, err := svc.Detail(ctx, rows[0].ID); err != nil {
		t.Fatalf("first Detail: %v", err)
	}

	// Detail entries ignore the generation token: a bump must not evict.
	svc.Cache.BumpGeneration(ctx)

	_, src, err := svc.Detail(ctx, rows[0].ID)
	if err != nil {
		t.Fatalf("second Detail: %v", err)
	}
	if src != domain.SourceCache {
		t.Fatalf("detail after bump source = %s, want cache", src)
	}
}

func TestBothSourcesDown_DataUnavailable(t *testing.T) {
	svc, _ := newNewsService(t, newServiceDB(t, false), newServiceDB(t, false))
	ctx := context.Background()

	if _, _, err := svc.List(ctx, "all", 1, 10); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("List: want ErrDataUnavailable, got %v", err)
	}
	if _, _, err := svc.Categories(ctx); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("Categories: want ErrDataUnavailable, got %v", err)
	}
	if _, _, err := svc.Home(ctx); !errors.Is(err, ErrDataUnavailable) {
		t.Fatalf("Home: want ErrDataUnavailable, got %v", err)
	}
}

func TestSearch_EmptyQueryShortCircuits(t *testing.T) {
	// Both handles broken: a query attempt would error, proving the
	// short-circuit never touches them.
	svc, _ := newNewsService(t, newServiceDB(t, false), newServiceDB(t, false))

	rows, src, err := svc.Search(context.Background(), "   ", 1, 10)
	if err != nil {
		t.Fatalf("Search with blank q: %v", err)
	}
	if len(rows) != 0 || src != domain.SourceReplica {
		t.Fatalf("blank search: rows=%d src=%s", len(rows), src)
	}
}

func TestSearch_FindsMatches(t *testing.T) {
	replica := newServiceDB(t, true)
	seedRows(t, replica, 3, "tech")
	svc, _ := newNewsService(t, replica, newServiceDB(t, false))

	rows, _, err := svc.Search(context.Background(), "article 01", 1, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 match, got %d", len(rows))
	}
}

func TestCategories_ExplicitDropInvalidates(t *testing.T) {
	replica := newServiceDB(t, true)
	seedRows(t, replica, 2, "tech")
	svc, _ := newNewsService(t, replica, newServiceDB(t, false))
	ctx := context.Background()

	if _, _, err := svc.Categories(ctx); err != nil {
		t.Fatalf("warm-up Categories: %v", err)
	}
	if _, src, _ := svc.Categories(ctx); src != domain.SourceCache {
		t.Fatalf("second Categories source = %s, want cache", src)
	}

	// The categories key carries no generation; only the explicit drop
	// invalidates it.
	svc.Cache.BumpGeneration(ctx)
	if _, src, _ := svc.Categories(ctx); src != domain.SourceCache {
		t.Fatalf("Categories after bump source = %s, want cache", src)
	}

	svc.Cache.DropCategories(ctx)
	if _, src, _ := svc.Categories(ctx); src != domain.SourceReplica {
		t.Fatalf("Categories after drop source = %s, want replica", src)
	}
}

func TestVersion_DefaultsAndTracks(t *testing.T) {
	svc, _ := newNewsService(t, newServiceDB(t, false), newServiceDB(t, false))
	ctx := context.Background()

	if v := svc.Version(ctx); v != "1" {
		t.Fatalf("fresh Version = %q, want 1", v)
	}
	svc.Cache.BumpGeneration(ctx)
	svc.Cache.BumpGeneration(ctx)
	if v := svc.Version(ctx); v != "2" {
		t.Fatalf("Version after two bumps = %q, want 2", v)
	}
}
