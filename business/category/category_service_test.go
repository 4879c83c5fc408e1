//go:build !integration

package category

import (
	"context"
	"errors"
	"testing"
	"time"

	"recoEngine/business/resultcache"
	"recoEngine/domain"
	"recoEngine/internal/repository/memory"
)

type fakeCategoryRepo struct {
	calls int
	err   error
}

func (f *fakeCategoryRepo) FindAll(context.Context) ([]domain.CategorySummary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []domain.CategorySummary{
		{Category: "Electronics", ProductCount: 4, Interactions: 120},
		{Category: "Home", ProductCount: 2, Interactions: 9},
	}, nil
}

func TestGetAllCategories_Cached(t *testing.T) {
	backend := memory.NewCache(10, time.Minute)
	t.Cleanup(backend.Close)

	repo := &fakeCategoryRepo{}
	svc := NewCategoryService(repo, resultcache.New(backend, time.Second))

	for i := 0; i < 3; i++ {
		got, err := svc.GetAllCategories(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 || got[0].Category != "Electronics" {
			t.Fatalf("got %+v", got)
		}
	}
	if repo.calls != 1 {
		t.Errorf("store reads = %d, want 1", repo.calls)
	}
}

func TestGetAllCategories_Error(t *testing.T) {
	boom := errors.New("boom")
	svc := NewCategoryService(&fakeCategoryRepo{err: boom}, nil)
	if _, err := svc.GetAllCategories(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}
}
