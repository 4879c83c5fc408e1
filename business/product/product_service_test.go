//go:build !integration

package product

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"recoEngine/business/resultcache"
	"recoEngine/domain"
	"recoEngine/internal/repository/memory"
)

type fakeProductRepo struct {
	products map[uint64]domain.Product
	finds    int
	err      error

	lastLimit  int
	lastOffset int
}

func (f *fakeProductRepo) FindByID(_ context.Context, id uint64) (domain.Product, error) {
	f.finds++
	if f.err != nil {
		return domain.Product{}, f.err
	}
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("product %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (f *fakeProductRepo) List(_ context.Context, _ string, limit, offset int) ([]domain.Product, error) {
	f.lastLimit, f.lastOffset = limit, offset
	out := make([]domain.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func newService(t *testing.T, repo *fakeProductRepo) *productService {
	t.Helper()
	backend := memory.NewCache(100, time.Minute)
	t.Cleanup(backend.Close)
	return NewProductService(repo, resultcache.New(backend, time.Second))
}

func TestGetProductByID_ReadsThroughCache(t *testing.T) {
	repo := &fakeProductRepo{products: map[uint64]domain.Product{
		7: {ID: 7, Name: "Yoga Mat", Category: "Fitness", Price: 29.99},
	}}
	svc := newService(t, repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, err := svc.GetProductByID(ctx, 7)
		if err != nil {
			t.Fatalf("GetProductByID: %v", err)
		}
		if p.Name != "Yoga Mat" {
			t.Fatalf("name = %q", p.Name)
		}
	}
	if repo.finds != 1 {
		t.Errorf("store reads = %d, want 1", repo.finds)
	}
}

func TestGetProductByID_Errors(t *testing.T) {
	repo := &fakeProductRepo{products: map[uint64]domain.Product{}}
	svc := newService(t, repo)

	if _, err := svc.GetProductByID(context.Background(), 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("id 0: got %v", err)
	}
	if _, err := svc.GetProductByID(context.Background(), 99); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing: got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.GetProductByID(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled: got %v", err)
	}
}

func TestGetProductByID_NilCache(t *testing.T) {
	repo := &fakeProductRepo{products: map[uint64]domain.Product{1: {ID: 1}}}
	svc := NewProductService(repo, nil)

	for i := 0; i < 2; i++ {
		if _, err := svc.GetProductByID(context.Background(), 1); err != nil {
			t.Fatal(err)
		}
	}
	if repo.finds != 2 {
		t.Errorf("store reads = %d, want 2 without a cache", repo.finds)
	}
}

func TestListProducts_Limits(t *testing.T) {
	repo := &fakeProductRepo{products: map[uint64]domain.Product{}}
	svc := newService(t, repo)
	ctx := context.Background()

	if _, err := svc.ListProducts(ctx, "", 0, 0); err != nil {
		t.Fatal(err)
	}
	if repo.lastLimit != 20 {
		t.Errorf("default limit = %d, want 20", repo.lastLimit)
	}

	if _, err := svc.ListProducts(ctx, "Home", 1000, 5); err != nil {
		t.Fatal(err)
	}
	if repo.lastLimit != 100 || repo.lastOffset != 5 {
		t.Errorf("limit/offset = %d/%d, want 100/5", repo.lastLimit, repo.lastOffset)
	}

	if _, err := svc.ListProducts(ctx, "", 10, -1); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("negative offset: got %v", err)
	}
}
