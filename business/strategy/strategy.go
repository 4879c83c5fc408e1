package strategy

import (
	"context"
	"fmt"
	"sync"

	"recoEngine/business/ranking"
	"recoEngine/domain"
)

// Strategy produces the candidate set a ranking mode is applied to.
type Strategy interface {
	Name() string
	Mode() ranking.Mode
	Fetch(ctx context.Context, subjectID string) ([]domain.Product, error)
}

// Registry keeps strategies in registration order. The order matters: the
// first registered strategy is the bandit's fallback arm.
type Registry struct {
	mu     sync.RWMutex
	order  []string
	byName map[string]Strategy
}

func NewRegistry(strategies ...Strategy) (*Registry, error) {
	r := &Registry{byName: make(map[string]Strategy, len(strategies))}
	for _, s := range strategies {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(s Strategy) error {
	if s == nil || s.Name() == "" {
		return fmt.Errorf("%w: strategy must have a name", domain.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byName[s.Name()]; dup {
		return fmt.Errorf("%w: strategy %q already registered", domain.ErrInvalidArgument, s.Name())
	}
	r.byName[s.Name()] = s
	r.order = append(r.order, s.Name())
	return nil
}

func (r *Registry) Get(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// Names returns a copy of the registered names in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
