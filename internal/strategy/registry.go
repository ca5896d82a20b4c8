package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

var (
	ErrStrategyExists   = errors.New("strategy already registered")
	ErrStrategyNotFound = errors.New("strategy not found")
)

// Constructor builds a strategy instance. Stochastic strategies draw from the
// supplied random source; deterministic ones ignore it.
type Constructor func(rng *rand.Rand) Strategy

var strategyRegistry = struct {
	mu sync.RWMutex
	m  map[string]Constructor
}{
	m: make(map[string]Constructor),
}

// Register adds a strategy constructor under its id. The id must match the
// Info().ID of the constructed strategy.
func Register(id string, build Constructor) error {
	if id == "" {
		return errors.New("strategy id is required")
	}
	if build == nil {
		return errors.New("strategy constructor is required")
	}

	strategyRegistry.mu.Lock()
	defer strategyRegistry.mu.Unlock()

	if _, exists := strategyRegistry.m[id]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyExists, id)
	}
	strategyRegistry.m[id] = build
	return nil
}

// Resolve builds the registered strategy for an id.
func Resolve(id string, rng *rand.Rand) (Strategy, error) {
	strategyRegistry.mu.RLock()
	build, ok := strategyRegistry.m[id]
	strategyRegistry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, id)
	}
	return build(rng), nil
}

// ResolveAll builds strategies for every id in order, sharing one random
// source across the stochastic members.
func ResolveAll(ids []string, rng *rand.Rand) ([]Strategy, error) {
	out := make([]Strategy, 0, len(ids))
	for _, id := range ids {
		s, err := Resolve(id, rng)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// IDs lists all registered strategy ids in lexicographic order.
func IDs() []string {
	strategyRegistry.mu.RLock()
	defer strategyRegistry.mu.RUnlock()

	ids := make([]string, 0, len(strategyRegistry.m))
	for id := range strategyRegistry.m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func mustRegister(id string, build Constructor) {
	if err := Register(id, build); err != nil {
		panic(err)
	}
}

func init() {
	mustRegister("always_cooperate", func(*rand.Rand) Strategy { return AlwaysCooperate{} })
	mustRegister("always_defect", func(*rand.Rand) Strategy { return AlwaysDefect{} })
	mustRegister("tit_for_tat", func(*rand.Rand) Strategy { return TitForTat{} })
	mustRegister("suspicious_tit_for_tat", func(*rand.Rand) Strategy { return SuspiciousTitForTat{} })
	mustRegister("tit_for_two_tats", func(*rand.Rand) Strategy { return TitForTwoTats{} })
	mustRegister("generous_tit_for_tat", func(rng *rand.Rand) Strategy {
		return GenerousTitForTat{Rand: rng, Forgiveness: defaultForgiveness}
	})
	mustRegister("grim_trigger", func(*rand.Rand) Strategy { return GrimTrigger{} })
	mustRegister("pavlov", func(*rand.Rand) Strategy { return Pavlov{} })
	mustRegister("random", func(rng *rand.Rand) Strategy { return Random{Rand: rng, Bias: 0.5} })
	mustRegister("alternator", func(*rand.Rand) Strategy { return Alternator{} })
	mustRegister("majority", func(*rand.Rand) Strategy { return Majority{} })
}
