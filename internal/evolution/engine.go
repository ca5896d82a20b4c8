package evolution

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"dilemma/internal/game"
	"dilemma/internal/strategy"
)

// convergenceShare is the population share past which a run is considered
// converged on a single strategy.
const convergenceShare = 0.95

var ErrRunInProgress = errors.New("evolution run in progress")

// StopReason explains why a run terminated.
type StopReason string

const (
	StopMaxGenerations StopReason = "max_generations"
	StopConvergence    StopReason = "convergence"
	StopExtinction     StopReason = "extinction"
)

// Generation is an immutable snapshot of the population at one index.
// CooperationRate is the population share held by Nice-tagged strategies;
// Dominant is the highest-count strategy, ties broken lexicographically by id.
type Generation struct {
	Index           int            `json:"index"`
	Counts          map[string]int `json:"counts"`
	AverageFitness  float64        `json:"average_fitness"`
	CooperationRate float64        `json:"cooperation_rate"`
	Dominant        string         `json:"dominant"`
}

// Result is the finished sequence of generation snapshots.
type Result struct {
	Generations []Generation `json:"generations"`
	Reason      StopReason   `json:"reason"`
}

// Engine simulates population frequencies of strategies across discrete
// generations under fitness-proportional reproduction with mutation. Fitness
// is the population-frequency-weighted expected payoff against the current
// mix, including self-play, which is what distinguishes it from a plain
// round-robin score.
type Engine struct {
	mu      sync.Mutex
	matrix  game.PayoffMatrix
	cfg     Config
	byID    map[string]strategy.Strategy
	ids     []string
	rng     *rand.Rand
	running bool
}

// NewEngine validates the configuration and strategy set. At least one
// strategy is required; ids must be distinct.
func NewEngine(strategies []strategy.Strategy, cfg Config, matrix game.PayoffMatrix) (*Engine, error) {
	if len(strategies) == 0 {
		return nil, errors.New("at least one strategy is required")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	byID := make(map[string]strategy.Strategy, len(strategies))
	ids := make([]string, 0, len(strategies))
	for _, s := range strategies {
		id := s.Info().ID
		if id == "" {
			return nil, errors.New("strategy id is required")
		}
		if _, dup := byID[id]; dup {
			return nil, fmt.Errorf("duplicate strategy id: %s", id)
		}
		byID[id] = s
		ids = append(ids, id)
	}
	sort.Strings(ids)

	return &Engine{
		matrix: matrix,
		cfg:    cfg,
		byID:   byID,
		ids:    ids,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// InitialPopulation splits the configured population equally across
// strategies in id order; the integer remainder goes to the first ids.
func (e *Engine) InitialPopulation() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initialPopulation()
}

func (e *Engine) initialPopulation() map[string]int {
	counts := make(map[string]int, len(e.ids))
	base := e.cfg.PopulationSize / len(e.ids)
	remainder := e.cfg.PopulationSize % len(e.ids)
	for i, id := range e.ids {
		counts[id] = base
		if i < remainder {
			counts[id]++
		}
	}
	return counts
}

// Run produces the generation sequence starting from initial, or from an
// equal split when initial is nil. The run terminates at the first of: the
// generation cap, convergence (one strategy holds more than 95% of the
// population), or extinction (fewer than two strategies alive). Only one run
// may be active per engine at a time.
func (e *Engine) Run(ctx context.Context, initial map[string]int) (Result, error) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return Result{}, ErrRunInProgress
	}
	e.running = true
	cfg := e.cfg
	rng := e.rng
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.running = false
		e.mu.Unlock()
	}()

	var counts map[string]int
	if initial == nil {
		e.mu.Lock()
		counts = e.initialPopulation()
		e.mu.Unlock()
	} else {
		copied, err := e.checkInitial(initial)
		if err != nil {
			return Result{}, err
		}
		counts = copied
	}

	generations := make([]Generation, 0, cfg.MaxGenerations+1)
	for gen := 0; ; gen++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		fitness, err := e.evaluateFitness(ctx, counts, cfg, rng)
		if err != nil {
			return Result{}, err
		}
		snapshot := e.snapshot(gen, counts, fitness)
		generations = append(generations, snapshot)

		if reason, done := terminationReason(counts, gen, cfg.MaxGenerations); done {
			return Result{Generations: generations, Reason: reason}, nil
		}

		counts = e.nextGeneration(counts, fitness, cfg, rng)
	}
}

// Reset reseeds the random source so the next run reproduces the last one.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rng = rand.New(rand.NewSource(e.cfg.Seed))
}

// UpdateConfig applies a partial configuration change. It is rejected while a
// run is active. Changing the seed reseeds the random source.
func (e *Engine) UpdateConfig(patch ConfigPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrRunInProgress
	}

	next := e.cfg.apply(patch)
	if err := next.validate(); err != nil {
		return err
	}
	reseed := patch.Seed != nil && *patch.Seed != e.cfg.Seed
	e.cfg = next
	if reseed {
		e.rng = rand.New(rand.NewSource(next.Seed))
	}
	return nil
}

// AddStrategy extends the strategy set between runs.
func (e *Engine) AddStrategy(s strategy.Strategy) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrRunInProgress
	}

	id := s.Info().ID
	if id == "" {
		return errors.New("strategy id is required")
	}
	if _, dup := e.byID[id]; dup {
		return fmt.Errorf("duplicate strategy id: %s", id)
	}
	e.byID[id] = s
	e.ids = append(e.ids, id)
	sort.Strings(e.ids)
	return nil
}

// RemoveStrategy shrinks the strategy set between runs.
func (e *Engine) RemoveStrategy(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return ErrRunInProgress
	}

	if _, ok := e.byID[id]; !ok {
		return fmt.Errorf("unknown strategy id: %s", id)
	}
	if len(e.ids) == 1 {
		return errors.New("cannot remove the last strategy")
	}
	delete(e.byID, id)
	for i, existing := range e.ids {
		if existing == id {
			e.ids = append(e.ids[:i], e.ids[i+1:]...)
			break
		}
	}
	return nil
}

// StrategyIDs lists the engine's strategy ids in lexicographic order.
func (e *Engine) StrategyIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.ids...)
}

func (e *Engine) checkInitial(initial map[string]int) (map[string]int, error) {
	counts := make(map[string]int, len(e.ids))
	total := 0
	for id, count := range initial {
		if _, ok := e.byID[id]; !ok {
			return nil, fmt.Errorf("unknown strategy id in initial population: %s", id)
		}
		if count < 0 {
			return nil, fmt.Errorf("negative count for strategy %s: %d", id, count)
		}
		total += count
	}
	if total != e.cfg.PopulationSize {
		return nil, fmt.Errorf("initial population mismatch: got=%d want=%d", total, e.cfg.PopulationSize)
	}
	for _, id := range e.ids {
		counts[id] = initial[id]
	}
	return counts, nil
}

type pairJob struct {
	idx  int
	id1  string
	id2  string
	seed int64
}

// evaluateFitness runs one match per ordered pair of alive strategies,
// including self-play, on a bounded worker pool. Seeds are drawn in pair
// order before dispatch and contributions are reduced in that same order, so
// results do not depend on scheduling.
func (e *Engine) evaluateFitness(ctx context.Context, counts map[string]int, cfg Config, rng *rand.Rand) (map[string]float64, error) {
	total := 0
	for _, count := range counts {
		total += count
	}
	fitness := make(map[string]float64, len(e.ids))
	for _, id := range e.ids {
		fitness[id] = 0
	}
	if total == 0 {
		return fitness, nil
	}

	var jobs []pairJob
	for _, id1 := range e.ids {
		if counts[id1] == 0 {
			continue
		}
		for _, id2 := range e.ids {
			if counts[id2] == 0 {
				continue
			}
			jobs = append(jobs, pairJob{idx: len(jobs), id1: id1, id2: id2, seed: rng.Int63()})
		}
	}
	if len(jobs) == 0 {
		return fitness, nil
	}

	workerCount := cfg.Workers
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(jobs) {
		workerCount = len(jobs)
	}

	type matchResult struct {
		score int
		err   error
	}
	results := make([]matchResult, len(jobs))
	jobCh := make(chan pairJob)

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := ctx.Err(); err != nil {
					results[job.idx] = matchResult{err: err}
					continue
				}
				sim := game.NewMatchSimulator(e.matrix, job.seed)
				history, err := sim.PlayMatch(e.byID[job.id1], e.byID[job.id2], cfg.RoundsPerGeneration, 0)
				if err != nil {
					results[job.idx] = matchResult{err: err}
					continue
				}
				score, _ := history.TotalScores()
				results[job.idx] = matchResult{score: score}
			}
		}()
	}
	for _, job := range jobs {
		jobCh <- job
	}
	close(jobCh)
	wg.Wait()

	totalSq := float64(total) * float64(total)
	for _, job := range jobs {
		res := results[job.idx]
		if res.err != nil {
			return nil, res.err
		}
		weight := float64(counts[job.id1]) * float64(counts[job.id2]) / totalSq
		fitness[job.id1] += float64(res.score) * weight
	}
	return fitness, nil
}

// nextGeneration applies selection then mutation. Selection draws
// PopulationSize individuals proportional to fitness^SelectionPressure over
// alive strategies; zero (or non-positive) total adjusted fitness keeps the
// population unchanged instead of collapsing it.
func (e *Engine) nextGeneration(counts map[string]int, fitness map[string]float64, cfg Config, rng *rand.Rand) map[string]int {
	next := make(map[string]int, len(e.ids))

	alive := make([]string, 0, len(e.ids))
	adjusted := make(map[string]float64, len(e.ids))
	totalAdjusted := 0.0
	for _, id := range e.ids {
		next[id] = 0
		if counts[id] == 0 {
			continue
		}
		alive = append(alive, id)
		f := fitness[id]
		if f <= 0 {
			continue
		}
		adj := math.Pow(f, cfg.SelectionPressure)
		adjusted[id] = adj
		totalAdjusted += adj
	}

	if totalAdjusted <= 0 {
		for id, count := range counts {
			next[id] = count
		}
	} else {
		for draw := 0; draw < cfg.PopulationSize; draw++ {
			pick := rng.Float64() * totalAdjusted
			acc := 0.0
			chosen := alive[len(alive)-1]
			for _, id := range alive {
				acc += adjusted[id]
				if pick <= acc {
					chosen = id
					break
				}
			}
			next[chosen]++
		}
	}

	e.mutate(next, cfg, rng)
	return next
}

// mutate moves floor(PopulationSize*MutationRate) individuals, each from a
// uniformly chosen alive strategy to a uniformly chosen strategy. The move is
// a paired decrement/increment, so the population total never changes and no
// count goes negative.
func (e *Engine) mutate(counts map[string]int, cfg Config, rng *rand.Rand) {
	events := int(float64(cfg.PopulationSize) * cfg.MutationRate)
	for event := 0; event < events; event++ {
		alive := make([]string, 0, len(e.ids))
		for _, id := range e.ids {
			if counts[id] > 0 {
				alive = append(alive, id)
			}
		}
		if len(alive) == 0 {
			return
		}
		from := alive[rng.Intn(len(alive))]
		to := e.ids[rng.Intn(len(e.ids))]
		counts[from]--
		counts[to]++
	}
}

func (e *Engine) snapshot(index int, counts map[string]int, fitness map[string]float64) Generation {
	total := 0
	for _, count := range counts {
		total += count
	}

	snapshot := Generation{
		Index:  index,
		Counts: make(map[string]int, len(e.ids)),
	}
	if total == 0 {
		return snapshot
	}

	niceTotal := 0
	weightedFitness := 0.0
	dominant := ""
	dominantCount := -1
	for _, id := range e.ids {
		count := counts[id]
		snapshot.Counts[id] = count
		weightedFitness += fitness[id] * float64(count)
		if e.byID[id].Info().Nice {
			niceTotal += count
		}
		if count > dominantCount {
			dominant = id
			dominantCount = count
		}
	}
	snapshot.AverageFitness = weightedFitness / float64(total)
	snapshot.CooperationRate = float64(niceTotal) / float64(total)
	snapshot.Dominant = dominant
	return snapshot
}

func terminationReason(counts map[string]int, generation, maxGenerations int) (StopReason, bool) {
	total := 0
	alive := 0
	largest := 0
	for _, count := range counts {
		total += count
		if count > 0 {
			alive++
		}
		if count > largest {
			largest = count
		}
	}
	if total > 0 && float64(largest) > convergenceShare*float64(total) {
		return StopConvergence, true
	}
	if alive < 2 {
		return StopExtinction, true
	}
	if generation >= maxGenerations {
		return StopMaxGenerations, true
	}
	return "", false
}
