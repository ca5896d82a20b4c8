package evolution

import "fmt"

// Config holds the knobs for one evolutionary run.
type Config struct {
	// PopulationSize is the conserved number of individuals.
	PopulationSize int `json:"population_size"`
	// MutationRate is the fraction of the population mutated per generation.
	MutationRate float64 `json:"mutation_rate"`
	// SelectionPressure is the exponent applied to fitness before sampling;
	// 1 is plain proportional selection, larger values sharpen the advantage
	// of high-fitness strategies.
	SelectionPressure float64 `json:"selection_pressure"`
	// RoundsPerGeneration is the match length used for fitness evaluation.
	RoundsPerGeneration int `json:"rounds_per_generation"`
	// MaxGenerations caps the run.
	MaxGenerations int `json:"max_generations"`
	// Workers bounds the parallelism of pairwise fitness matches; values
	// below 1 mean single-threaded.
	Workers int `json:"workers"`
	// Seed drives every random draw of the run.
	Seed int64 `json:"seed"`
}

// ConfigPatch is a partial configuration update; nil fields keep their
// current value.
type ConfigPatch struct {
	PopulationSize      *int
	MutationRate        *float64
	SelectionPressure   *float64
	RoundsPerGeneration *int
	MaxGenerations      *int
	Workers             *int
	Seed                *int64
}

func (c Config) validate() error {
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population size must be > 0: %d", c.PopulationSize)
	}
	if c.MutationRate < 0 || c.MutationRate > 1 {
		return fmt.Errorf("mutation rate must be in [0, 1]: %g", c.MutationRate)
	}
	if c.SelectionPressure < 0 {
		return fmt.Errorf("selection pressure must be >= 0: %g", c.SelectionPressure)
	}
	if c.RoundsPerGeneration <= 0 {
		return fmt.Errorf("rounds per generation must be > 0: %d", c.RoundsPerGeneration)
	}
	if c.MaxGenerations <= 0 {
		return fmt.Errorf("max generations must be > 0: %d", c.MaxGenerations)
	}
	return nil
}

func (c Config) apply(patch ConfigPatch) Config {
	if patch.PopulationSize != nil {
		c.PopulationSize = *patch.PopulationSize
	}
	if patch.MutationRate != nil {
		c.MutationRate = *patch.MutationRate
	}
	if patch.SelectionPressure != nil {
		c.SelectionPressure = *patch.SelectionPressure
	}
	if patch.RoundsPerGeneration != nil {
		c.RoundsPerGeneration = *patch.RoundsPerGeneration
	}
	if patch.MaxGenerations != nil {
		c.MaxGenerations = *patch.MaxGenerations
	}
	if patch.Workers != nil {
		c.Workers = *patch.Workers
	}
	if patch.Seed != nil {
		c.Seed = *patch.Seed
	}
	return c
}
