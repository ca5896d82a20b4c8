package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	api "dilemma/pkg/dilemma"
)

// evolveFileConfig is the on-disk shape of an evolve run config. JSON and
// YAML files share the same field names.
type evolveFileConfig struct {
	Strategies          []string       `json:"strategies" yaml:"strategies"`
	Initial             map[string]int `json:"initial" yaml:"initial"`
	PopulationSize      int            `json:"population_size" yaml:"population_size"`
	MutationRate        float64        `json:"mutation_rate" yaml:"mutation_rate"`
	SelectionPressure   float64        `json:"selection_pressure" yaml:"selection_pressure"`
	RoundsPerGeneration int            `json:"rounds_per_generation" yaml:"rounds_per_generation"`
	MaxGenerations      int            `json:"max_generations" yaml:"max_generations"`
	Workers             int            `json:"workers" yaml:"workers"`
	Seed                int64          `json:"seed" yaml:"seed"`
}

// loadEvolutionRequest reads an evolve run config from a JSON or YAML file,
// picking the decoder by extension.
func loadEvolutionRequest(path string) (api.EvolutionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return api.EvolutionRequest{}, fmt.Errorf("read config: %w", err)
	}

	var cfg evolveFileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return api.EvolutionRequest{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return api.EvolutionRequest{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return api.EvolutionRequest{}, fmt.Errorf("unsupported config format: %s", path)
	}

	return api.EvolutionRequest{
		StrategyIDs: cfg.Strategies,
		Initial:     cfg.Initial,
		Config: api.Config{
			PopulationSize:      cfg.PopulationSize,
			MutationRate:        cfg.MutationRate,
			SelectionPressure:   cfg.SelectionPressure,
			RoundsPerGeneration: cfg.RoundsPerGeneration,
			MaxGenerations:      cfg.MaxGenerations,
			Workers:             cfg.Workers,
			Seed:                cfg.Seed,
		},
	}, nil
}
