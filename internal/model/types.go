package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	RunKindTournament = "tournament"
	RunKindBracket    = "bracket"
	RunKindEvolution  = "evolution"
)

// RunRecord describes one persisted run: a tournament, a bracket, or an
// evolutionary run.
type RunRecord struct {
	VersionedRecord
	RunID        string `json:"run_id"`
	Kind         string `json:"kind"`
	CreatedAtUTC string `json:"created_at_utc"`
	Seed         int64  `json:"seed"`

	Rounds     int      `json:"rounds"`
	NoiseLevel float64  `json:"noise_level"`
	Strategies []string `json:"strategies"`

	PopulationSize      int     `json:"population_size,omitempty"`
	MutationRate        float64 `json:"mutation_rate,omitempty"`
	SelectionPressure   float64 `json:"selection_pressure,omitempty"`
	RoundsPerGeneration int     `json:"rounds_per_generation,omitempty"`
	MaxGenerations      int     `json:"max_generations,omitempty"`

	Winner      string `json:"winner,omitempty"`
	Termination string `json:"termination,omitempty"`
	Generations int    `json:"generations,omitempty"`
}

// StandingRecord is one row of persisted tournament standings.
type StandingRecord struct {
	Rank            int     `json:"rank"`
	StrategyID      string  `json:"strategy_id"`
	TotalScore      int     `json:"total_score"`
	Matches         int     `json:"matches"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	Ties            int     `json:"ties"`
	CooperationRate float64 `json:"cooperation_rate"`
	AverageScore    float64 `json:"average_score"`
}

// GenerationRecord is one persisted generation snapshot of an evolution run.
type GenerationRecord struct {
	Index           int            `json:"index"`
	Counts          map[string]int `json:"counts"`
	AverageFitness  float64        `json:"average_fitness"`
	CooperationRate float64        `json:"cooperation_rate"`
	Dominant        string         `json:"dominant"`
}

// StrategyRecord is the persisted identity and classification of a strategy.
type StrategyRecord struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Nice        bool   `json:"nice"`
	Forgiving   bool   `json:"forgiving"`
	Provokable  bool   `json:"provokable"`
	Clear       bool   `json:"clear"`
}
