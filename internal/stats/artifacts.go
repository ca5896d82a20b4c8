package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"dilemma/internal/model"
)

// RunArtifacts bundles everything persisted for one run.
type RunArtifacts struct {
	Run         model.RunRecord
	Standings   []model.StandingRecord
	Generations []model.GenerationRecord
}

// WriteRunArtifacts writes a run's artifacts under dir/<run_id>: run.json
// always, standings.csv and generations.csv when present. It returns the run
// directory.
func WriteRunArtifacts(dir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	runDir := filepath.Join(dir, artifacts.Run.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "run.json"), artifacts.Run); err != nil {
		return "", err
	}
	if len(artifacts.Standings) > 0 {
		if err := writeStandingsCSV(filepath.Join(runDir, "standings.csv"), artifacts.Standings); err != nil {
			return "", err
		}
	}
	if len(artifacts.Generations) > 0 {
		if err := writeGenerationsCSV(filepath.Join(runDir, "generations.csv"), artifacts.Generations); err != nil {
			return "", err
		}
	}
	return runDir, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeStandingsCSV(path string, standings []model.StandingRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"rank", "strategy_id", "total_score", "matches", "wins", "losses", "ties", "cooperation_rate", "average_score"}); err != nil {
		return err
	}
	for _, s := range standings {
		row := []string{
			strconv.Itoa(s.Rank),
			s.StrategyID,
			strconv.Itoa(s.TotalScore),
			strconv.Itoa(s.Matches),
			strconv.Itoa(s.Wins),
			strconv.Itoa(s.Losses),
			strconv.Itoa(s.Ties),
			strconv.FormatFloat(s.CooperationRate, 'f', 4, 64),
			strconv.FormatFloat(s.AverageScore, 'f', 4, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeGenerationsCSV writes one row per generation with a fixed strategy
// column order, so diffing exports across runs stays meaningful.
func writeGenerationsCSV(path string, generations []model.GenerationRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	idSet := make(map[string]struct{})
	for _, g := range generations {
		for id := range g.Counts {
			idSet[id] = struct{}{}
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	header := []string{"index", "average_fitness", "cooperation_rate", "dominant"}
	header = append(header, ids...)

	w := csv.NewWriter(file)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, g := range generations {
		row := []string{
			strconv.Itoa(g.Index),
			strconv.FormatFloat(g.AverageFitness, 'f', 6, 64),
			strconv.FormatFloat(g.CooperationRate, 'f', 4, 64),
			g.Dominant,
		}
		for _, id := range ids {
			row = append(row, strconv.Itoa(g.Counts[id]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
