package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"dilemma/internal/storage"
	api "dilemma/pkg/dilemma"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "strategies":
		return runStrategies(ctx, args[1:])
	case "match":
		return runMatch(ctx, args[1:])
	case "head2head":
		return runHeadToHead(ctx, args[1:])
	case "tournament":
		return runTournament(ctx, args[1:])
	case "bracket":
		return runBracket(ctx, args[1:])
	case "evolve":
		return runEvolve(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "standings":
		return runStandings(ctx, args[1:])
	case "generations":
		return runGenerations(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(message string) error {
	return errors.New(message + `

usage: dilemmactl <command> [flags]

commands:
  init         initialize the store
  reset        clear all persisted runs
  strategies   list the strategy catalog
  match        play one match between two strategies
  head2head    compare two strategies over repeated matches
  tournament   run a round-robin tournament
  bracket      run a single-elimination bracket
  evolve       run an evolutionary simulation
  runs         list persisted runs
  standings    show persisted standings for a run
  generations  show persisted generations for a run
  export       write run artifacts to disk`)
}

func storeFlags(fs *flag.FlagSet) (*string, *string) {
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "dilemma.db", "sqlite database path")
	return storeKind, dbPath
}

func newClient(ctx context.Context, storeKind, dbPath string) (*api.Client, error) {
	return api.New(ctx, api.Options{StoreKind: storeKind, DBPath: dbPath})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Reset(ctx); err != nil {
		return err
	}
	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runStrategies(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, "memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	for _, s := range client.Strategies() {
		tags := make([]string, 0, 4)
		if s.Nice {
			tags = append(tags, "nice")
		}
		if s.Forgiving {
			tags = append(tags, "forgiving")
		}
		if s.Provokable {
			tags = append(tags, "provokable")
		}
		if s.Clear {
			tags = append(tags, "clear")
		}
		fmt.Printf("%-24s %-24s [%s]\n", s.ID, s.Name, strings.Join(tags, ","))
	}
	return nil
}

func runMatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("match", flag.ContinueOnError)
	s1 := fs.String("s1", "tit_for_tat", "first strategy id")
	s2 := fs.String("s2", "always_defect", "second strategy id")
	rounds := fs.Int("rounds", 100, "rounds per match")
	noise := fs.Float64("noise", 0, "per-move noise probability")
	seed := fs.Int64("seed", 1, "random seed")
	showRounds := fs.Bool("show-rounds", false, "print every round")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, "memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.PlayMatch(*s1, *s2, nil, *rounds, *noise, *seed)
	if err != nil {
		return err
	}
	if *showRounds {
		for _, round := range history {
			fmt.Printf("round=%d %s/%s %d/%d\n", round.Round, round.Move1, round.Move2, round.Score1, round.Score2)
		}
	}
	score1, score2 := history.TotalScores()
	coop1, coop2 := history.CooperationRates()
	fmt.Printf("%s: score=%d coop=%.2f\n", *s1, score1, coop1)
	fmt.Printf("%s: score=%d coop=%.2f\n", *s2, score2, coop2)
	return nil
}

func runHeadToHead(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("head2head", flag.ContinueOnError)
	s1 := fs.String("s1", "tit_for_tat", "first strategy id")
	s2 := fs.String("s2", "always_defect", "second strategy id")
	rounds := fs.Int("rounds", 100, "rounds per match")
	noise := fs.Float64("noise", 0, "per-move noise probability")
	matches := fs.Int("matches", 10, "number of matches")
	seed := fs.Int64("seed", 1, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, "memory", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	stats, err := client.HeadToHead(api.HeadToHeadRequest{
		Strategy1:  *s1,
		Strategy2:  *s2,
		Rounds:     *rounds,
		NoiseLevel: *noise,
		Matches:    *matches,
		Seed:       *seed,
	})
	if err != nil {
		return err
	}
	fmt.Printf("%s vs %s over %d matches\n", stats.Strategy1, stats.Strategy2, stats.Matches)
	fmt.Printf("wins: %d / %d (ties %d)\n", stats.Wins1, stats.Wins2, stats.Ties)
	fmt.Printf("avg score: %.2f / %.2f\n", stats.AverageScore1, stats.AverageScore2)
	fmt.Printf("coop rate: %.2f / %.2f\n", stats.CooperationRate1, stats.CooperationRate2)
	return nil
}

func runTournament(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	rounds := fs.Int("rounds", 100, "rounds per match")
	noise := fs.Float64("noise", 0, "per-move noise probability")
	seed := fs.Int64("seed", 1, "random seed")
	ids := fs.String("strategies", "", "comma-separated strategy ids (default: full catalog)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.RunTournament(ctx, api.TournamentRequest{
		StrategyIDs: splitIDs(*ids),
		Rounds:      *rounds,
		NoiseLevel:  *noise,
		Seed:        *seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run=%s winner=%s\n", result.RunID, result.Result.Winner)
	for i, s := range result.Result.Standings {
		fmt.Printf("%2d. %-24s score=%-6d w/l/t=%d/%d/%d coop=%.2f\n",
			i+1, s.StrategyID, s.TotalScore, s.Wins, s.Losses, s.Ties, s.CooperationRate)
	}
	return nil
}

func runBracket(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("bracket", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	rounds := fs.Int("rounds", 100, "rounds per match")
	noise := fs.Float64("noise", 0, "per-move noise probability")
	seed := fs.Int64("seed", 1, "random seed")
	ids := fs.String("strategies", "", "comma-separated strategy ids (default: full catalog)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.RunBracket(ctx, api.TournamentRequest{
		StrategyIDs: splitIDs(*ids),
		Rounds:      *rounds,
		NoiseLevel:  *noise,
		Seed:        *seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("run=%s winner=%s\n", result.RunID, result.Result.Winner)
	for _, round := range result.Result.Rounds {
		fmt.Printf("round %d:\n", round.Round)
		for _, pairing := range round.Pairings {
			if pairing.Strategy2 == "" {
				fmt.Printf("  %s advances on a bye\n", pairing.Strategy1)
				continue
			}
			fmt.Printf("  %s vs %s %d-%d -> %s\n",
				pairing.Strategy1, pairing.Strategy2, pairing.Score1, pairing.Score2, pairing.Winner)
		}
	}
	return nil
}

func runEvolve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("evolve", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	configPath := fs.String("config", "", "run config file (json or yaml)")
	population := fs.Int("population", 100, "population size")
	mutation := fs.Float64("mutation", 0.01, "mutation rate")
	pressure := fs.Float64("pressure", 1.0, "selection pressure exponent")
	rounds := fs.Int("rounds", 50, "rounds per fitness match")
	generations := fs.Int("generations", 100, "generation cap")
	workers := fs.Int("workers", 1, "parallel fitness workers")
	seed := fs.Int64("seed", 1, "random seed")
	ids := fs.String("strategies", "", "comma-separated strategy ids (default: full catalog)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := api.EvolutionRequest{
		StrategyIDs: splitIDs(*ids),
		Config: api.Config{
			PopulationSize:      *population,
			MutationRate:        *mutation,
			SelectionPressure:   *pressure,
			RoundsPerGeneration: *rounds,
			MaxGenerations:      *generations,
			Workers:             *workers,
			Seed:                *seed,
		},
	}
	if *configPath != "" {
		loaded, err := loadEvolutionRequest(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	result, err := client.RunEvolution(ctx, req)
	if err != nil {
		return err
	}

	last := result.Result.Generations[len(result.Result.Generations)-1]
	fmt.Printf("run=%s generations=%d reason=%s dominant=%s\n",
		result.RunID, len(result.Result.Generations), result.Result.Reason, last.Dominant)
	for _, g := range result.Result.Generations {
		fmt.Printf("gen=%-4d fitness=%.4f coop=%.2f dominant=%s\n",
			g.Index, g.AverageFitness, g.CooperationRate, g.Dominant)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	limit := fs.Int("limit", 20, "maximum runs to list")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	for i, run := range runs {
		if *limit > 0 && i >= *limit {
			break
		}
		fmt.Printf("%-40s %-10s seed=%-6d winner=%s\n", run.RunID, run.Kind, run.Seed, run.Winner)
	}
	return nil
}

func runStandings(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("standings", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("run id is required")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	standings, ok, err := client.Standings(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no standings for run: %s", *runID)
	}
	for _, s := range standings {
		fmt.Printf("%2d. %-24s score=%-6d w/l/t=%d/%d/%d coop=%.2f avg=%.2f\n",
			s.Rank, s.StrategyID, s.TotalScore, s.Wins, s.Losses, s.Ties, s.CooperationRate, s.AverageScore)
	}
	return nil
}

func runGenerations(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generations", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("run id is required")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	generations, ok, err := client.Generations(ctx, *runID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no generations for run: %s", *runID)
	}
	for _, g := range generations {
		fmt.Printf("gen=%-4d fitness=%.4f coop=%.2f dominant=%s\n",
			g.Index, g.AverageFitness, g.CooperationRate, g.Dominant)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind, dbPath := storeFlags(fs)
	runID := fs.String("run", "", "run id")
	outDir := fs.String("out", "", "output directory (default: exports)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return errors.New("run id is required")
	}

	client, err := newClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Export(ctx, *runID, *outDir)
	if err != nil {
		return err
	}
	fmt.Printf("exported run=%s dir=%s\n", summary.RunID, summary.Directory)
	return nil
}

func splitIDs(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
