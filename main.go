package main

import (
	"fmt"
	"os"
	"time"

	"github.com/muesli/termenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sparseplan/engine"
	"sparseplan/pdo"
	"sparseplan/planning"
	"sparseplan/searcher"
)

// Config holds the search knobs, overridable via a YAML file and flags.
type Config struct {
	Horizon     int           `yaml:"horizon"`
	Iterations  int           `yaml:"iterations"`
	Timeout     time.Duration `yaml:"timeout"`
	Discounting float64       `yaml:"discounting"`
	Seed        uint64        `yaml:"seed"`
	MaxSteps    int           `yaml:"maxSteps"`
}

func defaultConfig() Config {
	return Config{
		Horizon:     50,
		Timeout:     50 * time.Millisecond,
		Discounting: searcher.DefaultDiscounting,
		MaxSteps:    engine.DefaultMaxSteps,
	}
}

var (
	config     = defaultConfig()
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "sparseplan",
	Short: "Decision-theoretic planner for probabilistic domains",
	Long: "sparseplan reads a probabilistic domain description and plans with " +
		"Monte-Carlo Tree Search, choosing at every step the action most " +
		"likely to maximize the discounted cumulative reward.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		if configPath == "" {
			return nil
		}
		raw, err := os.ReadFile(configPath)
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		fileConfig := defaultConfig()
		if err := yaml.Unmarshal(raw, &fileConfig); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		// Explicit flags win over the config file
		fromFile := func(flag string, apply func()) {
			if !cmd.Flags().Changed(flag) {
				apply()
			}
		}
		fromFile("horizon", func() { config.Horizon = fileConfig.Horizon })
		fromFile("iterations", func() { config.Iterations = fileConfig.Iterations })
		fromFile("timeout", func() { config.Timeout = fileConfig.Timeout })
		fromFile("discounting", func() { config.Discounting = fileConfig.Discounting })
		fromFile("seed", func() { config.Seed = fileConfig.Seed })
		fromFile("max-steps", func() { config.MaxSteps = fileConfig.MaxSteps })
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show FILE",
	Short: "Print the parsed problem description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		problem, err := loadProblem(args[0])
		if err != nil {
			return err
		}
		fmt.Print(problem)
		return nil
	},
}

var solveCmd = &cobra.Command{
	Use:   "solve FILE",
	Short: "Plan from the initial state until the goal is reached",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		problem, err := loadProblem(args[0])
		if err != nil {
			return err
		}

		e := engine.New(problem, newMCTS(), newBudget(), engine.WithMaxSteps(config.MaxSteps))
		plan, err := e.Run()
		printPlan(plan)
		return err
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree FILE",
	Short: "Run a single search and dump its tree as Graphviz DOT",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		problem, err := loadProblem(args[0])
		if err != nil {
			return err
		}

		result := newMCTS().Search(problem.Init, problem, newBudget())
		if result.Action != nil {
			log.Info().Str("action", result.Action.Name).Msg("best root action")
		}
		return result.Root.WriteGraphviz(cmd.OutOrStdout())
	},
}

func loadProblem(path string) (*planning.Problem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading domain: %w", err)
	}
	return pdo.Parse(string(raw))
}

func newMCTS() *searcher.MCTS {
	options := []searcher.Option{
		searcher.WithDiscounting(config.Discounting),
		searcher.WithMetrics(),
	}
	if config.Seed != 0 {
		options = append(options, searcher.WithSeed(config.Seed))
	}
	return searcher.New(config.Horizon, options...)
}

func newBudget() searcher.Budget {
	if config.Iterations > 0 {
		return searcher.MaxIterations(config.Iterations)
	}
	return searcher.Timeout(config.Timeout)
}

func printPlan(plan engine.Plan) {
	out := termenv.NewOutput(os.Stdout)
	for i, step := range plan.Steps {
		fmt.Printf("%3d. %s -> %s\n", i+1,
			out.String(step.Action.Name).Foreground(out.Color("6")),
			step.State)
	}
	summary := out.String(fmt.Sprintf("no goal, reward %0.2f", plan.Reward)).Foreground(out.Color("1"))
	if plan.GoalReached {
		summary = out.String(fmt.Sprintf("goal reached in %d steps, reward %0.2f",
			len(plan.Steps), plan.Reward)).Foreground(out.Color("2"))
	}
	fmt.Println(summary)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every search phase")

	for _, cmd := range []*cobra.Command{solveCmd, treeCmd} {
		cmd.Flags().IntVar(&config.Horizon, "horizon", config.Horizon, "maximum lookahead depth per search")
		cmd.Flags().IntVar(&config.Iterations, "iterations", config.Iterations, "iteration budget per search (overrides --timeout)")
		cmd.Flags().DurationVar(&config.Timeout, "timeout", config.Timeout, "time budget per search")
		cmd.Flags().Float64Var(&config.Discounting, "discounting", config.Discounting, "reward discounting factor")
		cmd.Flags().Uint64Var(&config.Seed, "seed", config.Seed, "random seed for the search policies")
	}
	solveCmd.Flags().IntVar(&config.MaxSteps, "max-steps", config.MaxSteps, "step cap per episode")

	rootCmd.AddCommand(showCmd, solveCmd, treeCmd)
}
