package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"taskpilot/internal/apperror"
	"taskpilot/internal/config"
	"taskpilot/internal/llm"
	"taskpilot/internal/logging"
	"taskpilot/internal/organizer"
	"taskpilot/internal/service"
	"taskpilot/internal/store"
)

var (
	// Global flags
	configPath   string
	dbPath       string
	owner        string
	providerFlag string
	verbose      bool

	// Loaded in PersistentPreRunE
	cfg *config.Config

	// Shared by every orchestrator this process creates.
	backendCache = llm.NewCache(nil)
)

var _ service.Repository = (*store.TaskStore)(nil)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "taskpilot",
	Short: "Turn free-form notes into prioritized, scheduled tasks",
	Long: `taskpilot converts pasted notes into structured tasks (title, priority,
category, status) using either a remote model or a built-in heuristic,
stores them per owner in SQLite and plans them into morning, afternoon
and anytime slots.

All command output is JSON on stdout; logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultConfigFile
		}
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if providerFlag != "" {
			loaded.LLM.Provider = providerFlag
		}
		if dbPath != "" {
			loaded.Store.DatabasePath = dbPath
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		opts := logging.Options{
			Level:      loaded.Logging.Level,
			Format:     loaded.Logging.Format,
			Categories: loaded.Logging.Categories,
		}
		if verbose {
			opts.Level = "debug"
		}
		if err := logging.Initialize(opts); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg = loaded
		logging.BootDebug("config loaded from %s: provider=%s db=%s", path, cfg.LLM.ResolveProvider(), cfg.Store.DatabasePath)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ./taskpilot.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config and TASKPILOT_DB)")
	rootCmd.PersistentFlags().StringVarP(&owner, "owner", "o", "default", "Owner whose tasks are read and replaced")
	rootCmd.PersistentFlags().StringVarP(&providerFlag, "provider", "p", "", "Model provider: openai, gemini or mock")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(organizeCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(titleCmd)
	rootCmd.AddCommand(statusReportCmd)
	rootCmd.AddCommand(taskStatusCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return 2
	case apperror.KindPayloadTooLarge:
		return 3
	case apperror.KindConfiguration:
		return 4
	case apperror.KindProvider:
		return 5
	case apperror.KindNotFound:
		return 6
	default:
		return 1
	}
}

func newOrchestrator() *organizer.Orchestrator {
	return organizer.New(cfg, organizer.WithCache(backendCache))
}

// openService opens the configured store. Callers close the store.
func openService() (*service.Service, *store.TaskStore, error) {
	st, err := store.NewTaskStore(cfg.Store.DatabasePath, cfg.GetBusyTimeout())
	if err != nil {
		return nil, nil, err
	}
	return service.New(st, newOrchestrator()), st, nil
}
