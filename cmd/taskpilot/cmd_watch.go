package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskpilot/internal/logging"
	"taskpilot/internal/service"
	"taskpilot/internal/watch"
)

var (
	watchDebounce time.Duration
	watchDuration time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <notes-file>",
	Short: "Re-organize a notes file every time it is saved",
	Long: `Organizes the file once, then again after every settled edit. Each run
replaces the owner's tasks and prints the response as one JSON document.
Stops on Ctrl+C or after --duration.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before re-organizing")
	watchCmd.Flags().DurationVar(&watchDuration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	watchCmd.Flags().StringVarP(&groupValue, "group", "g", "", "Group tasks by category (true/false); empty keeps the stored preference")
}

func runWatch(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if watchDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchDuration)
		defer cancel()
	}

	organize := func(ctx context.Context, notes string) error {
		req := service.OrganizeRequest{Notes: &notes}
		if groupValue != "" {
			req.GroupByCategory = groupValue
		}
		resp, err := svc.Organize(ctx, owner, req)
		if err != nil {
			return err
		}
		return writeJSON(cmd, resp)
	}

	w, err := watch.NewNotesWatcher(args[0], watchDebounce, organize)
	if err != nil {
		return err
	}

	// An empty or missing file is not an error at startup; the first save
	// triggers the handler.
	if data, err := os.ReadFile(w.Path()); err == nil {
		if err := organize(ctx, string(data)); err != nil {
			logging.Get(logging.CategoryCLI).Warnf("initial organize of %s failed: %v", w.Path(), err)
		}
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	logging.Get(logging.CategoryCLI).Infof("watching %s for owner %s", w.Path(), owner)
	<-ctx.Done()

	stats := w.Stats()
	logging.Get(logging.CategoryCLI).Infof("watch finished: %d events, %d runs, %d errors", stats.Events, stats.HandlerRuns, stats.Errors)
	return nil
}
