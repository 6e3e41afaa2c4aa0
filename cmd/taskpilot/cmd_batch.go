package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"taskpilot/internal/apperror"
	"taskpilot/internal/logging"
	"taskpilot/internal/service"
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>...",
	Short: "Organize one notes file per owner concurrently",
	Long: `Each .txt or .md file is organized for the owner named by its base name
(alice.txt organizes for "alice"). Directories are scanned one level deep.

A failure for one owner is reported in that owner's result; only
configuration errors stop the whole batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&groupValue, "group", "g", "", "Group tasks by category (true/false); empty keeps each owner's preference")
}

// batchResult is one owner's outcome.
type batchResult struct {
	Owner    string            `json:"owner"`
	File     string            `json:"file"`
	Response *service.Response `json:"response,omitempty"`
	Error    string            `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	files, err := collectNotesFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return apperror.Validation("batch", "No .txt or .md notes files found.")
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	timer := logging.StartTimer(logging.CategoryCLI, "batch organize")
	defer timer.Stop()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(cfg.Organizer.BatchConcurrency)

	var mu sync.Mutex
	results := make([]batchResult, 0, len(files))

	for _, file := range files {
		g.Go(func() error {
			res := batchResult{Owner: ownerFromFile(file), File: file}

			data, err := os.ReadFile(file)
			if err != nil {
				res.Error = err.Error()
			} else {
				notes := string(data)
				req := service.OrganizeRequest{Notes: &notes}
				if groupValue != "" {
					req.GroupByCategory = groupValue
				}
				resp, err := svc.Organize(ctx, res.Owner, req)
				switch {
				case isConfigurationError(err):
					return err
				case err != nil:
					logging.Get(logging.CategoryCLI).Warnf("batch: %s failed: %v", res.Owner, err)
					res.Error = err.Error()
				default:
					res.Response = resp
				}
			}

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Owner < results[j].Owner })
	return writeJSON(cmd, results)
}

func isConfigurationError(err error) bool {
	return err != nil && apperror.KindOf(err) == apperror.KindConfiguration
}

// collectNotesFiles expands directories into their notes files.
func collectNotesFiles(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for _, e := range entries {
			if e.IsDir() || !isNotesFile(e.Name()) {
				continue
			}
			files = append(files, filepath.Join(p, e.Name()))
		}
	}
	return files, nil
}

func isNotesFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	}
	return false
}

func ownerFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
