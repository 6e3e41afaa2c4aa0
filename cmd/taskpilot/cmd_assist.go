package main

import (
	"github.com/spf13/cobra"

	"taskpilot/internal/organizer"
)

var (
	titleText    string
	titleDetails string
	inputFile    string
)

var titleCmd = &cobra.Command{
	Use:   "title",
	Short: "Suggest a short title for a task",
	Args:  cobra.NoArgs,
	RunE:  runTitle,
}

var statusReportCmd = &cobra.Command{
	Use:   "status-report",
	Short: "Write a team status report from completed and in-progress tasks",
	Long: `Reads {"completed": [...], "inProgress": [...]} from --file or stdin.
Each item has title, details and developerNotes.`,
	Args: cobra.NoArgs,
	RunE: runStatusReport,
}

var taskStatusCmd = &cobra.Command{
	Use:   "task-status",
	Short: "Write a one-line status update per task",
	Long: `Reads {"tasks": [...]} from --file or stdin. Each task has a title
and optionally description (or details) and hoursSpent (or timeLog, hours).`,
	Args: cobra.NoArgs,
	RunE: runTaskStatus,
}

func init() {
	titleCmd.Flags().StringVar(&titleText, "title", "", "Current title")
	titleCmd.Flags().StringVar(&titleDetails, "details", "", "Task details")

	statusReportCmd.Flags().StringVarP(&inputFile, "file", "f", "", "JSON input file (default: stdin)")
	taskStatusCmd.Flags().StringVarP(&inputFile, "file", "f", "", "JSON input file (default: stdin)")
}

func runTitle(cmd *cobra.Command, args []string) error {
	res, err := newOrchestrator().SuggestTitle(cmd.Context(), organizer.TitleRequest{
		Title:   titleText,
		Details: titleDetails,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd, res)
}

func runStatusReport(cmd *cobra.Command, args []string) error {
	var req organizer.StatusReportRequest
	if err := decodeInput(cmd, inputFile, &req); err != nil {
		return err
	}

	res, err := newOrchestrator().StatusReport(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeJSON(cmd, res)
}

func runTaskStatus(cmd *cobra.Command, args []string) error {
	var req organizer.TaskStatusRequest
	if err := decodeInput(cmd, inputFile, &req); err != nil {
		return err
	}

	res, err := newOrchestrator().TaskStatuses(cmd.Context(), req)
	if err != nil {
		return err
	}
	return writeJSON(cmd, res)
}
