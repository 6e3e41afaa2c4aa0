package main

import (
	"strings"

	"github.com/spf13/cobra"

	"taskpilot/internal/planner"
	"taskpilot/internal/service"
	"taskpilot/internal/task"
)

var (
	// organize flags
	notesFile  string
	groupValue string

	// tasks add/update flags
	taskTitle         string
	taskDetails       string
	taskCategory      string
	taskPriority      string
	taskStatus        string
	taskNotes         []string
	taskTimeLog       string
	taskHoursSpent    string
	taskStatusSummary string
)

var organizeCmd = &cobra.Command{
	Use:   "organize [notes...]",
	Short: "Organize notes into tasks and replace the owner's task list",
	Long: `Turns free-form notes into structured tasks and replaces the owner's
stored tasks with the result. Notes come from the arguments, --file, or
stdin (in that order).

The --group flag accepts true/false, yes/no, on/off or 1/0. Anything else
keeps the owner's stored preference.`,
	RunE: runOrganize,
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect and edit the owner's stored tasks",
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tasks with stats and schedule",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task manually",
	Args:  cobra.NoArgs,
	RunE:  runTasksAdd,
}

var tasksUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of a stored task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksUpdate,
}

var tasksDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a stored task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTasksDelete,
}

var tasksClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all of the owner's tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksClear,
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Show the day plan for the owner's open tasks",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func init() {
	organizeCmd.Flags().StringVarP(&notesFile, "file", "f", "", "Read notes from a file (- for stdin)")
	organizeCmd.Flags().StringVarP(&groupValue, "group", "g", "", "Group tasks by category (true/false); empty keeps the stored preference")

	for _, c := range []*cobra.Command{tasksAddCmd, tasksUpdateCmd} {
		c.Flags().StringVar(&taskTitle, "title", "", "Task title")
		c.Flags().StringVar(&taskDetails, "details", "", "Task details")
		c.Flags().StringVar(&taskCategory, "category", "", "Task category")
		c.Flags().StringVar(&taskPriority, "priority", "", "Priority: high, medium or low")
		c.Flags().StringVar(&taskStatus, "status", "", "Status: todo, in progress or completed")
		c.Flags().StringSliceVar(&taskNotes, "note", nil, "Task note (repeatable)")
		c.Flags().StringVar(&taskTimeLog, "time-log", "", "Time log")
		c.Flags().StringVar(&taskHoursSpent, "hours", "", "Hours spent")
		c.Flags().StringVar(&taskStatusSummary, "summary", "", "Status summary")
	}

	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksAddCmd)
	tasksCmd.AddCommand(tasksUpdateCmd)
	tasksCmd.AddCommand(tasksDeleteCmd)
	tasksCmd.AddCommand(tasksClearCmd)
}

func runOrganize(cmd *cobra.Command, args []string) error {
	notes, err := readInput(cmd, notesFile, strings.Join(args, "\n"))
	if err != nil {
		return err
	}

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	req := service.OrganizeRequest{Notes: &notes}
	if groupValue != "" {
		req.GroupByCategory = groupValue
	}

	resp, err := svc.Organize(cmd.Context(), owner, req)
	if err != nil {
		return err
	}
	return writeJSON(cmd, resp)
}

func runTasksList(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	resp, err := svc.Fetch(cmd.Context(), owner)
	if err != nil {
		return err
	}
	return writeJSON(cmd, resp)
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	created, err := svc.CreateTask(cmd.Context(), owner, task.Task{
		Title:         taskTitle,
		Details:       taskDetails,
		Category:      taskCategory,
		Priority:      task.Priority(taskPriority),
		Status:        task.Status(taskStatus),
		Notes:         taskNotes,
		TimeLog:       taskTimeLog,
		HoursSpent:    taskHoursSpent,
		StatusSummary: taskStatusSummary,
	})
	if err != nil {
		return err
	}
	return writeJSON(cmd, created)
}

func runTasksUpdate(cmd *cobra.Command, args []string) error {
	patch := patchFromFlags(cmd)

	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	updated, err := svc.UpdateTask(cmd.Context(), owner, args[0], patch)
	if err != nil {
		return err
	}
	return writeJSON(cmd, updated)
}

// patchFromFlags only sets the fields whose flags were given.
func patchFromFlags(cmd *cobra.Command) task.Patch {
	var p task.Patch
	flags := cmd.Flags()
	set := func(name string, value string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v := value
		return &v
	}
	p.Title = set("title", taskTitle)
	p.Details = set("details", taskDetails)
	p.Category = set("category", taskCategory)
	p.Priority = set("priority", taskPriority)
	p.Status = set("status", taskStatus)
	p.TimeLog = set("time-log", taskTimeLog)
	p.HoursSpent = set("hours", taskHoursSpent)
	p.StatusSummary = set("summary", taskStatusSummary)
	if flags.Changed("note") {
		notes := append([]string(nil), taskNotes...)
		p.Notes = &notes
	}
	return p
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.DeleteTask(cmd.Context(), owner, args[0]); err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{"deleted": args[0]})
}

func runTasksClear(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := svc.ClearTasks(cmd.Context(), owner); err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{"cleared": owner})
}

// scheduleView is the schedule command's output.
type scheduleView struct {
	Owner    string           `json:"owner"`
	Stats    planner.Stats    `json:"stats"`
	Schedule planner.Schedule `json:"schedule"`
}

func runSchedule(cmd *cobra.Command, args []string) error {
	svc, st, err := openService()
	if err != nil {
		return err
	}
	defer st.Close()

	resp, err := svc.Fetch(cmd.Context(), owner)
	if err != nil {
		return err
	}
	return writeJSON(cmd, scheduleView{Owner: owner, Stats: resp.Stats, Schedule: resp.Schedule})
}
