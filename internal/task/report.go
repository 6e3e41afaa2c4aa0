package task

// ReportItem is one task line fed into a team status report.
type ReportItem struct {
	Title    string `json:"title"`
	Details  string `json:"details"`
	Comments string `json:"developerNotes"`
}

// StatusItem is one task fed into a per-task status update.
type StatusItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	HoursSpent  string `json:"hoursSpent"`
}
