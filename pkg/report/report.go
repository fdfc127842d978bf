// Package report aggregates per-source reconciliation outcomes into
// per-group and overall summaries, and renders them for the terminal.
package report

// Status classifies what happened (or would happen) to one source.
type Status string

const (
	// Happy paths
	StatusLinked      Status = "linked"      // symlink created
	StatusImported    Status = "imported"    // first-run copy of home content into the repository
	StatusOK          Status = "ok"          // already in the desired state / verified
	StatusExtracted   Status = "extracted"   // field value captured into the repository target
	StatusInitialized Status = "initialized" // home and repository files created empty
	StatusSynced      Status = "synced"      // repository field merged into the home file
	StatusSkipped     Status = "skipped"     // not eligible on this platform
	StatusRemoved     Status = "removed"     // home symlink removed by manage remove

	// Issues
	StatusRepoFileNotFound       Status = "repo-file-not-found"
	StatusSymlinkPointsElsewhere Status = "symlink-points-elsewhere"
	StatusNotASymlink            Status = "not-a-symlink"
	StatusIncorrectTarget        Status = "incorrect-target"
	StatusMissing                Status = "missing"
	StatusBackupFailed           Status = "backup-failed"
	StatusMergeFailed            Status = "merge-failed"
	StatusLinkFailedAfterBackup  Status = "link-failed-after-backup"
	StatusWarning                Status = "warning"
)

// IsIssue reports whether the status counts against the run's exit code.
func (s Status) IsIssue() bool {
	switch s {
	case StatusRepoFileNotFound, StatusSymlinkPointsElsewhere, StatusNotASymlink,
		StatusIncorrectTarget, StatusMissing, StatusBackupFailed,
		StatusMergeFailed, StatusLinkFailedAfterBackup, StatusWarning:
		return true
	}
	return false
}

// Outcome records what happened to a single source.
type Outcome struct {
	Group  string
	Path   string
	Status Status
	Detail string
	Err    error

	// DryRun marks outcomes describing actions that were only
	// classified, not performed.
	DryRun bool
}

// Summary accumulates outcomes across a whole run, preserving order.
type Summary struct {
	Outcomes []Outcome
}

// NewSummary creates an empty summary.
func NewSummary() *Summary {
	return &Summary{}
}

// Add appends an outcome.
func (s *Summary) Add(o Outcome) {
	s.Outcomes = append(s.Outcomes, o)
}

// GroupNames returns group names in first-seen order.
func (s *Summary) GroupNames() []string {
	var names []string
	seen := make(map[string]bool)
	for _, o := range s.Outcomes {
		if !seen[o.Group] {
			seen[o.Group] = true
			names = append(names, o.Group)
		}
	}
	return names
}

// ForGroup returns the outcomes recorded for one group.
func (s *Summary) ForGroup(name string) []Outcome {
	var out []Outcome
	for _, o := range s.Outcomes {
		if o.Group == name {
			out = append(out, o)
		}
	}
	return out
}

// IssueCount returns how many outcomes are issues.
func (s *Summary) IssueCount() int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status.IsIssue() {
			n++
		}
	}
	return n
}

// HasIssues reports whether any outcome is an issue; it drives the
// process exit code.
func (s *Summary) HasIssues() bool {
	return s.IssueCount() > 0
}
