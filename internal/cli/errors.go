package cli

import "errors"

// ErrIssuesFound signals that the run completed but some sources had
// issues; main exits 1 without printing an extra message, since the
// summary already names every issue.
var ErrIssuesFound = errors.New("issues found")
