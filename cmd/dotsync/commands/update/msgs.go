package update

// Message constants
const (
	MsgShort = "Pull the repository and verify every configured symlink"
	MsgLong  = `Update pulls the dotfiles repository (unless --skip-pull), then
verifies that every eligible source's home path is a symlink to the
expected repository location. Extracted JSON fields are re-synced from
the repository into their home files; the repository is authoritative
for tracked fields. Old backups are pruned at the end of the run.

A dirty working tree aborts the run unless --force is given.`
	MsgExample = `  dotsync update
  dotsync update --dry-run
  dotsync update --skip-pull --force`
)
