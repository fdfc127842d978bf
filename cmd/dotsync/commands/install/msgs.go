package install

// Message constants
const (
	MsgShort = "Link every configured source into the home directory"
	MsgLong  = `Install runs the reconciliation pass over all groups in the manifest.

For each eligible source, content present in the home directory but not
yet in the repository is imported first (one time only), then the home
path is replaced with a symlink into the repository. Files and symlinks
dotsync did not create are never overwritten; anything removed is backed
up first.`
	MsgExample = `  dotsync install
  dotsync --root ~/dotfiles install
  dotsync --dry-run install`
)
