package manage

// Message constants
const (
	MsgShort = "Add, remove, and list configuration groups"

	MsgAddShort = "Add a group from existing home paths"
	MsgAddLong  = `Add creates a new configuration group from one or more home paths.
Each path is classified as a file or directory by its current state on
disk. Content is copied into the repository immediately, except for
paths with an --extract spec, which populate on the next install.

Repeated --extract flags pair with the path arguments in order: the
first --extract applies to the first path, and so on.`
	MsgAddExample = `  dotsync manage add vim ~/.vimrc ~/.vim
  dotsync manage add claude ~/.claude.json --extract mcpServers:mcp.json
  dotsync manage add shell ~/.bashrc --platform linux,wsl`

	MsgRemoveShort = "Remove a group, archiving its repository content"
	MsgRemoveLong  = `Remove deletes a group from the manifest. Home paths that are
symlinks are removed; anything else is left untouched with a warning.
The group's repository subtree is archived under backups/ before
deletion; that archive is the only recovery path.`

	MsgListShort = "List configured groups"

	MsgInitConfigShort = "Write a starter .dotsync.toml with the effective settings"
)
