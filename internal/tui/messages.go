package tui

import "github.com/Veraticus/climbr/internal/session"

// snapshotMsg carries a session change into the program.
type snapshotMsg struct {
	snapshot session.Snapshot
}

type savedMsg struct {
	err  error
	path string
}

type copiedMsg struct {
	err error
}

type retryMsg struct {
	err error
}
