package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mune-tada/corkboard/pkg/protocol"
)

// InboundMsg wraps a persistence push notification for the update loop.
type InboundMsg struct {
	Msg protocol.Inbound
}

// FileWatchMsg reports that the board file changed on disk.
type FileWatchMsg struct{}

// WatchErrorMsg reports a watcher failure.
type WatchErrorMsg struct {
	Err error
}

// WarnMsg surfaces a recoverable problem in the status bar.
type WarnMsg struct {
	Text string
}

// frameMsg drives drag smoothing animation.
type frameMsg time.Time

// frameInterval approximates 30fps, plenty for terminal cell resolution.
const frameInterval = 33 * time.Millisecond

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// flashClearMsg clears a transient status flash.
type flashClearMsg struct{}

func flashClear(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return flashClearMsg{}
	})
}

// Forward adapts a tea program's Send into the notification callback the
// persistence manager wants. Safe to call from any goroutine.
func Forward(send func(tea.Msg)) func(protocol.Inbound) {
	return func(msg protocol.Inbound) {
		send(InboundMsg{Msg: msg})
	}
}
