package tindex

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/term"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// NewProgressBar initializes a wrapper around a https://github.com/cheggaaa/pb
// progress bar that implements tindex.ProgressBar. Falls back to
// NullProgressBar when stderr isn't a terminal and none of the opt-in
// environment variables are set.
func NewProgressBar(prefix string) ProgressBar {
	if !term.IsTerminal(int(os.Stderr.Fd())) &&
		os.Getenv("TINDEX_PROGRESSBAR_ENABLED") == "" &&
		os.Getenv("TINDEX_ENABLE_PARSABLE_PROGRESS") == "" {
		return NullProgressBar{}
	}
	bar := pb.New(0).Prefix(prefix)
	bar.ShowCounters = false
	bar.Output = os.Stderr
	if os.Getenv("TINDEX_ENABLE_PARSABLE_PROGRESS") != "" {
		// Likely going to a journal or redirected to a file, lower the
		// refresh rate from the default 200ms to a more manageable 500ms.
		bar.SetRefreshRate(time.Millisecond * 500)
		bar.ShowBar = false
		// Write every progress update on its own line instead of using
		// carriage returns.
		bar.Callback = func(s string) { fmt.Fprintln(os.Stderr, s) }
		bar.Output = nil
	}
	return DefaultProgressBar{bar}
}

// DefaultProgressBar wraps https://github.com/cheggaaa/pb and implements tindex.ProgressBar
type DefaultProgressBar struct {
	*pb.ProgressBar
}

// SetTotal sets the upper bound for the progress bar, in bytes of input.
func (p DefaultProgressBar) SetTotal(total int) {
	p.ProgressBar.SetTotal(total)
}

// Start displaying the progress bar.
func (p DefaultProgressBar) Start() {
	p.ProgressBar.Start()
}

// Set the current value, in bytes of input consumed.
func (p DefaultProgressBar) Set(current int) {
	p.ProgressBar.Set(current)
}

// Prefix replaces the text shown ahead of the bar.
func (p DefaultProgressBar) Prefix(s string) ProgressBar {
	p.ProgressBar.Prefix(s)
	return p
}
