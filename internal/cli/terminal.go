package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/vijay-prabhu/feedrank/internal/reader"
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiWhite  = "\033[37m"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// updateProgress reports feed update progress. On a terminal a single
// coloured line is redrawn in place; elsewhere one line is written per
// stored feed so logs and pipes stay readable.
type updateProgress struct {
	out   io.Writer
	live  bool
	frame int
}

// newUpdateProgress reports to stdout, redrawing only when it is a terminal
func newUpdateProgress() *updateProgress {
	return &updateProgress{
		out:  os.Stdout,
		live: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// Report renders one progress callback from Reader.UpdateAll
func (u *updateProgress) Report(p reader.Progress) {
	u.clear()

	switch {
	case u.live:
		fmt.Fprint(u.out, u.paint(phaseColor(p.Phase), u.describe(p)))
	case p.Phase == reader.PhaseStoring:
		fmt.Fprintln(u.out, u.describe(p))
	}
}

// Done erases the live line before the summary is printed
func (u *updateProgress) Done() {
	u.clear()
}

// Warn highlights the per-feed failure count
func (u *updateProgress) Warn(msg string) string {
	return u.paint(ansiYellow, msg)
}

func (u *updateProgress) describe(p reader.Progress) string {
	switch p.Phase {
	case reader.PhaseFetching:
		msg := fmt.Sprintf("Fetching %s: %d/%d feeds", p.Description, p.Current+1, p.Total)
		if u.live {
			msg = u.spin() + " " + msg
		}
		return msg
	case reader.PhaseStoring:
		msg := fmt.Sprintf("Updated %d/%d feeds (%d%%)", p.Current, p.Total, p.Percentage())
		if eta := FormatETA(p.ETA()); eta != "" {
			msg += fmt.Sprintf(" (ETA: %s)", eta)
		}
		return msg
	default:
		return string(p.Phase)
	}
}

func (u *updateProgress) clear() {
	if u.live {
		fmt.Fprint(u.out, "\r\033[K")
	}
}

func (u *updateProgress) spin() string {
	frame := spinnerFrames[u.frame]
	u.frame = (u.frame + 1) % len(spinnerFrames)
	return frame
}

func (u *updateProgress) paint(color, text string) string {
	if !u.live {
		return text
	}
	return color + text + ansiReset
}

func phaseColor(phase reader.ProgressPhase) string {
	switch phase {
	case reader.PhaseFetching:
		return ansiBlue
	case reader.PhaseStoring:
		return ansiGreen
	default:
		return ansiWhite
	}
}

// FormatETA formats the time left in an update run, or "" when unknown
func FormatETA(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	d = d.Round(time.Second)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		m, s := int(d.Minutes()), int(d.Seconds())%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
