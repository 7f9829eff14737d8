package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Spinner is an indeterminate progress indicator for a single long call.
type Spinner struct {
	bar *progressbar.ProgressBar
}

// NewSpinner starts a spinner on w with the given description.
func NewSpinner(w io.Writer, description string) *Spinner {
	if w == nil {
		w = os.Stderr
	}
	return &Spinner{
		bar: progressbar.NewOptions(-1,
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(true),
			progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
			progressbar.OptionClearOnFinish(),
		),
	}
}

// Tick advances the spinner animation.
func (s *Spinner) Tick() {
	_ = s.bar.Add(1)
}

// Stop clears the spinner.
func (s *Spinner) Stop() {
	if err := s.bar.Finish(); err != nil {
		slog.Debug("Failed to finish spinner", "error", err)
	}
}
