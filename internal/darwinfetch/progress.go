package darwinfetch

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// newProgressReporter returns a ProgressFunc that drives a terminal progress
// bar for one file, plus a finish func to call when the transfer ends. When
// stdout is not a terminal the reporter only logs at debug level.
func newProgressReporter(label string) (ProgressFunc, func()) {
	if !isTerminal(os.Stdout) {
		var last int64
		return func(transferred, total int64) {
				// log roughly every 8 MiB to keep piped output short
				if transferred-last >= 8<<20 {
					last = transferred
					debugf("%s: %s of %s\n", label, humanBytes(transferred), totalLabel(total))
				}
			}, func() {
				debugf("%s: done\n", label)
			}
	}

	var bar *progressbar.ProgressBar
	return func(transferred, total int64) {
			if bar == nil {
				bar = progressbar.NewOptions64(total,
					progressbar.OptionSetDescription(label),
					progressbar.OptionSetWriter(os.Stderr),
					progressbar.OptionShowBytes(true),
					progressbar.OptionSetWidth(30),
					progressbar.OptionThrottle(100*time.Millisecond),
					progressbar.OptionShowCount(),
					progressbar.OptionOnCompletion(func() { os.Stderr.WriteString("\n") }),
					progressbar.OptionSpinnerType(14),
				)
			}
			_ = bar.Set64(transferred)
		}, func() {
			if bar != nil {
				_ = bar.Finish()
			}
		}
}

func totalLabel(total int64) string {
	if total < 0 {
		return "unknown"
	}
	return humanBytes(total)
}
