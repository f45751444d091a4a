package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"clerk/internal/organize"
)

// consoleObserver prints run messages to out. When progress goes to a
// terminal, per-file "Processing" lines become the bar's description
// instead of scrolling the screen.
type consoleObserver struct {
	out      io.Writer
	colorize bool

	progress io.Writer
	bar      *progressbar.ProgressBar
	max      int
}

func newConsoleObserver(out, progress io.Writer) *consoleObserver {
	o := &consoleObserver{out: out, colorize: shouldColorize(out)}
	if isTerminal(progress) {
		o.progress = progress
	}
	return o
}

func (o *consoleObserver) OnLog(message string, category organize.Category) {
	if o.bar != nil {
		if category == organize.CategoryFile {
			o.bar.Describe(message)
			return
		}
		_ = o.bar.Clear()
	}
	line := message
	if o.colorize {
		if color := categoryColor(category); color != "" {
			line = color + message + ansiReset
		}
	}
	fmt.Fprintln(o.out, line)
}

func (o *consoleObserver) OnProgress(done, total int) {
	if o.progress == nil || total <= 0 {
		return
	}
	if o.bar == nil {
		o.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(o.progress),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionFullWidth(),
		)
		o.max = total
	} else if o.max != total {
		o.bar.ChangeMax(total)
		o.max = total
	}
	_ = o.bar.Set(done)
}

// finish removes the bar so the next batch starts a fresh one.
func (o *consoleObserver) finish() {
	if o.bar == nil {
		return
	}
	_ = o.bar.Finish()
	o.bar = nil
}
