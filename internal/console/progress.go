package console

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Progress wraps a single mpb bar, grounded on the teacher's
// github.com/nabbar/golib/semaphore/nobar model: Inc(n) advances it and
// Current() reports the running count, but backed directly by
// github.com/vbauerster/mpb/v8 instead of the teacher's pluggable
// "nobar vs real bar" model, since this CLI always wants a visible bar when
// attached to a terminal.
type Progress struct {
	container *mpb.Progress
	bar       *mpb.Bar
}

// NewProgress creates a bar with the given total unit count, labeled name,
// writing to w.
func NewProgress(w io.Writer, name string, total int) *Progress {
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DindentRight}),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.AverageETA(decor.ET_STYLE_GO),
		),
	)
	return &Progress{container: p, bar: bar}
}

// Inc advances the bar by n completed units.
func (p *Progress) Inc(n int) { p.bar.IncrBy(n) }

// Current reports the bar's running count.
func (p *Progress) Current() int64 { return p.bar.Current() }

// Wait blocks until the bar's render goroutine drains, matching mpb's
// shutdown contract.
func (p *Progress) Wait() { p.container.Wait() }
