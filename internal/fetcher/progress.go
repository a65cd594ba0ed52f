package fetcher

import (
	"fmt"
	"io"
	"time"

	"github.com/hkdywg/toolfetch/internal/output"
	"github.com/hkdywg/toolfetch/internal/utils"
)

// DownloadState is the running tally for one transfer. TotalBytes is -1
// when the server did not declare a size.
type DownloadState struct {
	BytesWritten      int64
	TotalBytes        int64
	LastReport        time.Time
	BytesAtLastReport int64
}

// Percent is not clamped: a lying Content-Length can push it past 100.
// A declared size of zero is a complete empty body.
func (s *DownloadState) Percent() (float64, bool) {
	if s.TotalBytes < 0 {
		return 0, false
	}
	if s.TotalBytes == 0 {
		return 100, true
	}
	return float64(s.BytesWritten) / float64(s.TotalBytes) * 100, true
}

// Throughput is MiB/s since the last report, over the real elapsed time.
func (s *DownloadState) Throughput(now time.Time) float64 {
	return utils.MiBPerSecond(s.BytesWritten-s.BytesAtLastReport, now.Sub(s.LastReport).Seconds())
}

type progressReporter struct {
	name     string
	out      io.Writer
	interval time.Duration
	now      func() time.Time
	state    DownloadState
}

func newProgressReporter(name string, out io.Writer, interval time.Duration, total int64) *progressReporter {
	if out == nil {
		out = io.Discard
	}
	if interval <= 0 {
		interval = utils.DefaultReportInterval
	}
	p := &progressReporter{
		name:     name,
		out:      out,
		interval: interval,
		now:      time.Now,
	}
	p.state.TotalBytes = total
	p.state.LastReport = p.now()
	return p
}

// Add records n freshly written bytes and reports when the interval has
// elapsed. It runs on the copying goroutine; there is no timer.
func (p *progressReporter) Add(n int) {
	p.state.BytesWritten += int64(n)
	now := p.now()
	if now.Sub(p.state.LastReport) >= p.interval {
		p.report(now)
	}
}

func (p *progressReporter) report(now time.Time) {
	percent, ok := p.state.Percent()
	speed := p.state.Throughput(now)
	fmt.Fprint(p.out, "\r"+output.ProgressLine(p.name, percent, ok, speed, p.state.BytesWritten))
	p.state.BytesAtLastReport = p.state.BytesWritten
	p.state.LastReport = now
}

func (p *progressReporter) Finish() {
	p.report(p.now())
	fmt.Fprintln(p.out)
}

func (p *progressReporter) State() DownloadState {
	return p.state
}
