// Package report writes temperature lines to the serial link and reads them back.
package report

import (
	"io"
	"log"
	"sync/atomic"

	"github.com/itohio/tivatemp/pkg/report/line"
	"github.com/itohio/tivatemp/pkg/temperature"
)

// Reporter writes report lines to an output. Writes are fire-and-forget: a
// failed write is logged and counted, never retried.
type Reporter struct {
	out     io.Writer
	written atomic.Uint64
	failed  atomic.Uint64
}

// New creates a reporter writing to out.
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Report writes one line for r.
func (p *Reporter) Report(r temperature.Reading) {
	if _, err := io.WriteString(p.out, line.Format(r)); err != nil {
		p.failed.Add(1)
		log.Printf("Failed to write report: %v", err)
		return
	}
	p.written.Add(1)
}

// Written returns the number of lines written successfully.
func (p *Reporter) Written() uint64 {
	return p.written.Load()
}

// Failed returns the number of lines lost to write errors.
func (p *Reporter) Failed() uint64 {
	return p.failed.Load()
}
