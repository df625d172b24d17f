//go:build linux

package heartbeat

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

var _ Pin = (*LinePin)(nil)

// LinePin drives a GPIO line through the Linux GPIO character device.
type LinePin struct {
	line *gpiocdev.Line
}

// NewLinePin requests offset on chip as an output, initially low.
func NewLinePin(chip string, offset int) (*LinePin, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(0),
		gpiocdev.WithConsumer("tivatemp-heartbeat"))
	if err != nil {
		return nil, fmt.Errorf("request %s line %d: %w", chip, offset, err)
	}
	return &LinePin{line: line}, nil
}

// Set drives the line.
func (p *LinePin) Set(level bool) error {
	v := 0
	if level {
		v = 1
	}
	return p.line.SetValue(v)
}

// Close reconfigures the line as an input before releasing it, so the LED
// is not left driven.
func (p *LinePin) Close() error {
	var errs []error
	if err := p.line.Reconfigure(gpiocdev.AsInput); err != nil {
		errs = append(errs, fmt.Errorf("reconfigure line: %w", err))
	}
	if err := p.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close line: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
