//go:build !linux

package heartbeat

import "errors"

// LinePin is not available on non-Linux platforms.
type LinePin struct{}

// NewLinePin returns an error on non-Linux platforms.
func NewLinePin(chip string, offset int) (*LinePin, error) {
	return nil, errors.New("heartbeat: gpio not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (p *LinePin) Set(bool) error {
	return errors.New("heartbeat: gpio not supported")
}

// Close is not implemented on non-Linux platforms.
func (p *LinePin) Close() error {
	return nil
}
