// Package line holds the report line layout shared by the host tool and the
// device firmware. It has no serial port dependency.
package line

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/itohio/tivatemp/pkg/temperature"
)

// Layout is the report line. Lines end in a bare carriage return.
const Layout = "Temperature = %3d*C or %3d*F\r"

// Format renders a reading as one report line.
func Format(r temperature.Reading) string {
	return fmt.Sprintf(Layout, r.Celsius, r.Fahrenheit)
}

// Parse parses a report line into a reading. Surrounding whitespace,
// including the terminating carriage return, is ignored.
// Format: Temperature = CCC*C or FFF*F
func Parse(s string) (temperature.Reading, error) {
	s = strings.TrimSpace(s)

	rest, ok := strings.CutPrefix(s, "Temperature =")
	if !ok {
		return temperature.Reading{}, fmt.Errorf("invalid line format: missing prefix")
	}

	cPart, fPart, ok := strings.Cut(rest, " or ")
	if !ok {
		return temperature.Reading{}, fmt.Errorf("invalid line format: missing separator")
	}

	celsius, err := parseValue(cPart, "*C")
	if err != nil {
		return temperature.Reading{}, fmt.Errorf("invalid celsius: %w", err)
	}

	fahrenheit, err := parseValue(fPart, "*F")
	if err != nil {
		return temperature.Reading{}, fmt.Errorf("invalid fahrenheit: %w", err)
	}

	return temperature.Reading{Celsius: celsius, Fahrenheit: fahrenheit}, nil
}

func parseValue(s, unit string) (int, error) {
	num, ok := strings.CutSuffix(strings.TrimSpace(s), unit)
	if !ok {
		return 0, fmt.Errorf("missing unit %q", unit)
	}
	return strconv.Atoi(strings.TrimSpace(num))
}
