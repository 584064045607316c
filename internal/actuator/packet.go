// Package actuator delivers actions to robots: over a serial radio link,
// or to a log when no hardware is attached.
package actuator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ararabots/vsscore/internal/action"
)

// Packets are single ASCII lines:
//
//	<op><robot> <a> <b> <domain>\n     command, e.g. "M2 120 -80 sw"
//	W<robot> <left> <right>\n          wheel feedback from the robot
//
// Op letters are M (move), R (spin clockwise), L (spin counter-clockwise)
// and H (halt). Arguments are rounded to integers and clamped to ±MaxArg.
// A hardware-domain move carries its heading in degrees.

// MaxArg bounds every encoded argument.
const MaxArg = 255

var ErrBadPacket = errors.New("actuator: bad packet")

var opLetters = map[action.Opcode]byte{
	action.Move:    'M',
	action.SpinCW:  'R',
	action.SpinCCW: 'L',
	action.Stop:    'H',
}

var domainTags = map[action.Domain]string{
	action.Software: "sw",
	action.Hardware: "hw",
}

// Encode renders a for robot index.
func Encode(robot int, a action.Action) ([]byte, error) {
	op, ok := opLetters[a.Op]
	if !ok {
		return nil, fmt.Errorf("%w: cannot encode %v", ErrBadPacket, a.Op)
	}
	tag, ok := domainTags[a.Domain]
	if !ok {
		return nil, fmt.Errorf("%w: unknown domain %v", ErrBadPacket, a.Domain)
	}
	if a.Op == action.Stop {
		return fmt.Appendf(nil, "%c%d 0 0 %s\n", op, robot, tag), nil
	}
	first := a.A
	if a.Op == action.Move && a.Domain == action.Hardware {
		first = math.Remainder(a.A, 2*math.Pi) * 180 / math.Pi
	}
	return fmt.Appendf(nil, "%c%d %d %d %s\n", op, robot, arg(first), arg(a.B), tag), nil
}

func arg(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return int(math.Round(math.Max(-MaxArg, math.Min(MaxArg, v))))
}

// Decode parses a command line produced by Encode.
func Decode(line string) (robot int, a action.Action, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || len(fields[0]) < 2 {
		return 0, action.None, fmt.Errorf("%w: %q", ErrBadPacket, line)
	}
	a.Op = action.Invalid
	for op, letter := range opLetters {
		if fields[0][0] == letter {
			a.Op = op
		}
	}
	if a.Op == action.Invalid {
		return 0, action.None, fmt.Errorf("%w: unknown op in %q", ErrBadPacket, line)
	}
	if robot, err = strconv.Atoi(fields[0][1:]); err != nil {
		return 0, action.None, fmt.Errorf("%w: robot index in %q", ErrBadPacket, line)
	}
	ia, errA := strconv.Atoi(fields[1])
	ib, errB := strconv.Atoi(fields[2])
	if errA != nil || errB != nil {
		return 0, action.None, fmt.Errorf("%w: arguments in %q", ErrBadPacket, line)
	}
	a.A, a.B = float64(ia), float64(ib)
	a.Domain, err = action.ParseDomain(fields[3])
	if err != nil {
		return 0, action.None, fmt.Errorf("%w: %w", ErrBadPacket, err)
	}
	if a.Op == action.Move && a.Domain == action.Hardware {
		a.A = a.A * math.Pi / 180
	}
	return robot, a, nil
}

// ParseFeedback parses a wheel feedback line.
func ParseFeedback(line string) (robot int, wheels [2]float64, err error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || len(fields[0]) < 2 || fields[0][0] != 'W' {
		return 0, wheels, fmt.Errorf("%w: %q", ErrBadPacket, line)
	}
	if robot, err = strconv.Atoi(fields[0][1:]); err != nil {
		return 0, wheels, fmt.Errorf("%w: robot index in %q", ErrBadPacket, line)
	}
	for i := range wheels {
		if wheels[i], err = strconv.ParseFloat(fields[i+1], 64); err != nil {
			return 0, wheels, fmt.Errorf("%w: wheel speed in %q", ErrBadPacket, line)
		}
	}
	return robot, wheels, nil
}
