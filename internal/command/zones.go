package command

import (
	"flag"
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/ararabots/vsscore/internal/arena"
	"github.com/ararabots/vsscore/internal/config"
)

// zoneGlyph is how one zone is drawn on the map.
type zoneGlyph struct {
	char  rune
	color color.Color
}

var zoneGlyphs = map[arena.Zone]zoneGlyph{
	arena.Center:              {'.', lipgloss.Color("22")},
	arena.UpBorder:            {'^', lipgloss.Color("94")},
	arena.DownBorder:          {'v', lipgloss.Color("94")},
	arena.LeftGoal:            {'G', lipgloss.Color("160")},
	arena.RightGoal:           {'g', lipgloss.Color("27")},
	arena.LeftGoalArea:        {'A', lipgloss.Color("203")},
	arena.RightGoalArea:       {'a', lipgloss.Color("75")},
	arena.LeftUpCorner:        {'C', lipgloss.Color("130")},
	arena.LeftDownCorner:      {'C', lipgloss.Color("130")},
	arena.RightUpCorner:       {'c', lipgloss.Color("130")},
	arena.RightDownCorner:     {'c', lipgloss.Color("130")},
	arena.LeftUpBottomLine:    {'L', lipgloss.Color("172")},
	arena.LeftDownBottomLine:  {'L', lipgloss.Color("172")},
	arena.RightUpBottomLine:   {'R', lipgloss.Color("172")},
	arena.RightDownBottomLine: {'R', lipgloss.Color("172")},
}

// offField marks cells beside the goals.
const offField arena.Zone = -1

// ZonesCommand draws the zone partition of the configured field.
type ZonesCommand struct {
	*BaseCommand
	config *config.Config
	step   float64
	legend bool
}

// NewZonesCommand creates a new zones command.
func NewZonesCommand(cfg *config.Config) *ZonesCommand {
	return &ZonesCommand{
		BaseCommand: NewBaseCommand(
			"zones",
			"Draw the field zone map",
			"zones [options]",
		),
		config: cfg,
		step:   5,
		legend: true,
	}
}

// SetupFlags configures the flags for the zones command.
func (c *ZonesCommand) SetupFlags(fs *flag.FlagSet) {
	fs.Float64Var(&c.step, "step", 5, "Centimetres per cell")
	fs.BoolVar(&c.legend, "legend", true, "Print the zone legend")
}

// Execute draws the map.
func (c *ZonesCommand) Execute(args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		_, _ = fmt.Fprintf(stderr, "unexpected arguments: %v\n", args)
		return fmt.Errorf("unexpected arguments")
	}
	if c.step < 1 {
		return fmt.Errorf("step must be at least 1, got %v", c.step)
	}

	cfg := c.config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	g, err := config.Geometry(cfg, config.DefaultSchema())
	if err != nil {
		return err
	}

	var b strings.Builder
	for _, row := range zoneRows(g, c.step) {
		for _, cell := range row {
			b.WriteString(styleCell(cell))
		}
		b.WriteByte('\n')
	}
	if c.legend {
		b.WriteByte('\n')
		for _, z := range arena.Zones() {
			b.WriteString(styleCell(z))
			_, _ = fmt.Fprintf(&b, " %s\n", z)
		}
	}
	_, err = lipgloss.Fprint(stdout, b.String())
	return err
}

// zoneRows samples the field at cell centres, top row first. One column of
// goal depth is added past each goal line; those cells are offField unless
// they fall in a goal mouth.
func zoneRows(g arena.Geometry, step float64) [][]arena.Zone {
	cols := int(math.Ceil(g.Length/step)) + 2
	rows := int(math.Ceil(g.Width / step))
	out := make([][]arena.Zone, rows)
	for r := range out {
		y := g.Width - (float64(r)+0.5)*step
		out[r] = make([]arena.Zone, cols)
		for col := range out[r] {
			x := (float64(col) - 0.5) * step
			z := g.Classify(arena.V(x, y))
			if (x < 0 || x > g.Length) && !z.IsGoal() {
				z = offField
			}
			out[r][col] = z
		}
	}
	return out
}

func styleCell(z arena.Zone) string {
	glyph, ok := zoneGlyphs[z]
	if !ok {
		return " "
	}
	return lipgloss.NewStyle().Foreground(glyph.color).Render(string(glyph.char))
}
