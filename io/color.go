package pwio

import (
	"fmt"
	stdio "io"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ColorSpec represents a color in one of three spaces: basic (16), indexed (256), or truecolor (RGB)
type ColorSpec struct {
	kind    int // 1=basic, 2=indexed, 3=truecolor
	index   int // for basic (0-15) and indexed (0-255)
	r, g, b uint8
}

// Basic color helpers (0-7 normal, 8-15 bright)
var (
	Black   = basic(0)
	Red     = basic(1)
	Green   = basic(2)
	Yellow  = basic(3)
	Blue    = basic(4)
	Magenta = basic(5)
	Cyan    = basic(6)
	White   = basic(7)

	BrightBlack   = basic(8)
	BrightRed     = basic(9)
	BrightGreen   = basic(10)
	BrightYellow  = basic(11)
	BrightBlue    = basic(12)
	BrightMagenta = basic(13)
	BrightCyan    = basic(14)
	BrightWhite   = basic(15)
)

func basic(i int) ColorSpec { return ColorSpec{kind: 1, index: i} }

// Indexed returns a 256-color palette spec (0–255).
func Indexed(i int) ColorSpec { return ColorSpec{kind: 2, index: i} }

// Truecolor returns a 24‑bit RGB color spec.
func Truecolor(r, g, b uint8) ColorSpec { return ColorSpec{kind: 3, r: r, g: g, b: b} }

// Hex parses "#rrggbb" or "#rgb" (the leading # is optional) into a
// truecolor spec.
func Hex(s string) (ColorSpec, error) {
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return ColorSpec{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return Truecolor(r, g, b), nil
}

// IsZero reports whether c is the unset color.
func (c ColorSpec) IsZero() bool { return c.kind == 0 }

// Style is a fluent style builder for foreground colors and attributes.
type Style struct {
	fg   *ColorSpec
	bold bool
}

// NewStyle creates a new empty style builder.
func NewStyle() *Style                 { return &Style{} }
func (s *Style) Fg(c ColorSpec) *Style { s.fg = &c; return s }
func (s *Style) Bold() *Style          { s.bold = true; return s }

// Sprint returns text styled for the manager's output writer.
func (s *Style) Sprint(io *IOManager, text string) string {
	return s.SprintTo(io, io.Out(), text)
}

// SprintTo returns text styled for w, or unchanged if w cannot show color.
func (s *Style) SprintTo(io *IOManager, w stdio.Writer, text string) string {
	if !io.SupportsColorOn(w) {
		return text
	}
	seq := s.ansiPrefix(io.ColorLevelOn(w))
	if seq == "" {
		return text
	}
	return "\x1b[" + seq + "m" + text + "\x1b[0m"
}

func (s *Style) ansiPrefix(level int) string {
	codes := make([]string, 0, 2)
	if s.bold {
		codes = append(codes, "1")
	}
	if s.fg != nil {
		if c := colorCode(*s.fg, level); c != "" {
			codes = append(codes, c)
		}
	}
	return strings.Join(codes, ";")
}

// colorCode returns the foreground SGR parameters for c, downgrading RGB
// and indexed colors to the nearest color the terminal can show.
func colorCode(c ColorSpec, level int) string {
	switch c.kind {
	case 1:
		idx := min(max(c.index, 0), 15)
		if idx < 8 {
			return strconv.Itoa(30 + idx)
		}
		return strconv.Itoa(90 + idx - 8)
	case 2:
		if level >= 2 {
			return "38;5;" + strconv.Itoa(c.index)
		}
		return colorCode(basic(nearest(paletteColor(c.index), 0, 16)), level)
	case 3:
		rgb := colorful.Color{R: float64(c.r) / 255, G: float64(c.g) / 255, B: float64(c.b) / 255}
		switch {
		case level >= 3:
			return fmt.Sprintf("38;2;%d;%d;%d", c.r, c.g, c.b)
		case level == 2:
			return "38;5;" + strconv.Itoa(nearest(rgb, 16, 256))
		default:
			return colorCode(basic(nearest(rgb, 0, 16)), level)
		}
	default:
		return ""
	}
}

// nearest returns the xterm palette index in [from, to) closest to c in
// CIE L*a*b* space. The first 16 entries vary between terminals, so 256-color
// output only picks from the fixed cube and gray ramp.
func nearest(c colorful.Color, from, to int) int {
	best, bestDist := from, -1.0
	for i := from; i < to; i++ {
		d := c.DistanceLab(paletteColor(i))
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

var basicPalette = [16]uint32{
	0x000000, 0xcd0000, 0x00cd00, 0xcdcd00, 0x0000ee, 0xcd00cd, 0x00cdcd, 0xe5e5e5,
	0x7f7f7f, 0xff0000, 0x00ff00, 0xffff00, 0x5c5cff, 0xff00ff, 0x00ffff, 0xffffff,
}

var cubeLevels = [6]uint8{0, 95, 135, 175, 215, 255}

// paletteColor returns the RGB value of xterm palette entry i.
func paletteColor(i int) colorful.Color {
	var r, g, b uint8
	switch {
	case i < 16:
		v := basicPalette[i]
		r, g, b = uint8(v>>16), uint8(v>>8), uint8(v)
	case i < 232:
		i -= 16
		r, g, b = cubeLevels[i/36], cubeLevels[i/6%6], cubeLevels[i%6]
	default:
		v := uint8(8 + (i-232)*10)
		r, g, b = v, v, v
	}
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Theme provides semantic colors for diagnostics
type Theme struct {
	Error, Warning, Fatal, Hint, Info, Debug ColorSpec
}

// DefaultTheme16 returns a theme using basic 16 colors.
func DefaultTheme16() Theme {
	return Theme{
		Error:   BrightRed,
		Warning: BrightYellow,
		Fatal:   Red,
		Hint:    BrightCyan,
		Info:    BrightBlue,
		Debug:   BrightBlack,
	}
}

// DefaultThemeTruecolor returns a theme using 24-bit RGB colors.
func DefaultThemeTruecolor() Theme {
	return Theme{
		Error:   Truecolor(255, 85, 85),
		Warning: Truecolor(255, 184, 108),
		Fatal:   Truecolor(220, 50, 47),
		Hint:    Truecolor(139, 233, 253),
		Info:    Truecolor(92, 148, 252),
		Debug:   Truecolor(128, 128, 128),
	}
}

// DefaultTheme returns the default theme for the color level of the error
// stream, where diagnostics are written.
func DefaultTheme(io *IOManager) Theme {
	if io.ColorLevelOn(io.Err()) >= 3 {
		return DefaultThemeTruecolor()
	}
	return DefaultTheme16()
}

// Merge returns t with every color set in o replacing its counterpart.
func (t Theme) Merge(o Theme) Theme {
	pick := func(a, b ColorSpec) ColorSpec {
		if b.IsZero() {
			return a
		}
		return b
	}
	t.Error = pick(t.Error, o.Error)
	t.Warning = pick(t.Warning, o.Warning)
	t.Fatal = pick(t.Fatal, o.Fatal)
	t.Hint = pick(t.Hint, o.Hint)
	t.Info = pick(t.Info, o.Info)
	t.Debug = pick(t.Debug, o.Debug)
	return t
}
