package parseopt

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/pwkeep/pwkeep/internal/pool"
)

var renderBuffers = pool.NewBufferPool(64 << 10)

// RenderConfig controls the layout of the usage text.
type RenderConfig struct {
	OptsWidth   int    // width of the option column, indentation included
	Gap         int    // spaces between the option column and the help text
	Indent      int    // indentation of option lines and free-text usage lines
	UsagePrefix string // precedes the first usage line
	OrPrefix    string // precedes each alternative usage line
}

// DefaultRenderConfig returns the git-compatible layout.
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		OptsWidth:   24,
		Gap:         2,
		Indent:      4,
		UsagePrefix: "usage: ",
		OrPrefix:    "   or: ",
	}
}

// Usage writes the usage text for the parser's table to w. Hidden options are
// included when full is set.
func (p *Parser) Usage(w io.Writer, full bool) error {
	return RenderUsage(w, p.render, p.usage, p.options, full)
}

// RenderUsage writes usage lines followed by the option listing.
func RenderUsage(w io.Writer, cfg RenderConfig, usage []string, options []Option, full bool) error {
	buf := renderBuffers.Get()
	defer renderBuffers.Put(buf)

	r := &usageRenderer{cfg: cfg, b: buf}
	r.usageLines(usage)
	r.options(options, full)
	_, err := w.Write(buf.Bytes())
	return err
}

type usageRenderer struct {
	cfg         RenderConfig
	b           *bytes.Buffer
	needNewline bool
}

func (r *usageRenderer) usageLines(usage []string) {
	if len(usage) == 0 {
		return
	}
	i := 0
	r.prefixed(r.cfg.UsagePrefix, usage[i])
	for i++; i < len(usage) && usage[i] != ""; i++ {
		r.prefixed(r.cfg.OrPrefix, usage[i])
	}
	for ; i < len(usage); i++ {
		if usage[i] == "" {
			r.b.WriteByte('\n')
			continue
		}
		r.pad(r.cfg.Indent)
		r.b.WriteString(usage[i])
		r.b.WriteByte('\n')
	}
	r.needNewline = true
}

// prefixed writes a possibly multi-line usage string, aligning continuation
// lines under the end of prefix.
func (r *usageRenderer) prefixed(prefix, s string) {
	width := utf8.RuneCountInString(prefix)
	for n, line := range strings.Split(s, "\n") {
		if n == 0 {
			r.b.WriteString(prefix)
		} else {
			r.pad(width)
		}
		r.b.WriteString(line)
		r.b.WriteByte('\n')
	}
}

func (r *usageRenderer) options(options []Option, full bool) {
	all := visible(options)
	for i := range all {
		o := &all[i]
		if o.Kind == KindGroup {
			r.b.WriteByte('\n')
			r.needNewline = false
			if o.Help != "" {
				r.b.WriteString(o.Help)
				r.b.WriteByte('\n')
			}
			continue
		}
		if !full && o.has(FlagHidden) {
			continue
		}
		if r.needNewline {
			r.b.WriteByte('\n')
			r.needNewline = false
		}

		pos := r.pad(r.cfg.Indent)
		if o.Short != 0 {
			if o.has(FlagNoDash) {
				pos += r.write(string(o.Short))
			} else {
				pos += r.write("-" + string(o.Short))
			}
		}
		if o.Long != "" && o.Short != 0 {
			pos += r.write(", ")
		}

		var positive string
		if o.Long != "" {
			if p, ok := strings.CutPrefix(o.Long, "no-"); ok && o.has(FlagNegatable) {
				positive = p
				pos += r.write("--" + o.Long)
			} else if o.has(FlagNegatable) {
				pos += r.write("--[no-]" + o.Long)
			} else {
				pos += r.write("--" + o.Long)
			}
		}
		if o.has(FlagLiteralArgHint) || !o.takesNoValue() {
			pos += r.write(argHint(o))
		}

		r.help(pos, o.Help)

		if positive != "" && !declared(all, positive) {
			pos = r.pad(r.cfg.Indent)
			pos += r.write("--" + positive)
			r.help(pos, "opposite of --no-"+positive)
		}
	}
}

// help writes text starting at the help column, moving to a fresh line when
// the option column already reaches it.
func (r *usageRenderer) help(pos int, text string) {
	for n, line := range strings.Split(text, "\n") {
		if n > 0 {
			pos = 0
		}
		if line == "" {
			r.b.WriteByte('\n')
			continue
		}
		if pos <= r.cfg.OptsWidth {
			r.pad(r.cfg.OptsWidth + r.cfg.Gap - pos)
		} else {
			r.b.WriteByte('\n')
			r.pad(r.cfg.OptsWidth + r.cfg.Gap)
		}
		r.b.WriteString(line)
		r.b.WriteByte('\n')
	}
}

func (r *usageRenderer) write(s string) int {
	r.b.WriteString(s)
	return utf8.RuneCountInString(s)
}

func (r *usageRenderer) pad(n int) int {
	if n <= 0 {
		return 0
	}
	r.b.WriteString(strings.Repeat(" ", n))
	return n
}

// argHint renders the value placeholder that follows the option names.
func argHint(o *Option) string {
	hint := o.ArgHint
	if hint == "" {
		hint = "..."
	}
	literal := o.has(FlagLiteralArgHint) || o.ArgHint == "" || strings.ContainsAny(hint, "()<>[]|")
	switch {
	case o.has(FlagOptArg) && o.Long != "":
		if literal {
			return "[=" + hint + "]"
		}
		return "[=<" + hint + ">]"
	case o.has(FlagOptArg):
		if literal {
			return "[" + hint + "]"
		}
		return "[<" + hint + ">]"
	case literal:
		return " " + hint
	default:
		return " <" + hint + ">"
	}
}

func declared(options []Option, long string) bool {
	for i := range options {
		if options[i].Kind != KindGroup && options[i].Long == long {
			return true
		}
	}
	return false
}
