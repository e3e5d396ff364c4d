// Package parseopt implements a declarative, table-driven command-line option
// parser in the style of git's parse-options: long options with unique-prefix
// abbreviation and --no- negation, bundled short switches, mutually exclusive
// command modes, and a fixed-layout usage renderer.
package parseopt

import (
	"fmt"
	"unsafe"
)

// Kind is the variant of an Option descriptor.
type Kind int

const (
	KindEnd Kind = iota
	KindGroup
	KindSwitch
	KindString
	KindFilename
	KindUint
)

func (k Kind) String() string {
	switch k {
	case KindEnd:
		return "end"
	case KindGroup:
		return "group"
	case KindSwitch:
		return "switch"
	case KindString:
		return "string"
	case KindFilename:
		return "filename"
	case KindUint:
		return "uint"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Flag is a set of per-option behaviors.
type Flag uint16

const (
	FlagOptArg         Flag = 1 << iota // value may be omitted; only an inline value is taken
	FlagNoArg                           // never takes a value
	FlagNegatable                       // accepts --no-<long>
	FlagLiteralArgHint                  // ArgHint printed verbatim
	FlagExistingFile                    // filename must name an existing regular file
	FlagHidden                          // listed only by --help-all
	FlagNoDash                          // given as a bare one-character token
	FlagCmdMode                         // member of the mutually exclusive command-mode group
)

// Option describes one entry of an option table. Options are built with the
// constructors in this file; the destination is not accessible otherwise.
type Option struct {
	Kind    Kind
	Short   rune
	Long    string
	ArgHint string
	Help    string
	Flags   Flag

	dest dest
}

// With returns a copy of o with the given flags set.
func (o Option) With(f Flag) Option {
	o.Flags |= f
	return o
}

// Without returns a copy of o with the given flags cleared.
func (o Option) Without(f Flag) Option {
	o.Flags &^= f
	return o
}

func (o *Option) has(f Flag) bool { return o.Flags&f != 0 }

func (o *Option) takesNoValue() bool {
	return o.Kind == KindSwitch || o.has(FlagNoArg)
}

// dest is the typed payload an option writes to. The set of implementations
// is closed; coercion switches over them.
type dest interface {
	// target identifies the storage location, used to group command-mode
	// options that share a destination.
	target() any
	// snapshot returns the current stored value in comparable form.
	snapshot() any
	// ok reports whether the destination points at storage.
	ok() bool
}

type boolDest struct{ p *bool }

func (d boolDest) target() any   { return d.p }
func (d boolDest) snapshot() any { return *d.p }
func (d boolDest) ok() bool      { return d.p != nil }

type intDest struct {
	p   *int
	val int
}

func (d intDest) target() any   { return d.p }
func (d intDest) snapshot() any { return *d.p }
func (d intDest) ok() bool      { return d.p != nil }

type stringDest struct {
	p   *string
	def string
}

func (d stringDest) target() any   { return d.p }
func (d stringDest) snapshot() any { return *d.p }
func (d stringDest) ok() bool      { return d.p != nil }

type uintDest struct {
	p    any
	null bool
	bits int
	def  uint64
	set  func(uint64)
	get  func() uint64
}

func (d uintDest) target() any   { return d.p }
func (d uintDest) snapshot() any { return d.get() }
func (d uintDest) ok() bool      { return !d.null }

// Unsigned is the set of destination types accepted by Uint.
type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// End terminates a table. A table may also simply end at the slice end.
func End() Option { return Option{Kind: KindEnd} }

// Group starts a titled section in the usage listing.
func Group(header string) Option { return Option{Kind: KindGroup, Help: header} }

// Bool is a negatable switch storing true, or false when negated.
func Bool(short rune, long string, p *bool, help string) Option {
	return Option{
		Kind:  KindSwitch,
		Short: short,
		Long:  long,
		Help:  help,
		Flags: FlagNegatable,
		dest:  boolDest{p: p},
	}
}

// SetInt is a negatable switch storing value, or 0 when negated.
func SetInt(short rune, long string, p *int, value int, help string) Option {
	return Option{
		Kind:  KindSwitch,
		Short: short,
		Long:  long,
		Help:  help,
		Flags: FlagNegatable,
		dest:  intDest{p: p, val: value},
	}
}

// CmdMode is a switch storing value into a destination shared by the other
// members of its command-mode group. Selecting two different modes in one
// invocation is an error.
func CmdMode(short rune, long string, p *int, value int, help string) Option {
	return Option{
		Kind:  KindSwitch,
		Short: short,
		Long:  long,
		Help:  help,
		Flags: FlagCmdMode,
		dest:  intDest{p: p, val: value},
	}
}

// String takes a required value. Negation clears it.
func String(short rune, long string, p *string, argHint, help string) Option {
	return Option{
		Kind:    KindString,
		Short:   short,
		Long:    long,
		ArgHint: argHint,
		Help:    help,
		Flags:   FlagNegatable,
		dest:    stringDest{p: p},
	}
}

// OptString takes an optional value, which must be attached to the option
// (--name=value or -nvalue). Without one, def is stored.
func OptString(short rune, long string, p *string, def, argHint, help string) Option {
	return Option{
		Kind:    KindString,
		Short:   short,
		Long:    long,
		ArgHint: argHint,
		Help:    help,
		Flags:   FlagNegatable | FlagOptArg,
		dest:    stringDest{p: p, def: def},
	}
}

// Filename takes a path, resolved against the parser's prefix directory.
func Filename(short rune, long string, p *string, argHint, help string) Option {
	return Option{
		Kind:    KindFilename,
		Short:   short,
		Long:    long,
		ArgHint: argHint,
		Help:    help,
		Flags:   FlagNegatable,
		dest:    stringDest{p: p},
	}
}

// Uint takes a base-10 unsigned integer that must fit in T.
func Uint[T Unsigned](short rune, long string, p *T, argHint, help string) Option {
	return Option{
		Kind:    KindUint,
		Short:   short,
		Long:    long,
		ArgHint: argHint,
		Help:    help,
		Flags:   FlagNegatable,
		dest:    newUintDest(p, 0),
	}
}

// OptUint is Uint with an optional attached value, def being stored when the
// value is omitted.
func OptUint[T Unsigned](short rune, long string, p *T, def T, argHint, help string) Option {
	return Option{
		Kind:    KindUint,
		Short:   short,
		Long:    long,
		ArgHint: argHint,
		Help:    help,
		Flags:   FlagNegatable | FlagOptArg,
		dest:    newUintDest(p, uint64(def)),
	}
}

func newUintDest[T Unsigned](p *T, def uint64) uintDest {
	var zero T
	return uintDest{
		p:    p,
		null: p == nil,
		bits: int(unsafe.Sizeof(zero)) * 8,
		def:  def,
		set:  func(v uint64) { *p = T(v) },
		get:  func() uint64 { return uint64(*p) },
	}
}

// Check reports the first structural problem in a table: duplicate names,
// missing destinations or contradictory flags.
func Check(options []Option) error {
	shorts := make(map[rune]bool)
	longs := make(map[string]bool)
	for i := range options {
		o := &options[i]
		if o.Kind == KindEnd {
			break
		}
		if o.Kind == KindGroup {
			continue
		}
		name := o.Long
		if name == "" {
			name = string(o.Short)
		}
		switch {
		case o.Kind < KindEnd || o.Kind > KindUint:
			return fmt.Errorf("option %q: invalid kind %d", name, int(o.Kind))
		case o.Short == 0 && o.Long == "":
			return fmt.Errorf("option #%d has neither a short nor a long name", i)
		case o.dest == nil || !o.dest.ok():
			return fmt.Errorf("option %q has no destination", name)
		case o.Short != 0 && (o.Short <= ' ' || o.Short > '~' || o.Short == '-'):
			return fmt.Errorf("option %q: invalid short name %q", name, o.Short)
		case o.has(FlagOptArg) && o.has(FlagNoArg):
			return fmt.Errorf("option %q: optional and forbidden argument", name)
		case o.has(FlagNoArg) && o.Kind != KindSwitch:
			return fmt.Errorf("option %q: a %s option cannot forbid its value", name, o.Kind)
		case o.has(FlagOptArg) && o.Kind == KindSwitch:
			return fmt.Errorf("option %q: a switch cannot take an optional argument", name)
		case o.has(FlagNoDash) && (o.Long != "" || o.Kind != KindSwitch || o.Short == 0):
			return fmt.Errorf("option %q: nodash options must be long-less switches", name)
		case o.has(FlagExistingFile) && o.Kind != KindFilename:
			return fmt.Errorf("option %q: existing-file check on a %s option", name, o.Kind)
		case o.has(FlagCmdMode) && o.Kind != KindSwitch:
			return fmt.Errorf("option %q: command modes must be switches", name)
		}
		if o.Short != 0 {
			if shorts[o.Short] {
				return fmt.Errorf("short name %q declared twice", o.Short)
			}
			shorts[o.Short] = true
		}
		if o.Long != "" {
			if longs[o.Long] {
				return fmt.Errorf("long name %q declared twice", o.Long)
			}
			longs[o.Long] = true
		}
	}
	return nil
}

// visible returns the table up to, not including, its terminator.
func visible(options []Option) []Option {
	for i := range options {
		if options[i].Kind == KindEnd {
			return options[:i]
		}
	}
	return options
}
