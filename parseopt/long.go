package parseopt

import (
	"fmt"
	"strings"
)

// parseLong resolves arg, the token without its leading "--", against the
// long names of the table. Exact matches win outright. Otherwise a name may
// be abbreviated to any unique prefix, including prefixes of its negated
// form, and two or more candidates are an ambiguity.
func (ctx *parseContext) parseLong(arg string) error {
	defer ctx.clearInline()

	name, value, hasValue := strings.Cut(arg, "=")
	if name == "" {
		return unknownOption(arg)
	}

	var (
		abbrev, ambiguous       *Option
		abbrevHow, ambiguousHow parsedAs
	)

	options := ctx.p.options
	for i := range visible(options) {
		o := &options[i]
		if o.Kind == KindGroup || o.Long == "" || o.has(FlagNoDash) {
			continue
		}

		long := o.Long
		var how, inherent parsedAs
		// A negatable "no-foo" option is also reachable as "foo", which
		// clears it.
		if o.has(FlagNegatable) && !strings.HasPrefix(name, "no-") {
			if positive, ok := strings.CutPrefix(long, "no-"); ok {
				long = positive
				inherent = asUnset
			}
		}

		if name == long {
			return ctx.take(o, inherent, value, hasValue)
		}

		matched := strings.HasPrefix(long, name)
		if !matched && o.has(FlagNegatable) {
			if strings.HasPrefix("no-", name) {
				// "n", "no" and "no-" abbreviate every negation.
				how = asUnset
				matched = true
			} else if rest, ok := strings.CutPrefix(name, "no-"); ok {
				how = asUnset
				if rest == long {
					return ctx.take(o, how^inherent, value, hasValue)
				}
				matched = strings.HasPrefix(long, rest)
			}
		}
		if !matched {
			continue
		}

		if abbrev != nil {
			ambiguous, ambiguousHow = abbrev, abbrevHow
		}
		abbrev, abbrevHow = o, how^inherent
	}

	if ambiguous != nil {
		return &ParseError{
			Type: ErrorTypeAmbiguous,
			Message: fmt.Sprintf("ambiguous option: %s (could be --%s or --%s)",
				name, ambiguous.nameFor(ambiguousHow), abbrev.nameFor(abbrevHow)),
			Option: ambiguous.nameFor(ambiguousHow),
			Other:  abbrev.nameFor(abbrevHow),
		}
	}
	if abbrev != nil {
		return ctx.take(abbrev, abbrevHow, value, hasValue)
	}
	return unknownOption(arg)
}

func (ctx *parseContext) take(o *Option, how parsedAs, value string, hasValue bool) error {
	ctx.opt, ctx.inl = value, hasValue
	return ctx.getValue(o, how)
}

func unknownOption(arg string) *ParseError {
	return &ParseError{
		Type:    ErrorTypeUnknownOption,
		Message: fmt.Sprintf("unknown option '%s'", arg),
		Option:  arg,
	}
}
