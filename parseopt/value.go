package parseopt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// assign writes the value for o into its destination.
func (ctx *parseContext) assign(o *Option, how parsedAs) error {
	unset := how&asUnset != 0

	switch o.Kind { // exhaustive over Kind
	case KindSwitch:
		switch d := o.dest.(type) {
		case boolDest:
			*d.p = !unset
		case intDest:
			if unset {
				*d.p = 0
			} else {
				*d.p = d.val
			}
		default:
			return fmt.Errorf("parseopt: switch %q with %T destination", o.Long, o.dest)
		}
		return nil

	case KindString, KindFilename:
		d := o.dest.(stringDest)
		if unset {
			*d.p = ""
			return nil
		}
		if o.has(FlagOptArg) && !ctx.inl {
			*d.p = d.def
			return nil
		}
		v, err := ctx.takeArg(o, how)
		if err != nil {
			return err
		}
		if o.Kind == KindFilename {
			v = fixFilename(ctx.p.prefix, v)
		}
		*d.p = v
		if o.has(FlagExistingFile) {
			return checkRegularFile(o, how, v)
		}
		return nil

	case KindUint:
		d := o.dest.(uintDest)
		if unset {
			d.set(0)
			return nil
		}
		if o.has(FlagOptArg) && !ctx.inl {
			d.set(d.def)
			return nil
		}
		v, err := ctx.takeArg(o, how)
		if err != nil {
			return err
		}
		n, err := strconv.ParseUint(v, 10, d.bits)
		if err != nil {
			return numericError(o, how, v, err)
		}
		d.set(n)
		return nil

	case KindEnd, KindGroup:
		return fmt.Errorf("parseopt: %s entry cannot take a value", o.Kind)
	}
	return fmt.Errorf("parseopt: unknown option kind %d", int(o.Kind))
}

// takeArg returns the attached value, or consumes the next token.
func (ctx *parseContext) takeArg(o *Option, how parsedAs) (string, error) {
	if ctx.inl {
		v := ctx.opt
		ctx.clearInline()
		return v, nil
	}
	if ctx.pos+1 < len(ctx.args) {
		ctx.pos++
		return ctx.args[ctx.pos], nil
	}
	return "", &ParseError{
		Type:    ErrorTypeMissingValue,
		Message: optName(o, how) + " requires a value",
		Option:  o.nameFor(how),
	}
}

func fixFilename(prefix, name string) string {
	if prefix == "" || name == "-" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(prefix, name)
}

func checkRegularFile(o *Option, how parsedAs, path string) error {
	fi, err := os.Stat(path)
	var reason string
	switch {
	case errors.Is(err, fs.ErrNotExist):
		reason = "does not exist"
	case err != nil:
		reason = "cannot be read"
	case fi.IsDir():
		reason = "is a directory"
	case !fi.Mode().IsRegular():
		reason = "is not a regular file"
	default:
		return nil
	}
	return &ParseError{
		Type:    ErrorTypeInvalidPath,
		Message: fmt.Sprintf("%s: '%s' %s", optName(o, how), path, reason),
		Option:  o.nameFor(how),
		Value:   path,
		Cause:   err,
	}
}

func numericError(o *Option, how parsedAs, v string, err error) error {
	if errors.Is(err, strconv.ErrRange) {
		return &FatalError{
			Message: fmt.Sprintf("%s: value '%s' out of range", optName(o, how), v),
			Cause:   err,
		}
	}
	return &ParseError{
		Type:    ErrorTypeInvalidNumeric,
		Message: optName(o, how) + " expects a non-negative integer value",
		Option:  o.nameFor(how),
		Value:   v,
		Cause:   err,
	}
}
