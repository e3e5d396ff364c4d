package parseopt

import "fmt"

// modeTracker watches one destination written by command-mode options.
type modeTracker struct {
	dest    dest
	initial any
	last    any
	setter  *Option
	how     parsedAs
}

// modeSet holds one tracker per distinct command-mode destination, captured
// at the start of a parse.
type modeSet struct {
	trackers []*modeTracker
}

func newModeSet(options []Option) *modeSet {
	s := &modeSet{}
	for i := range visible(options) {
		o := &options[i]
		if !o.has(FlagCmdMode) || s.find(o.dest) != nil {
			continue
		}
		v := o.dest.snapshot()
		s.trackers = append(s.trackers, &modeTracker{dest: o.dest, initial: v, last: v})
	}
	return s
}

func (s *modeSet) find(d dest) *modeTracker {
	for _, t := range s.trackers {
		if t.dest.target() == d.target() {
			return t
		}
	}
	return nil
}

// check runs after o, a command-mode option, has been assigned. It fails
// when o changed its destination away from a value another option chose, or
// when another tracked destination has already left its initial value.
func (s *modeSet) check(o *Option, how parsedAs) error {
	t := s.find(o.dest)
	if t == nil {
		return nil
	}

	cur := t.dest.snapshot()
	if cur != t.last {
		if t.setter != nil && t.setter != o && t.last != t.initial {
			return conflict(t.setter, t.how, o, how)
		}
		t.setter, t.how, t.last = o, how, cur
	}
	if cur == t.initial {
		return nil
	}

	for _, u := range s.trackers {
		if u == t || u.dest.snapshot() == u.initial || u.setter == nil {
			continue
		}
		return conflict(u.setter, u.how, o, how)
	}
	return nil
}

func conflict(first *Option, firstHow parsedAs, second *Option, secondHow parsedAs) *ParseError {
	return &ParseError{
		Type: ErrorTypeConflictingMode,
		Message: fmt.Sprintf("%s cannot be combined with %s",
			optName(first, firstHow), optName(second, secondHow)),
		Option: first.nameFor(firstHow),
		Other:  second.nameFor(secondHow),
	}
}
