package groups

import (
	"github.com/arthur-debert/dupes/pkg/errors"
)

// Status is the lifecycle position of one path
type Status int

const (
	StatusUnseen Status = iota
	StatusCanonical
	StatusDuplicate
	StatusRemoved
	StatusLinked
)

func (s Status) String() string {
	switch s {
	case StatusUnseen:
		return "unseen"
	case StatusCanonical:
		return "canonical"
	case StatusDuplicate:
		return "duplicate"
	case StatusRemoved:
		return "removed"
	case StatusLinked:
		return "linked"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in reports
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

var transitions = map[Status][]Status{
	StatusUnseen:    {StatusCanonical, StatusDuplicate},
	StatusDuplicate: {StatusRemoved},
	StatusRemoved:   {StatusLinked},
}

// Advance moves s to next, rejecting any edge outside
// unseen -> canonical | unseen -> duplicate -> removed -> linked.
func (s Status) Advance(next Status) (Status, error) {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return next, nil
		}
	}
	return s, errors.Newf(errors.ErrIllegalTransition, "cannot move from %s to %s", s, next).
		WithDetail("from", s.String()).
		WithDetail("to", next.String())
}

// Terminal reports whether no further transition exists from s
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
