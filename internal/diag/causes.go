package diag

import "iter"

// Causes yields err followed by each underlying cause, outermost first.
// A link exposing several causes through Unwrap() []error continues with
// the first one.
func Causes(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		for cur := err; cur != nil; cur = next(cur) {
			if !yield(cur) {
				return
			}
		}
	}
}

func next(err error) error {
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		return u.Unwrap()
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			if e != nil {
				return e
			}
		}
	}
	return nil
}

// PositionOf returns the position carried directly by err, if any. Causes
// are not consulted.
func PositionOf(err error) *Position {
	p, ok := err.(interface{ Position() *Position })
	if !ok {
		return nil
	}
	return p.Position()
}
