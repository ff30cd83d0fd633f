package domain

// The adjustment error taxonomy. Both types are user-addressable failures:
// the boundary layer formats them into a reply, the interpreter and the card
// service never swallow them.

// ValidationError reports user input that cannot be processed: malformed
// numbers, out-of-vocabulary subcommands, directions or personas, empty
// text. The message always carries the offending text or the violated
// constraint.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// MissingStateError reports an adjustment requested before any card exists
// for the session in either store tier.
type MissingStateError struct {
	Message string
}

func (e *MissingStateError) Error() string { return e.Message }
