package fixedqueue

import "fmt"

var (
	ErrEmpty       = fmt.Errorf("slot is empty")
	ErrBusy        = fmt.Errorf("slot is being written or read")
	ErrBorrowLimit = fmt.Errorf("too many outstanding borrows")
)

// StateError reports the mailbox state that refused a borrow.
type StateError struct {
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot borrow: %v (%s)", e.Unwrap(), e.State)
}

func (e *StateError) Unwrap() error {
	switch e.State {
	case StateEmpty:
		return ErrEmpty
	case StateWriting, StateReading:
		return ErrBusy
	}
	return ErrBorrowLimit
}

// Dropper is implemented by values that own something to release when a
// structure discards them without handing them to a caller
// (Clear, deferred removal, undelivered broadcast copies).
type Dropper interface {
	Drop()
}

func drop[T any](v T) {
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
	}
}
