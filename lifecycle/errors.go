package lifecycle

// Code identifies a class of lifecycle failure
type Code string

const (
	CodeValidation        Code = "VALIDATION_ERROR"
	CodeForbidden         Code = "FORBIDDEN"
	CodeNotOpenTask       Code = "NOT_OPEN_TASK"
	CodeAlreadyClaimed    Code = "ALREADY_CLAIMED"
	CodePriceLocked       Code = "PRICE_LOCKED"
	CodeInvalidTransition Code = "INVALID_TRANSITION"
	CodeConflict          Code = "CONFLICT"
	CodeNotFound          Code = "NOT_FOUND"
)

// Error represents a rejected lifecycle operation
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error carrying the same code, so callers can use errors.Is
// against the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrForbidden         = &Error{Code: CodeForbidden, Message: "You do not have permission to perform this action on the order"}
	ErrNotOpenTask       = &Error{Code: CodeNotOpenTask, Message: "Shop orders cannot be claimed or unassigned"}
	ErrAlreadyClaimed    = &Error{Code: CodeAlreadyClaimed, Message: "Order has already been claimed by another artist"}
	ErrPriceLocked       = &Error{Code: CodePriceLocked, Message: "Order price has been approved and can no longer change"}
	ErrInvalidTransition = &Error{Code: CodeInvalidTransition, Message: "Order cannot move to the requested state"}
	ErrConflict          = &Error{Code: CodeConflict, Message: "Order was modified concurrently, reload and try again"}
	ErrNotFound          = &Error{Code: CodeNotFound, Message: "Order not found"}
)

func validationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}
