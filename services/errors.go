package services

// ServiceError is a client-facing failure outside the order lifecycle
type ServiceError struct {
	Code    string
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// Is matches on code so errors.Is works against the sentinels below
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	return ok && t.Code == e.Code
}

var (
	ErrInvalidCredentials = &ServiceError{Code: "INVALID_CREDENTIALS", Message: "Invalid email or password"}
	ErrEmailTaken         = &ServiceError{Code: "USER_EXISTS", Message: "A user with this email already exists"}
	ErrUserNotFound       = &ServiceError{Code: "USER_NOT_FOUND", Message: "User not found"}
	ErrWrongPassword      = &ServiceError{Code: "INVALID_PASSWORD", Message: "Admin password is incorrect"}
)

func invalid(msg string) *ServiceError {
	return &ServiceError{Code: "VALIDATION_ERROR", Message: msg}
}
