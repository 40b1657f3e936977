package provision

import "errors"

var (
	// ErrUnknownField reports a key outside the request's field set
	ErrUnknownField = errors.New("unknown option")
	// ErrMissingRequired reports an absent username or password
	ErrMissingRequired = errors.New("missing arguments")
	// ErrInvalidUsername reports a username outside the allowed charset or length
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword reports a password that cannot be hashed
	ErrInvalidPassword = errors.New("invalid password")
	// ErrDuplicateUser reports a taken username
	ErrDuplicateUser = errors.New("existing user")
	// ErrUnknownGroup reports a group that doesn't exist
	ErrUnknownGroup = errors.New("group does not exist")
	// ErrUnknownPermission reports a listed permission that doesn't exist
	ErrUnknownPermission = errors.New("permission does not exist")
	// ErrMalformedRequest reports a body that is not a valid request object
	ErrMalformedRequest = errors.New("malformed request")
)

// ValidationError is a rejected create request. Name is the offending field,
// group or permission when there is one.
type ValidationError struct {
	Err  error
	Name string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Name == "":
		return e.Err.Error()
	case e.Err == ErrUnknownField:
		return "unknown option: " + e.Name
	case e.Err == ErrUnknownPermission:
		return "permission " + e.Name + " does not exist"
	case e.Err == ErrMalformedRequest:
		return "malformed request: invalid value for " + e.Name
	default:
		return e.Err.Error()
	}
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, name string) *ValidationError {
	return &ValidationError{Err: err, Name: name}
}
