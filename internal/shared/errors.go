package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Storage errors
	ErrUnsupportedDriver = fmt.Errorf("unsupported database driver")
	ErrElementNotFound   = fmt.Errorf("sequence element not found")

	// Input validation errors
	ErrDecode          = fmt.Errorf("malformed request body")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
)
