package common

import "fmt"

// Class is the error taxonomy from the pipeline's error handling design:
// configuration errors are fatal at startup, connectivity/protocol errors are
// retried by the caller, data-shape errors are counted and skipped, transform
// errors fail the containing page, and storage errors propagate to the
// resource-level retry loop.
type Class string

const (
	ClassConfiguration Class = "configuration"
	ClassConnectivity  Class = "connectivity"
	ClassProtocol      Class = "protocol"
	ClassDataShape     Class = "data_shape"
	ClassTransform     Class = "transform"
	ClassStorage       Class = "storage"
)

// PipelineError wraps an underlying error with its taxonomy class so callers
// can decide whether to retry, skip, or abort without string-matching messages.
type PipelineError struct {
	Class Class
	Op    string
	Err   error
}

func (e *PipelineError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("%s: %v", e.Class, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Class, e.Op, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

func Wrap(class Class, op string, err error) error {
	if err == nil {
		return nil
	}
	return &PipelineError{Class: class, Op: op, Err: err}
}

// IsClass reports whether err (or any error it wraps) belongs to class.
func IsClass(err error, class Class) bool {
	var pe *PipelineError
	for err != nil {
		if p, ok := err.(*PipelineError); ok {
			pe = p
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return pe != nil && pe.Class == class
}
