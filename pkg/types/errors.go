package types

import "fmt"

// BackendError 表示后端某个阶段产生的错误
type BackendError struct {
	Stage string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend error at stage %s: %v", e.Stage, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

func NewBackendError(stage string, err error) error {
	return &BackendError{Stage: stage, Err: err}
}
