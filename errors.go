package univerconv

import "errors"

var (
	// ErrDisposed is returned for tasks submitted to, or outstanding on, a disposed worker.
	ErrDisposed = errors.New("worker was disposed")
	// ErrWorkerCrashed rejects every task pending on a worker that died.
	ErrWorkerCrashed = errors.New("worker encountered an error")
	// ErrUnknownResponse rejects a task whose response type is not recognised.
	ErrUnknownResponse = errors.New("unknown worker response type")
	// ErrUnsupportedFormat is returned for inputs no reader handles.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrMissingBody is returned when a document has no body.dataStream.
	ErrMissingBody = errors.New("document body is incomplete")
	// ErrInvalidMerge is returned for merge ranges that cannot be normalized.
	ErrInvalidMerge = errors.New("invalid merge range")
	// ErrMissingSnapshot is returned when exporting without a model.
	ErrMissingSnapshot = errors.New("missing snapshot")
	// ErrUnknownSheet is returned when a sheet id or name does not resolve.
	ErrUnknownSheet = errors.New("unknown sheet")
)

// TaskError is the error payload a worker sends back for a failed task.
type TaskError struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

func (e *TaskError) Error() string {
	if e.Message == "" {
		return "worker processing failed"
	}
	return e.Message
}
