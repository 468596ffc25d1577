package univerconv

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"go.uber.org/zap"
)

// ResponseType tags a worker response.
type ResponseType string

const (
	ResponseResult ResponseType = "transform-response"
	ResponseError  ResponseType = "transform-error"
)

// Request is one conversion task sent to a worker.
type Request struct {
	ID       string `json:"id"`
	Data     []byte `json:"data"`
	FileName string `json:"fileName,omitempty"`
	Readonly bool   `json:"isReadonly,omitempty"`
}

// Response answers exactly one Request.
type Response struct {
	Type   ResponseType `json:"type"`
	ID     string       `json:"id"`
	Result *Workbook    `json:"result,omitempty"`
	Error  *TaskError   `json:"error,omitempty"`
}

// Handler runs a Request on the worker goroutine. A panic in a Handler
// crashes the worker.
type Handler func(req Request) Response

// ImportHandler converts requests with ImportWorkbook. A failed import
// resolves with the placeholder workbook; the task fails only when not even
// that could be built.
func ImportHandler(opts ...Option) Handler {
	return func(req Request) Response {
		wb, err := ImportWorkbook(Input{Data: req.Data, FileName: req.FileName, Readonly: req.Readonly}, opts...)
		if wb == nil {
			return Response{Type: ResponseError, ID: req.ID, Error: &TaskError{Message: err.Error()}}
		}
		return Response{Type: ResponseResult, ID: req.ID, Result: wb}
	}
}

type taskResult struct {
	wb  *Workbook
	err error
}

// workerRun is one incarnation of the worker goroutine.
type workerRun struct {
	requests chan Request
	done     chan struct{}
	stop     sync.Once
}

func (r *workerRun) close() {
	r.stop.Do(func() { close(r.done) })
}

// WorkerConverter parses files on a background goroutine, one request at
// a time. A crash rejects every pending task with ErrWorkerCrashed and the
// next Convert starts a fresh worker. After Dispose every outstanding and
// later task fails with ErrDisposed.
type WorkerConverter struct {
	handler Handler
	opts    []Option
	ids     IDGenerator
	log     *zap.Logger

	mu       sync.Mutex
	current  *workerRun
	pending  map[string]chan taskResult
	disposed bool
}

// NewWorkerConverter creates a WorkerConverter. A nil handler means ImportHandler(opts...).
func NewWorkerConverter(handler Handler, opts ...Option) *WorkerConverter {
	o := applyOptions(opts)
	if handler == nil {
		handler = ImportHandler(opts...)
	}
	return &WorkerConverter{
		handler: handler,
		opts:    opts,
		ids:     o.ids,
		log:     o.logger,
		pending: make(map[string]chan taskResult),
	}
}

// Convert implements Converter. JSON-shaped input does not reach the worker.
// Cancelling ctx abandons the wait; the task itself keeps running.
func (w *WorkerConverter) Convert(ctx context.Context, in Input) (*Workbook, error) {
	if in.IsModel() {
		if w.isDisposed() {
			return nil, ErrDisposed
		}
		return NewPassThroughConverter(w.opts...).Convert(ctx, in)
	}

	req := Request{ID: w.ids("task"), Data: in.Data, FileName: in.FileName, Readonly: in.Readonly}
	result, run, err := w.submit(req)
	if err != nil {
		return nil, err
	}

	select {
	case run.requests <- req:
	case <-run.done:
		// Crashed or disposed; the task was rejected.
	case <-ctx.Done():
		w.forget(req.ID)
		return nil, ctx.Err()
	}

	select {
	case res := <-result:
		return res.wb, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending returns the number of tasks waiting for a response.
func (w *WorkerConverter) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Dispose stops the worker and rejects every outstanding task with ErrDisposed.
func (w *WorkerConverter) Dispose() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return
	}
	w.disposed = true
	w.rejectAll(ErrDisposed)
	if w.current != nil {
		w.current.close()
		w.current = nil
	}
}

func (w *WorkerConverter) isDisposed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.disposed
}

func (w *WorkerConverter) submit(req Request) (chan taskResult, *workerRun, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return nil, nil, ErrDisposed
	}
	if w.current == nil {
		w.current = &workerRun{requests: make(chan Request), done: make(chan struct{})}
		go w.run(w.current)
	}
	result := make(chan taskResult, 1)
	w.pending[req.ID] = result
	return result, w.current, nil
}

func (w *WorkerConverter) forget(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.pending, id)
}

func (w *WorkerConverter) run(r *workerRun) {
	for {
		select {
		case <-r.done:
			return
		case req := <-r.requests:
			resp, err := w.handle(req)
			if err != nil {
				w.crash(r, err)
				return
			}
			w.deliver(resp)
		}
	}
}

// handle runs the handler, turning a panic into an error.
func (w *WorkerConverter) handle(req Request) (resp Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("task %q: %v", req.ID, p)
			w.log.Warn("worker crashed",
				zap.String("task", req.ID),
				zap.Any("panic", p),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	return w.handler(req), nil
}

func (w *WorkerConverter) crash(r *workerRun, cause error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	r.close()
	if w.current == r {
		w.current = nil
	}
	if w.disposed {
		return
	}
	w.log.Debug("rejecting pending tasks", zap.Int("pending", len(w.pending)), zap.Error(cause))
	w.rejectAll(ErrWorkerCrashed)
}

func (w *WorkerConverter) deliver(resp Response) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.disposed {
		return
	}
	task, ok := w.pending[resp.ID]
	if !ok {
		return
	}
	delete(w.pending, resp.ID)

	switch resp.Type {
	case ResponseResult:
		task <- taskResult{wb: resp.Result}
	case ResponseError:
		terr := resp.Error
		if terr == nil {
			terr = &TaskError{}
		}
		task <- taskResult{err: terr}
	default:
		task <- taskResult{err: fmt.Errorf("task %q: %w %q", resp.ID, ErrUnknownResponse, resp.Type)}
	}
}

// rejectAll fails every pending task. w.mu must be held.
func (w *WorkerConverter) rejectAll(err error) {
	for id, task := range w.pending {
		task <- taskResult{err: err}
		delete(w.pending, id)
	}
}
