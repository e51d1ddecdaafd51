package bresult

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
)

var (
	// ErrBufferFull is returned when a write would grow the buffer past its limit.
	ErrBufferFull = errors.New("bresult: response buffer is full")
	// ErrAlreadySent is returned when Send is called on a response that was already sent.
	ErrAlreadySent = errors.New("bresult: response was already sent")
)

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// ResponseBuffer is the buffered [ResponseWriter] the server hands to every handler. Nothing reaches the underlying
// writer until the buffer is flushed, so the server can throw away a half-written response and render an error
// instead.
type ResponseBuffer struct {
	resp   http.ResponseWriter
	buf    *bytes.Buffer
	limit  int
	header http.Header

	status      int
	wroteHeader bool
	sent        bool

	headerFlushed bool
	flushed       bool
}

// NewResponseWriter wraps resp with a buffer that holds at most limit bytes between flushes. A negative limit
// disables limiting.
func NewResponseWriter(resp http.ResponseWriter, limit int) ResponseWriter {
	return newBufferResponse(resp, limit)
}

func newBufferResponse(resp http.ResponseWriter, limit int) *ResponseBuffer {
	buf, _ := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &ResponseBuffer{
		resp:   resp,
		buf:    buf,
		limit:  limit,
		header: http.Header{},
		status: http.StatusOK,
	}
}

// Header returns the buffered header map.
func (w *ResponseBuffer) Header() http.Header { return w.header }

// WriteHeader records the status code. Only the first call has an effect.
func (w *ResponseBuffer) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}

	w.status, w.wroteHeader = code, true
}

// Write appends to the buffer.
func (w *ResponseBuffer) Write(p []byte) (int, error) {
	if w.limit >= 0 && w.buf.Len()+len(p) > w.limit {
		return 0, ErrBufferFull
	}

	w.WriteHeader(w.status)

	return w.buf.Write(p) //nolint:wrapcheck
}

// Status sets the status that is used once the response is sent. It has no effect after the headers were written.
func (w *ResponseBuffer) Status(code int) {
	if w.wroteHeader {
		return
	}

	w.status = code
}

// StatusCode returns the status the response is (or will be) sent with.
func (w *ResponseBuffer) StatusCode() int { return w.status }

// Send serializes body as the complete response. A nil body sends just the headers, byte slices are written as-is,
// strings as text and everything else is encoded as JSON.
func (w *ResponseBuffer) Send(body any) error {
	if w.Finished() {
		return ErrAlreadySent
	}

	var data []byte
	switch b := body.(type) {
	case nil:
	case []byte:
		w.defaultContentType("application/octet-stream")
		data = b
	case string:
		w.defaultContentType("text/plain; charset=utf-8")
		data = []byte(b)
	default:
		enc, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode response body")
		}

		w.defaultContentType("application/json")
		data = enc
	}

	w.WriteHeader(w.status)
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "write response body")
	}

	w.sent = true

	return nil
}

// HeadersSent reports whether the status line has been committed.
func (w *ResponseBuffer) HeadersSent() bool { return w.wroteHeader || w.headerFlushed }

// Finished reports whether a complete response was sent or flushed out.
func (w *ResponseBuffer) Finished() bool { return w.sent || w.flushed }

// Reset discards everything written so far. It panics when part of the response already reached the client.
func (w *ResponseBuffer) Reset() {
	if w.flushed {
		panic("bresult: cannot reset the response, it was already flushed")
	}

	w.buf.Reset()
	w.header = http.Header{}
	w.status = http.StatusOK
	w.wroteHeader, w.sent = false, false
}

// Free returns the buffer to the pool. The response must not be used afterwards.
func (w *ResponseBuffer) Free() {
	if w.buf == nil {
		return
	}

	bufPool.Put(w.buf)
	w.buf = nil
}

// FlushBuffer writes the headers (once) and the buffered bytes to the underlying writer.
func (w *ResponseBuffer) FlushBuffer() error {
	if !w.headerFlushed {
		dst := w.resp.Header()
		for k, v := range w.header {
			dst[k] = v
		}

		w.resp.WriteHeader(w.status)
		w.headerFlushed = true
	}

	if w.buf.Len() < 1 {
		return nil
	}

	if _, err := w.buf.WriteTo(w.resp); err != nil {
		return errors.Wrap(err, "flush response buffer")
	}

	return nil
}

// FlushError flushes the buffer and the underlying writer. It is used by [http.ResponseController]. After an
// explicit flush the response can no longer be reset.
func (w *ResponseBuffer) FlushError() error {
	w.flushed = true
	if err := w.FlushBuffer(); err != nil {
		return err
	}

	if f, ok := w.resp.(http.Flusher); ok {
		f.Flush()
	}

	return nil
}

// Flush implements [http.Flusher].
func (w *ResponseBuffer) Flush() { _ = w.FlushError() }

// Unwrap returns the underlying writer, for [http.ResponseController].
func (w *ResponseBuffer) Unwrap() http.ResponseWriter { return w.resp }

func (w *ResponseBuffer) defaultContentType(ct string) {
	if w.header.Get("Content-Type") == "" {
		w.header.Set("Content-Type", ct)
	}
}

var _ ResponseWriter = &ResponseBuffer{}
