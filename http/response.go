package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sagarc03/bucketfront"
)

const streamBufferSize = 32 * 1024

// WriteError writes a short plain-text error response. An empty message
// writes no body.
func WriteError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if message == "" {
		w.WriteHeader(code)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	if _, err := io.WriteString(w, message); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

// HandleError writes appropriate error response based on error type.
// Error details only go to the log.
func HandleError(w http.ResponseWriter, err error) {
	code := StatusFor(err)

	switch code {
	case http.StatusNotFound:
		WriteError(w, code, "")
	default:
		slog.Error("request error", "status", code, "error", err)
		WriteError(w, code, http.StatusText(code))
	}
}

// StatusFor maps an error to the status code reported to clients.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, bucketfront.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bucketfront.ErrSigning),
		errors.Is(err, bucketfront.ErrUpstreamFetch),
		errors.Is(err, bucketfront.ErrTimeout):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteResponse streams resp to the client and closes its body.
//
// The first chunk of the body is read before the status line is written, so
// a body that fails immediately becomes a 500. A failure after bytes have
// been sent aborts the connection, leaving the client with a truncated
// response.
func WriteResponse(w http.ResponseWriter, resp *bucketfront.Response) {
	defer func() { _ = resp.Body.Close() }()

	buf := make([]byte, streamBufferSize)
	n, readErr := readChunk(resp.Body, buf)
	if readErr != nil && !errors.Is(readErr, io.EOF) {
		HandleError(w, fmt.Errorf("stream %s: %w", resp.Key, errors.Join(bucketfront.ErrResponseBuild, readErr)))
		return
	}

	header := w.Header()
	for name, values := range resp.Header {
		header[name] = values
	}
	w.WriteHeader(resp.Status)

	if n > 0 {
		if _, err := w.Write(buf[:n]); err != nil {
			abort(resp.Key, err)
		}
	}
	if readErr != nil {
		return
	}

	if _, err := io.CopyBuffer(w, resp.Body, buf); err != nil {
		abort(resp.Key, err)
	}
}

func readChunk(r io.Reader, buf []byte) (int, error) {
	for {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func abort(key bucketfront.ObjectKey, err error) {
	slog.Warn("stream aborted", "key", key, "error", err)
	panic(http.ErrAbortHandler)
}
