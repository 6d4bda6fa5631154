package middleware

import (
	"bytes"
	"io"
	"net/url"
	"strconv"
	"strings"

	"webhook-guard/internal/common/errors"
)

// Selector picks the requests whose body should be captured.
type Selector func(u *url.URL) bool

// PathPrefix selects requests whose path starts with prefix.
func PathPrefix(prefix string) Selector {
	return func(u *url.URL) bool {
		return u != nil && strings.HasPrefix(u.Path, prefix)
	}
}

// CaptureRawBody drains the body of every selected request into
// Request.RawBody and replaces Request.Body with a fresh reader over the same
// bytes. The original body is always closed. Requests that are not selected,
// or whose body was already captured, pass through untouched.
func CaptureRawBody(selector Selector) Middleware {
	return CaptureRawBodyMax(selector, 0)
}

// CaptureRawBodyMax is CaptureRawBody with a cap on the captured size. A body
// declared or found to be larger than maxBytes fails with a too_large error
// without being buffered. maxBytes <= 0 means no cap.
func CaptureRawBodyMax(selector Selector, maxBytes int64) Middleware {
	return Before(func(req *Request) (*Response, error) {
		if selector == nil || req.HasRawBody() || !selector(req.URL) {
			return nil, nil
		}

		raw, err := drain(req, maxBytes)
		if err != nil {
			return nil, err
		}

		req.RawBody = raw
		req.Body = io.NopCloser(bytes.NewReader(raw))
		return nil, nil
	})
}

// initialBufferSize caps the up-front allocation for a declared length.
const initialBufferSize = 64 << 10

func drain(req *Request, maxBytes int64) ([]byte, error) {
	if req.Body == nil {
		return []byte{}, nil
	}
	body := req.Body
	defer body.Close()

	n := declaredLength(req)
	if maxBytes > 0 && n > maxBytes {
		return nil, tooLarge(maxBytes).WithContext("declared", n)
	}
	if n < 0 {
		var r io.Reader = body
		if maxBytes > 0 {
			r = io.LimitReader(body, maxBytes+1)
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			return nil, errors.InternalError("failed to read request body", err)
		}
		if maxBytes > 0 && int64(len(raw)) > maxBytes {
			return nil, tooLarge(maxBytes)
		}
		if raw == nil {
			raw = []byte{}
		}
		return raw, nil
	}

	buf := bytes.NewBuffer(make([]byte, 0, min(n, initialBufferSize)))
	read, err := io.CopyN(buf, body, n)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.InternalError("failed to read request body", err).
			WithContext("declared", n).
			WithContext("read", read)
	}
	return buf.Bytes(), nil
}

func tooLarge(maxBytes int64) *errors.AppError {
	return errors.TooLargeError("request body exceeds the size limit").WithContext("limit", maxBytes)
}

// declaredLength prefers the ContentLength field and falls back to the
// Content-Length header. -1 means read until EOF.
func declaredLength(req *Request) int64 {
	if req.ContentLength >= 0 {
		return req.ContentLength
	}
	if v := req.Header.Get("Content-Length"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil && n >= 0 {
			return n
		}
	}
	return -1
}
