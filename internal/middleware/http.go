package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/logging"
)

// FromHTTP converts a net/http request. The body stream is shared, not copied.
func FromHTTP(r *http.Request) *Request {
	length := r.ContentLength
	if r.Body == nil || r.Body == http.NoBody {
		length = 0
	}
	return &Request{
		Method:        r.Method,
		URL:           r.URL,
		Header:        r.Header,
		ContentLength: length,
		Body:          r.Body,
		ctx:           r.Context(),
	}
}

// JSON builds an application/json response. Encoding failures become a 500.
func JSON(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return Text(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
	return &Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   body,
	}
}

// WriteTo writes the response to w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	for key, values := range r.Header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(r.Body)))

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, err := w.Write(r.Body)
	return err
}

// StatusFor maps an error returned by a handler to an HTTP status.
func StatusFor(err error) int {
	switch errors.GetType(err) {
	case errors.ErrTypeTokenParse, errors.ErrTypeValidation:
		return http.StatusBadRequest
	case errors.ErrTypeTooLarge:
		return http.StatusRequestEntityTooLarge
	case errors.ErrTypeConflict:
		return http.StatusConflict
	case errors.ErrTypeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP serves h through net/http using the synchronous shape. Handler errors
// are logged and answered with a plain status text body.
func ToHTTP(h Handler, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := FromHTTP(r)
		log := logger.WithContext(r.Context())

		resp, err := h.Handle(req)
		if err != nil {
			status := StatusFor(err)
			if status >= http.StatusInternalServerError {
				log.Error("Handler failed", err, logging.String("path", r.URL.Path))
			} else {
				log.Debug("Handler rejected request", logging.Err(err), logging.String("path", r.URL.Path))
			}
			resp = Text(status, http.StatusText(status))
		}
		if resp == nil {
			resp = &Response{Status: http.StatusNoContent}
		}

		if err := resp.WriteTo(w); err != nil {
			log.Debug("Failed to write response", logging.Err(err))
		}
	})
}
