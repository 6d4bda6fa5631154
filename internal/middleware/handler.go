// Package middleware provides the request model and handler conventions shared
// by the webhook and token endpoints, plus net/http adapters.
//
// A Handler can be driven in two shapes:
//
//	resp, err := h.Handle(req)
//	h.HandleAsync(req, func(resp *Response) { ... }, func(err error) { ... })
//
// Middlewares built with Before run the same pre-processing step for both
// shapes before delegating to the wrapped handler in the shape it was called
// with.
package middleware

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Request is an inbound request as seen by the middleware chain.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header
	// ContentLength is the declared body length, -1 when unknown.
	ContentLength int64
	Body          io.ReadCloser
	// RawBody holds the exact body bytes once CaptureRawBody has run for this
	// request. It is nil until then, and never nil afterwards (an empty body is
	// captured as an empty slice).
	RawBody []byte

	ctx context.Context
}

// NewRequest builds a Request with an unknown content length.
func NewRequest(ctx context.Context, method, target string, body io.ReadCloser) (*Request, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}
	return &Request{
		Method:        method,
		URL:           u,
		Header:        make(http.Header),
		ContentLength: -1,
		Body:          body,
		ctx:           ctx,
	}, nil
}

// Context returns the request context, never nil.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// SetContext replaces the request context.
func (r *Request) SetContext(ctx context.Context) {
	r.ctx = ctx
}

// HasRawBody reports whether the raw body has been captured.
func (r *Request) HasRawBody() bool {
	return r.RawBody != nil
}

// Response is what a handler produces.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Text builds a text/plain response.
func Text(status int, body string) *Response {
	return &Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(body),
	}
}

// Handler serves a Request in either calling shape.
type Handler interface {
	Handle(req *Request) (*Response, error)
	HandleAsync(req *Request, respond func(*Response), raise func(error))
}

// HandlerFunc adapts a synchronous function to Handler.
type HandlerFunc func(req *Request) (*Response, error)

// Handle calls f(req).
func (f HandlerFunc) Handle(req *Request) (*Response, error) {
	return f(req)
}

// HandleAsync calls f(req) and passes the outcome to the matching continuation.
func (f HandlerFunc) HandleAsync(req *Request, respond func(*Response), raise func(error)) {
	resp, err := f(req)
	if err != nil {
		raise(err)
		return
	}
	respond(resp)
}

// AsyncHandlerFunc adapts a continuation-passing function to Handler.
type AsyncHandlerFunc func(req *Request, respond func(*Response), raise func(error))

// HandleAsync calls f.
func (f AsyncHandlerFunc) HandleAsync(req *Request, respond func(*Response), raise func(error)) {
	f(req, respond, raise)
}

// Handle calls f and waits for the first continuation it invokes, or for the
// request context to end.
func (f AsyncHandlerFunc) Handle(req *Request) (*Response, error) {
	type result struct {
		resp *Response
		err  error
	}

	done := make(chan result, 1)
	var once sync.Once
	f(req,
		func(resp *Response) { once.Do(func() { done <- result{resp: resp} }) },
		func(err error) { once.Do(func() { done <- result{err: err} }) },
	)

	select {
	case res := <-done:
		return res.resp, res.err
	case <-req.Context().Done():
		return nil, req.Context().Err()
	}
}

// Middleware wraps a Handler.
type Middleware func(Handler) Handler

// Step is one pre-processing step. Returning a non-nil Response short-circuits
// the chain with that response; returning an error aborts it.
type Step func(req *Request) (*Response, error)

// Before turns a Step into a Middleware. Both calling shapes run the same step
// before delegating.
func Before(step Step) Middleware {
	return func(next Handler) Handler {
		return &before{step: step, next: next}
	}
}

type before struct {
	step Step
	next Handler
}

func (b *before) Handle(req *Request) (*Response, error) {
	resp, err := b.step(req)
	if err != nil {
		return nil, err
	}
	if resp != nil {
		return resp, nil
	}
	return b.next.Handle(req)
}

func (b *before) HandleAsync(req *Request, respond func(*Response), raise func(error)) {
	resp, err := b.step(req)
	if err != nil {
		raise(err)
		return
	}
	if resp != nil {
		respond(resp)
		return
	}
	b.next.HandleAsync(req, respond, raise)
}

// Chain wraps h with mws. The first middleware is the outermost.
func Chain(h Handler, mws ...Middleware) Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
