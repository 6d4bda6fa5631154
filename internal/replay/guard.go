// Package replay rejects webhook deliveries whose delivery ID has already
// been accepted within a time window.
//
// The guard runs after signature verification, so only authentic deliveries
// are recorded. Requests without a delivery ID pass through. A delivery whose
// downstream handler fails is forgotten again so the sender's retry is
// accepted.
package replay

import (
	"context"
	"net/http"
	"strings"
	"time"

	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/middleware"
)

// Store records delivery IDs. Remember must be atomic: of two concurrent
// calls with the same id, at most one reports true.
type Store interface {
	Remember(ctx context.Context, id string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, id string) error
}

const (
	// DuplicateMessage is the body of the 409 response.
	DuplicateMessage = "Duplicate delivery"
	// UnavailableMessage is the body of the 503 response.
	UnavailableMessage = "Replay protection unavailable"
)

// Options configure a Guard.
type Options struct {
	// Header carries the delivery ID, e.g. X-GitHub-Delivery. Required.
	Header string
	// TTL is how long an ID is remembered. Required.
	TTL time.Duration
	// Store holds the IDs. Required.
	Store Store
	// Logger defaults to the global logger.
	Logger logging.Logger
}

// Guard is the replay-protection middleware.
type Guard struct {
	header string
	ttl    time.Duration
	store  Store
	logger logging.Logger
}

// NewGuard validates opts.
func NewGuard(opts Options) (*Guard, error) {
	if strings.TrimSpace(opts.Header) == "" {
		return nil, errors.ConfigError("delivery ID header name is required")
	}
	if opts.TTL <= 0 {
		return nil, errors.ConfigError("replay TTL must be positive")
	}
	if opts.Store == nil {
		return nil, errors.ConfigError("replay store is required")
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetGlobalLogger()
	}

	return &Guard{
		header: opts.Header,
		ttl:    opts.TTL,
		store:  opts.Store,
		logger: opts.Logger.WithFields(logging.String("component", "replay")),
	}, nil
}

// Middleware wraps next with the guard, in both calling shapes.
func (g *Guard) Middleware() middleware.Middleware {
	return func(next middleware.Handler) middleware.Handler {
		return &guarded{guard: g, next: next}
	}
}

// admit records the delivery. A non-nil response ends the request.
func (g *Guard) admit(req *middleware.Request) (string, *middleware.Response) {
	id := strings.TrimSpace(req.Header.Get(g.header))
	if id == "" {
		return "", nil
	}

	ctx := req.Context()
	log := g.logger.WithContext(ctx).WithFields(logging.String("delivery_id", id))

	stored, err := g.store.Remember(ctx, id, g.ttl)
	if err != nil {
		log.Error("Failed to record delivery", err)
		return "", middleware.Text(http.StatusServiceUnavailable, UnavailableMessage)
	}
	if !stored {
		log.Warn("Duplicate delivery rejected")
		return "", middleware.Text(http.StatusConflict, DuplicateMessage)
	}

	req.SetContext(logging.ContextWithDeliveryID(ctx, id))
	return id, nil
}

// releaseTimeout bounds Forget once the request context is detached.
const releaseTimeout = 5 * time.Second

// release forgets id after a failed delivery. The failure may have been
// caused by the client going away, so the request's cancellation is not
// inherited.
func (g *Guard) release(ctx context.Context, id string) {
	if id == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := g.store.Forget(ctx, id); err != nil {
		g.logger.WithContext(ctx).Error("Failed to forget delivery", err, logging.String("delivery_id", id))
	}
}

type guarded struct {
	guard *Guard
	next  middleware.Handler
}

func (h *guarded) Handle(req *middleware.Request) (*middleware.Response, error) {
	id, reject := h.guard.admit(req)
	if reject != nil {
		return reject, nil
	}

	resp, err := h.next.Handle(req)
	if err != nil || (resp != nil && resp.Status >= http.StatusInternalServerError) {
		h.guard.release(req.Context(), id)
	}
	return resp, err
}

func (h *guarded) HandleAsync(req *middleware.Request, respond func(*middleware.Response), raise func(error)) {
	id, reject := h.guard.admit(req)
	if reject != nil {
		respond(reject)
		return
	}

	h.next.HandleAsync(req,
		func(resp *middleware.Response) {
			if resp != nil && resp.Status >= http.StatusInternalServerError {
				h.guard.release(req.Context(), id)
			}
			respond(resp)
		},
		func(err error) {
			h.guard.release(req.Context(), id)
			raise(err)
		},
	)
}
