package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/common/validation"
	"webhook-guard/internal/jws"
)

// maxTokenRequestBytes bounds the bodies of the token endpoints.
const maxTokenRequestBytes = 1 << 20

// HealthCheck reports the health of one dependency.
type HealthCheck func(ctx context.Context) error

type Handlers struct {
	pathPrefix string
	producer   *jws.Producer
	reader     *jws.Reader
	jwsSecret  string
	checks     map[string]HealthCheck
	validator  *validation.Validator
	logger     logging.Logger
}

// Options wire the handlers to the rest of the application. Producer may be
// nil, in which case the token endpoints answer 404.
type Options struct {
	PathPrefix string
	Producer   *jws.Producer
	Reader     *jws.Reader
	JWSSecret  string
	Checks     map[string]HealthCheck
	Logger     logging.Logger
}

func New(opts Options) *Handlers {
	if opts.Reader == nil {
		opts.Reader = jws.NewReader(nil)
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		pathPrefix: opts.PathPrefix,
		producer:   opts.Producer,
		reader:     opts.Reader,
		jwsSecret:  opts.JWSSecret,
		checks:     opts.Checks,
		validator:  validation.New(),
		logger:     opts.Logger.WithFields(logging.String("component", "handlers")),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
