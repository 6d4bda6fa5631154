package signature

import (
	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/middleware"
)

// Verifier checks webhook signatures over the captured raw body.
type Verifier struct {
	signer    *Signer
	header    string
	transform func(string) string
	equal     func(provided, expected string) bool
	format    func([]byte) string
	logger    logging.Logger
}

// NewVerifier validates opts, resolves the secret and builds the signer.
// All configuration problems surface here, never per request.
func NewVerifier(opts Options) (*Verifier, error) {
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	secret, err := NewSecret(opts.Secret)
	if err != nil {
		return nil, err
	}
	if secret.IsEmpty() {
		return nil, errors.ConfigError("secret is required")
	}

	signer, err := NewSigner(opts.Algorithm, secret)
	if err != nil {
		return nil, err
	}

	return &Verifier{
		signer:    signer,
		header:    opts.SignatureHeader,
		transform: opts.SignatureTransform,
		equal:     opts.SignatureEqual,
		format:    opts.HexFormat,
		logger:    opts.Logger.WithFields(logging.String("component", "signature")),
	}, nil
}

// Verify reports whether req carries a valid signature. The returned error
// explains a rejection for logging; it is nil exactly when the request passes.
func (v *Verifier) Verify(req *middleware.Request) error {
	if !req.HasRawBody() {
		return errors.VerificationError("raw body was not captured")
	}

	provided := req.Header.Get(v.header)
	if provided == "" {
		return errors.VerificationError("missing signature header").WithContext("header", v.header)
	}

	expected := v.format(v.signer.Sign(req.RawBody))
	if !v.equal(v.transform(provided), expected) {
		return errors.VerificationError("signature mismatch").WithContext("header", v.header)
	}
	return nil
}

// Check is Verify as a boolean.
func (v *Verifier) Check(req *middleware.Request) bool {
	return v.Verify(req) == nil
}

// Middleware rejects requests that fail Verify with the fixed 403 response,
// in both calling shapes. It must run after middleware.CaptureRawBody.
func (v *Verifier) Middleware() middleware.Middleware {
	return middleware.Before(func(req *middleware.Request) (*middleware.Response, error) {
		if err := v.Verify(req); err != nil {
			fields := []logging.Field{logging.Err(err)}
			if req.URL != nil {
				fields = append(fields, logging.String("path", req.URL.Path))
			}
			v.logger.WithContext(req.Context()).Warn("Webhook signature rejected", fields...)
			return Rejection(), nil
		}
		return nil, nil
	})
}

// Sign returns the formatted signature of body, as a sender would put it in
// the signature header before any prefix is added.
func (v *Verifier) Sign(body []byte) string {
	return v.format(v.signer.Sign(body))
}
