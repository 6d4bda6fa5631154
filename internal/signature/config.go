package signature

import (
	"crypto/subtle"
	"encoding/hex"
	"strings"

	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/logging"
)

// Options configure a Verifier.
type Options struct {
	// Algorithm is the MAC algorithm. Default: HmacSHA256.
	Algorithm Algorithm

	// Secret is the shared key: a string, a []byte, or a sequence of byte
	// values (see NewSecret). Required.
	Secret any

	// SignatureHeader names the header carrying the signature. Required.
	SignatureHeader string

	// SignatureTransform is applied to the header value before comparison,
	// e.g. StripPrefix("sha256="). Default: identity.
	SignatureTransform func(string) string

	// SignatureEqual compares the transformed header value with the computed
	// digest. Default: exact equality.
	SignatureEqual func(provided, expected string) bool

	// HexFormat renders the computed MAC. Default: lowercase hex.
	HexFormat func([]byte) string

	// Logger receives rejection reasons. Default: the global logger.
	Logger logging.Logger
}

// SetDefaults fills in every optional field left empty.
func (o *Options) SetDefaults() {
	if o.Algorithm == "" {
		o.Algorithm = DefaultAlgorithm
	}
	if o.SignatureTransform == nil {
		o.SignatureTransform = Identity
	}
	if o.SignatureEqual == nil {
		o.SignatureEqual = ExactEqual
	}
	if o.HexFormat == nil {
		o.HexFormat = hex.EncodeToString
	}
	if o.Logger == nil {
		o.Logger = logging.GetGlobalLogger()
	}
}

// Validate checks the options. It does not resolve the secret.
func (o *Options) Validate() error {
	if strings.TrimSpace(o.SignatureHeader) == "" {
		return errors.ConfigError("signature header name is required")
	}
	if !o.Algorithm.Valid() {
		return errors.ConfigErrorf("unsupported MAC algorithm: %q", string(o.Algorithm))
	}
	return nil
}

// Identity returns s unchanged.
func Identity(s string) string {
	return s
}

// StripPrefix returns a transform that removes prefix when present, as in
// GitHub's "sha256=<hex>" header values.
func StripPrefix(prefix string) func(string) string {
	return func(s string) string {
		return strings.TrimPrefix(s, prefix)
	}
}

// ExactEqual is plain string equality.
func ExactEqual(provided, expected string) bool {
	return provided == expected
}

// ConstantTimeEqual compares in time independent of where the strings differ.
func ConstantTimeEqual(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

// UpperHex renders b as uppercase hex.
func UpperHex(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}

// FileConfig is the plain-value form of Options, as read from environment
// variables.
type FileConfig struct {
	Algorithm       string
	Secret          string
	SignatureHeader string
	// SignaturePrefix is stripped from the header value before comparison.
	SignaturePrefix string
	// Encoding is "hex" (default) or "HEX".
	Encoding string
	// ConstantTime selects ConstantTimeEqual instead of exact equality.
	ConstantTime bool
}

// Options converts the plain form into Options.
func (c FileConfig) Options() (Options, error) {
	opts := Options{
		Secret:          c.Secret,
		SignatureHeader: c.SignatureHeader,
	}

	if c.Algorithm != "" {
		alg, err := ParseAlgorithm(c.Algorithm)
		if err != nil {
			return Options{}, err
		}
		opts.Algorithm = alg
	}

	if c.SignaturePrefix != "" {
		opts.SignatureTransform = StripPrefix(c.SignaturePrefix)
	}

	switch c.Encoding {
	case "", "hex":
	case "HEX":
		opts.HexFormat = UpperHex
	default:
		return Options{}, errors.ConfigErrorf("unsupported signature encoding: %q", c.Encoding)
	}

	if c.ConstantTime {
		opts.SignatureEqual = ConstantTimeEqual
	}
	return opts, nil
}
