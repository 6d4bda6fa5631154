package jws

import (
	"bytes"
	"crypto/hmac"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"

	"webhook-guard/internal/signature"
)

// TypeJWT is the only "typ" this package produces.
const TypeJWT = "JWT"

var encoding = base64.RawURLEncoding

// Header is the JOSE header. Field order is the wire order.
type Header struct {
	Type      string    `json:"typ"`
	Algorithm Algorithm `json:"alg"`
}

// Claims is an arbitrary claim set. No claim is interpreted.
type Claims map[string]any

// Encoder turns a header or claim set into bytes.
type Encoder func(v any) ([]byte, error)

// Decoder fills v from bytes.
type Decoder func(data []byte, v any) error

// JSON codec used when none is injected. The decoder keeps numbers as
// json.Number so that re-encoding a decoded claim set reproduces it exactly.
var (
	JSONEncoder Encoder = json.Marshal
	JSONDecoder Decoder = decodeJSON
)

var errTrailingData = errors.New("unexpected data after JSON value")

func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errTrailingData
	}
	return nil
}

// Token is a signed header and claim set.
type Token struct {
	Header    Header
	Claims    Claims
	Signature []byte

	// compact is header64.claims64.signature64; signingInput is the
	// header64.claims64 prefix the signature covers.
	compact      string
	signingInput string
	signature64  string
}

// String returns the compact serialisation.
func (t *Token) String() string {
	return t.compact
}

// SigningInput returns the exact header64.claims64 bytes the signature covers.
func (t *Token) SigningInput() string {
	return t.signingInput
}

// Verify recomputes the signature with secret and compares it with the
// token's signature segment. An unknown alg tag or an unusable secret makes
// the token unverifiable, which is reported as false.
func (t *Token) Verify(secret any) bool {
	mac, ok := t.Header.Algorithm.MAC()
	if !ok {
		return false
	}

	key, err := signature.NewSecret(secret)
	if err != nil {
		return false
	}
	signer, err := signature.NewSigner(mac, key)
	if err != nil {
		return false
	}

	expected := encoding.EncodeToString(signer.Sign([]byte(t.signingInput)))
	return hmac.Equal([]byte(expected), []byte(t.signature64))
}
