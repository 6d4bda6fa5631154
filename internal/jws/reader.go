package jws

import (
	"strings"

	"webhook-guard/internal/common/errors"
)

// Reader parses compact tokens. It never checks signatures itself; call
// Token.Verify with the secret of your choice.
type Reader struct {
	decode Decoder
}

// NewReader builds a Reader. A nil decoder selects JSONDecoder.
func NewReader(decode Decoder) *Reader {
	if decode == nil {
		decode = JSONDecoder
	}
	return &Reader{decode: decode}
}

// Read splits s into header, claims and signature and decodes each part.
// Structural problems are errors of type token_parse.
func (r *Reader) Read(s string) (*Token, error) {
	parts := strings.SplitN(s, ".", 3)
	if len(parts) < 3 {
		return nil, errors.TokenParseError("token must have three dot-separated parts", nil).
			WithContext("parts", len(parts))
	}

	var header Header
	if err := r.decodeSegment(parts[0], &header); err != nil {
		return nil, errors.TokenParseError("invalid header segment", err)
	}

	var claims Claims
	if err := r.decodeSegment(parts[1], &claims); err != nil {
		return nil, errors.TokenParseError("invalid claims segment", err)
	}

	sig, err := encoding.DecodeString(parts[2])
	if err != nil {
		return nil, errors.TokenParseError("invalid signature segment", err)
	}

	return &Token{
		Header:       header,
		Claims:       claims,
		Signature:    sig,
		compact:      s,
		signingInput: parts[0] + "." + parts[1],
		signature64:  parts[2],
	}, nil
}

func (r *Reader) decodeSegment(segment string, v any) error {
	data, err := encoding.DecodeString(segment)
	if err != nil {
		return err
	}
	return r.decode(data, v)
}
