package jws

import (
	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/signature"
)

// Algorithm is a JWS "alg" tag.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
)

var macNames = map[Algorithm]signature.Algorithm{
	HS256: signature.HmacSHA256,
	HS384: signature.HmacSHA384,
	HS512: signature.HmacSHA512,
}

// ParseAlgorithm validates an alg tag.
func ParseAlgorithm(tag string) (Algorithm, error) {
	alg := Algorithm(tag)
	if _, ok := macNames[alg]; !ok {
		return "", errors.ConfigErrorf("unsupported JWS algorithm: %q", tag)
	}
	return alg, nil
}

// MAC returns the MAC algorithm behind the tag.
func (a Algorithm) MAC() (signature.Algorithm, bool) {
	mac, ok := macNames[a]
	return mac, ok
}
