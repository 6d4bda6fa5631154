package signature

import (
	"crypto/hmac"
	"hash"
	"sync"

	"webhook-guard/internal/common/errors"
)

// Signer computes keyed MACs with one algorithm and one secret.
//
// A Signer is safe for concurrent use. The algorithm and key form a
// read-only template; every Sign call takes a MAC state of its own from a
// pool, resets it, and hands it back only after the digest is copied out, so
// no two in-flight calls ever touch the same hash state.
type Signer struct {
	alg  Algorithm
	key  []byte
	macs sync.Pool
}

// NewSigner binds alg to secret. It fails with a configuration error when the
// algorithm is unknown or the secret is empty.
func NewSigner(alg Algorithm, secret Secret) (*Signer, error) {
	newHash, ok := hashes[alg]
	if !ok {
		return nil, errors.ConfigErrorf("unsupported MAC algorithm: %q", string(alg))
	}
	if secret.IsEmpty() {
		return nil, errors.ConfigError("secret must not be empty")
	}

	s := &Signer{
		alg: alg,
		key: append([]byte(nil), secret.key...),
	}
	s.macs.New = func() any {
		return hmac.New(newHash, s.key)
	}
	return s, nil
}

// Algorithm returns the MAC algorithm the signer was built with.
func (s *Signer) Algorithm() Algorithm {
	return s.alg
}

// Sign returns the MAC of data. The result is freshly allocated.
func (s *Signer) Sign(data []byte) []byte {
	mac := s.macs.Get().(hash.Hash)
	defer s.macs.Put(mac)

	mac.Reset()
	mac.Write(data)
	return mac.Sum(nil)
}

// Verify reports whether sum is the MAC of data, in constant time.
func (s *Signer) Verify(data, sum []byte) bool {
	return hmac.Equal(s.Sign(data), sum)
}
