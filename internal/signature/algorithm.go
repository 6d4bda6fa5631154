package signature

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"strings"

	"webhook-guard/internal/common/errors"
)

// Algorithm names a keyed MAC.
type Algorithm string

const (
	HmacSHA1   Algorithm = "HmacSHA1"
	HmacSHA256 Algorithm = "HmacSHA256"
	HmacSHA384 Algorithm = "HmacSHA384"
	HmacSHA512 Algorithm = "HmacSHA512"
)

// DefaultAlgorithm is used when no algorithm is configured.
const DefaultAlgorithm = HmacSHA256

var hashes = map[Algorithm]func() hash.Hash{
	HmacSHA1:   sha1.New,
	HmacSHA256: sha256.New,
	HmacSHA384: sha512.New384,
	HmacSHA512: sha512.New,
}

// ParseAlgorithm accepts the canonical names (HmacSHA256) as well as the
// lowercase hyphenated spelling used in config files (hmac-sha256).
func ParseAlgorithm(name string) (Algorithm, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	for alg := range hashes {
		if strings.ToLower(string(alg)) == key {
			return alg, nil
		}
	}
	return "", errors.ConfigErrorf("unsupported MAC algorithm: %q", name)
}

// Valid reports whether a is a supported algorithm.
func (a Algorithm) Valid() bool {
	_, ok := hashes[a]
	return ok
}

// Size is the MAC length in bytes, or 0 for an unsupported algorithm.
func (a Algorithm) Size() int {
	newHash, ok := hashes[a]
	if !ok {
		return 0
	}
	return newHash().Size()
}

func (a Algorithm) String() string {
	return string(a)
}
