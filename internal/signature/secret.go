package signature

import (
	"fmt"

	"webhook-guard/internal/common/errors"
)

// Secret is MAC key material. It is immutable once constructed.
type Secret struct {
	key []byte
}

// NewSecret resolves the accepted secret shapes into a Secret:
//   - string, taken as its UTF-8 bytes
//   - []byte, copied
//   - an ordered sequence of byte values ([]int, []int64, []uint, []uint16,
//     []uint32, []int32), each of which must be in 0..255
//   - Secret or *Secret, returned as is
//
// Anything else is a configuration error.
func NewSecret(v any) (Secret, error) {
	switch s := v.(type) {
	case Secret:
		return s, nil
	case *Secret:
		if s == nil {
			return Secret{}, errors.ConfigError("secret is required")
		}
		return *s, nil
	case string:
		return Secret{key: []byte(s)}, nil
	case []byte:
		return Secret{key: append([]byte(nil), s...)}, nil
	case []int:
		return fromSequence(s)
	case []int32:
		return fromSequence(s)
	case []int64:
		return fromSequence(s)
	case []uint:
		return fromSequence(s)
	case []uint16:
		return fromSequence(s)
	case []uint32:
		return fromSequence(s)
	case nil:
		return Secret{}, errors.ConfigError("secret is required")
	default:
		return Secret{}, errors.ConfigError("unsupported secret type").
			WithContext("type", fmt.Sprintf("%T", v))
	}
}

type integer interface {
	~int | ~int32 | ~int64 | ~uint | ~uint16 | ~uint32
}

func fromSequence[T integer](values []T) (Secret, error) {
	key := make([]byte, len(values))
	for i, v := range values {
		if v < 0 || uint64(v) > 255 {
			return Secret{}, errors.ConfigErrorf("secret byte %d out of range: %d", i, v)
		}
		key[i] = byte(v)
	}
	return Secret{key: key}, nil
}

// Len is the key length in bytes.
func (s Secret) Len() int {
	return len(s.key)
}

// IsEmpty reports whether the secret carries no key material.
func (s Secret) IsEmpty() bool {
	return len(s.key) == 0
}

// String never reveals the key.
func (s Secret) String() string {
	return fmt.Sprintf("Secret(%d bytes)", len(s.key))
}
