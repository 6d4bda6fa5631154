package signature

import (
	"encoding/hex"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webhook-guard/internal/common/errors"
)

const quickBrownFox = "The quick brown fox jumps over the lazy dog"

func TestParseAlgorithm(t *testing.T) {
	tests := []struct {
		input   string
		want    Algorithm
		wantErr bool
	}{
		{"HmacSHA256", HmacSHA256, false},
		{"HmacSHA384", HmacSHA384, false},
		{"HmacSHA512", HmacSHA512, false},
		{"HmacSHA1", HmacSHA1, false},
		{"hmac-sha256", HmacSHA256, false},
		{"HMAC-SHA512", HmacSHA512, false},
		{" hmacsha384 ", HmacSHA384, false},
		{"HmacMD5", "", true},
		{"HS256", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAlgorithm(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlgorithm_Size(t *testing.T) {
	assert.Equal(t, 20, HmacSHA1.Size())
	assert.Equal(t, 32, HmacSHA256.Size())
	assert.Equal(t, 48, HmacSHA384.Size())
	assert.Equal(t, 64, HmacSHA512.Size())
	assert.Equal(t, 0, Algorithm("HmacMD5").Size())
	assert.False(t, Algorithm("HmacMD5").Valid())
}

func TestNewSecret(t *testing.T) {
	t.Run("string", func(t *testing.T) {
		s, err := NewSecret("super-secret")
		require.NoError(t, err)
		assert.Equal(t, 12, s.Len())
	})

	t.Run("bytes are copied", func(t *testing.T) {
		raw := []byte("key")
		s, err := NewSecret(raw)
		require.NoError(t, err)
		raw[0] = 'X'

		signer, err := NewSigner(HmacSHA256, s)
		require.NoError(t, err)
		assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
			hex.EncodeToString(signer.Sign([]byte(quickBrownFox))))
	})

	t.Run("byte value sequences", func(t *testing.T) {
		want := mustSecret("key")
		for _, v := range []any{
			[]int{107, 101, 121},
			[]int64{107, 101, 121},
			[]int32{107, 101, 121},
			[]uint{107, 101, 121},
			[]uint16{107, 101, 121},
			[]uint32{107, 101, 121},
		} {
			got, err := NewSecret(v)
			require.NoError(t, err, "%T", v)
			assert.Equal(t, want, got, "%T", v)
		}
	})

	t.Run("sequence out of range", func(t *testing.T) {
		_, err := NewSecret([]int{1, 256})
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

		_, err = NewSecret([]int{-1})
		require.Error(t, err)
	})

	t.Run("existing secret", func(t *testing.T) {
		s := mustSecret("abc")
		got, err := NewSecret(s)
		require.NoError(t, err)
		assert.Equal(t, s, got)

		got, err = NewSecret(&s)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("unsupported types", func(t *testing.T) {
		for _, v := range []any{nil, 42, 3.14, map[string]string{}, []string{"a"}, (*Secret)(nil)} {
			_, err := NewSecret(v)
			require.Error(t, err, "%T", v)
			assert.True(t, errors.IsType(err, errors.ErrTypeConfig), "%T", v)
		}
	})

	t.Run("string form hides key", func(t *testing.T) {
		s := mustSecret("super-secret")
		assert.Equal(t, "Secret(12 bytes)", s.String())
		assert.NotContains(t, fmt.Sprintf("%v", s), "super")
	})

	t.Run("must secret panics", func(t *testing.T) {
		assert.Panics(t, func() { mustSecret(1.5) })
	})
}

func TestNewSigner_Errors(t *testing.T) {
	_, err := NewSigner("HmacMD5", mustSecret("key"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	_, err = NewSigner(HmacSHA256, mustSecret(""))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	_, err = NewSigner(HmacSHA256, Secret{})
	require.Error(t, err)
}

func TestSigner_KnownVectors(t *testing.T) {
	tests := []struct {
		alg  Algorithm
		key  string
		data string
		want string
	}{
		{HmacSHA1, "key", quickBrownFox, "de7c9b85b8b78aa6bc8a7a36f70a90701c9db4d9"},
		{HmacSHA256, "key", quickBrownFox, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8"},
		{HmacSHA384, "key", quickBrownFox, "d7f4727e2c0b39ae0f1e40cc96f60242d5b7801841cea6fc592c5d3e1ae50700582a96cf35e1e554995fe4e03381c237"},
		{HmacSHA512, "key", quickBrownFox, "b42af09057bac1e2d41708e48a902e09b5ff7f12ab428a4fe86653c73dd248fb82f948a549f7b791a5b41915ee4d1ec3935357e4e2317250d0372afa2ebeeb3a"},
		{HmacSHA256, "super-secret", `{"foo":"some-message"}`, "a9d1efced768c3a2369c4005e437e2d5966350db4a443cb185f41c8d549353fa"},
		{HmacSHA256, "super-secret", "", "a361ecd3f63b0c682a5f84871e54cc56f9067907ff48fa23e5eac2b6d7bcaa69"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%s", tt.alg, tt.key), func(t *testing.T) {
			signer, err := NewSigner(tt.alg, mustSecret(tt.key))
			require.NoError(t, err)
			assert.Equal(t, tt.alg, signer.Algorithm())

			sum := signer.Sign([]byte(tt.data))
			assert.Equal(t, tt.want, hex.EncodeToString(sum))
			assert.Len(t, sum, tt.alg.Size())
		})
	}
}

func TestSigner_Deterministic(t *testing.T) {
	signer, err := NewSigner(HmacSHA512, mustSecret([]byte{0, 1, 2, 3}))
	require.NoError(t, err)

	payloads := [][]byte{nil, {}, []byte("a"), []byte(quickBrownFox), make([]byte, 4096)}
	for _, p := range payloads {
		first := signer.Sign(p)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, signer.Sign(p))
		}
	}
}

func TestSigner_ResultIsNotShared(t *testing.T) {
	signer, err := NewSigner(HmacSHA256, mustSecret("key"))
	require.NoError(t, err)

	first := signer.Sign([]byte(quickBrownFox))
	first[0] ^= 0xff

	assert.Equal(t, "f7bc83f430538424b13298e6aa6fb143ef4d59a14946175997479dbc2d1a3cd8",
		hex.EncodeToString(signer.Sign([]byte(quickBrownFox))))
}

func TestSigner_Verify(t *testing.T) {
	signer, err := NewSigner(HmacSHA256, mustSecret("key"))
	require.NoError(t, err)

	sum := signer.Sign([]byte("payload"))
	assert.True(t, signer.Verify([]byte("payload"), sum))
	assert.False(t, signer.Verify([]byte("payload!"), sum))
	assert.False(t, signer.Verify([]byte("payload"), sum[:10]))
}

func TestSigner_Concurrent(t *testing.T) {
	signer, err := NewSigner(HmacSHA256, mustSecret("super-secret"))
	require.NoError(t, err)

	inputs := make([][]byte, 16)
	want := make([]string, len(inputs))
	for i := range inputs {
		inputs[i] = []byte(fmt.Sprintf(`{"seq":%d,"pad":"%0*d"}`, i, i*37, 0))
		want[i] = hex.EncodeToString(signer.Sign(inputs[i]))
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64*len(inputs))
	for g := 0; g < 64; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				i := (g + n) % len(inputs)
				if got := hex.EncodeToString(signer.Sign(inputs[i])); got != want[i] {
					errs <- fmt.Sprintf("input %d: got %s want %s", i, got, want[i])
					return
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}

func BenchmarkSigner_Sign(b *testing.B) {
	signer, err := NewSigner(HmacSHA256, mustSecret("super-secret"))
	require.NoError(b, err)
	payload := []byte(`{"foo":"some-message"}`)

	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			signer.Sign(payload)
		}
	})
}

// mustSecret is NewSecret for literals known to be valid.
func mustSecret(v any) Secret {
	s, err := NewSecret(v)
	if err != nil {
		panic(err)
	}
	return s
}
