package jws

import (
	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/signature"
)

// Producer signs claim sets with one algorithm and secret.
type Producer struct {
	encode Encoder
	header Header
	signer *signature.Signer
}

// NewProducer builds a Producer. A nil encoder selects JSONEncoder. The
// secret accepts the same shapes as signature.NewSecret.
func NewProducer(encode Encoder, alg Algorithm, secret any) (*Producer, error) {
	mac, ok := alg.MAC()
	if !ok {
		return nil, errors.ConfigErrorf("unsupported JWS algorithm: %q", string(alg))
	}

	key, err := signature.NewSecret(secret)
	if err != nil {
		return nil, err
	}
	signer, err := signature.NewSigner(mac, key)
	if err != nil {
		return nil, err
	}

	if encode == nil {
		encode = JSONEncoder
	}
	return &Producer{
		encode: encode,
		header: Header{Type: TypeJWT, Algorithm: alg},
		signer: signer,
	}, nil
}

// Produce encodes header and claims, signs header64.claims64 and returns the
// token. Nil claims are produced as an empty claim set.
func (p *Producer) Produce(claims Claims) (*Token, error) {
	if claims == nil {
		claims = Claims{}
	}

	header, err := p.encode(p.header)
	if err != nil {
		return nil, errors.InternalError("failed to encode header", err)
	}
	body, err := p.encode(claims)
	if err != nil {
		return nil, errors.InternalError("failed to encode claims", err)
	}

	signingInput := encoding.EncodeToString(header) + "." + encoding.EncodeToString(body)
	sig := p.signer.Sign([]byte(signingInput))
	sig64 := encoding.EncodeToString(sig)

	return &Token{
		Header:       p.header,
		Claims:       claims,
		Signature:    sig,
		compact:      signingInput + "." + sig64,
		signingInput: signingInput,
		signature64:  sig64,
	}, nil
}
