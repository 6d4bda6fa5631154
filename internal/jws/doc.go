// Package jws produces and reads compact HMAC-signed tokens:
//
//	base64url(header) "." base64url(claims) "." base64url(signature)
//
// with base64url unpadded, a header of {"typ":"JWT","alg":"HS256"} (or
// HS384/HS512), and a signature over exactly the first two segments as they
// appear on the wire.
//
// The header/claims codec is injected; JSONEncoder and JSONDecoder are the
// usual choice.
//
//	producer, err := jws.NewProducer(jws.JSONEncoder, jws.HS256, secret)
//	tok, err := producer.Produce(jws.Claims{"admin": true})
//	compact := tok.String()
//
//	parsed, err := jws.NewReader(jws.JSONDecoder).Read(compact)
//	ok := parsed.Verify(secret)
//
// Claims are not interpreted: there is no expiry, audience or schema check.
package jws
