// Package signature authenticates webhook payloads with keyed MACs.
//
// A Signer binds one HMAC algorithm to one Secret and is safe to share
// between goroutines. A Verifier recomputes the MAC over the exact raw body
// captured by middleware.CaptureRawBody, renders it as hex, and compares it
// with the value of a configured header.
//
// # Usage
//
//	verifier, err := signature.NewVerifier(signature.Options{
//	    Secret:             os.Getenv("GITHUB_WEBHOOK_SECRET"),
//	    SignatureHeader:    "X-Hub-Signature-256",
//	    SignatureTransform: signature.StripPrefix("sha256="),
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	h := middleware.Chain(handler,
//	    middleware.CaptureRawBody(middleware.PathPrefix("/webhooks/")),
//	    verifier.Middleware(),
//	)
//
// Every failure (missing raw body, missing header, mismatch) yields the same
// 403 text/plain response with the body "Signature either wrong, or missing!".
// The reason is only logged.
//
// Configuration errors (empty secret, missing header name, unknown algorithm,
// unsupported secret type) are reported by NewVerifier and NewSigner as
// errors of type config.
package signature
