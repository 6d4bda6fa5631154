package signature

import (
	"net/http"

	"webhook-guard/internal/middleware"
)

// RejectionMessage is the body of every rejected webhook. Missing and wrong
// signatures are deliberately indistinguishable.
const RejectionMessage = "Signature either wrong, or missing!"

// Rejection returns the fixed 403 response for a failed verification.
func Rejection() *middleware.Response {
	return middleware.Text(http.StatusForbidden, RejectionMessage)
}
