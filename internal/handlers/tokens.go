package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"webhook-guard/internal/common/errors"
	"webhook-guard/internal/common/logging"
	"webhook-guard/internal/jws"
	"webhook-guard/internal/middleware"
)

type tokenResponse struct {
	Token string `json:"token"`
}

type verifyRequest struct {
	Token string `json:"token" validate:"notblank,max=65536"`
}

type verifyResponse struct {
	Valid  bool       `json:"valid"`
	Header jws.Header `json:"header"`
	Claims jws.Claims `json:"claims"`
}

// IssueToken signs the JSON object in the request body as a claim set.
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	if h.producer == nil {
		writeError(w, http.StatusNotFound, "token issuing is not configured")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxTokenRequestBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object of claims")
		return
	}
	var claims jws.Claims
	if err := jws.JSONDecoder(body, &claims); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object of claims")
		return
	}

	token, err := h.producer.Produce(claims)
	if err != nil {
		h.logger.WithContext(r.Context()).Error("Failed to produce token", err)
		writeError(w, http.StatusInternalServerError, "failed to produce token")
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token.String()})
}

// VerifyToken parses a compact token and checks its signature with the
// configured secret. Structurally malformed tokens are a 400; a bad
// signature is a 200 with valid=false.
func (h *Handlers) VerifyToken(w http.ResponseWriter, r *http.Request) {
	if h.producer == nil {
		writeError(w, http.StatusNotFound, "token verification is not configured")
		return
	}

	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxTokenRequestBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be {\"token\": \"...\"}")
		return
	}
	if err := h.validator.Request(req); err != nil {
		writeError(w, middleware.StatusFor(err), err.Message)
		return
	}

	token, err := h.reader.Read(req.Token)
	if err != nil {
		if errors.IsType(err, errors.ErrTypeTokenParse) {
			h.logger.WithContext(r.Context()).Debug("Malformed token", logging.Err(err))
			writeError(w, http.StatusBadRequest, "malformed token")
			return
		}
		h.logger.WithContext(r.Context()).Error("Failed to read token", err)
		writeError(w, http.StatusInternalServerError, "failed to read token")
		return
	}

	valid := token.Verify(h.jwsSecret)
	if !valid {
		h.logger.WithContext(r.Context()).Info("Token signature rejected",
			logging.String("alg", string(token.Header.Algorithm)))
	}

	writeJSON(w, http.StatusOK, verifyResponse{
		Valid:  valid,
		Header: token.Header,
		Claims: token.Claims,
	})
}
