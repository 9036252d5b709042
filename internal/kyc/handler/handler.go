// Package handler is the thin HTTP surface over the kyc service. It only
// decodes requests, delegates, and translates domain errors; protocol
// logic stays in the service.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"mockauthn/internal/kyc/models"
	"mockauthn/internal/platform/middleware"
	dErrors "mockauthn/pkg/domain-errors"
)

// Service defines the kyc operations the handler exposes.
type Service interface {
	DoKycAuth(ctx context.Context, relyingPartyID, clientID string, req *models.KycAuthRequest) (*models.KycAuthResult, error)
	DoKycExchange(ctx context.Context, relyingPartyID, clientID string, req *models.KycExchangeRequest) (*models.KycExchangeResult, error)
	SendOtp(ctx context.Context, relyingPartyID, clientID string, req *models.OtpRequest) (*models.SendOtpResult, error)
}

type Handler struct {
	logger *slog.Logger
	kyc    Service
}

func New(kyc Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, kyc: kyc}
}

// Register mounts the kyc routes on the router.
func (h *Handler) Register(r chi.Router) {
	kycRouter := chi.NewRouter()
	kycRouter.Use(middleware.Recovery(h.logger))
	kycRouter.Use(middleware.RequestID)
	kycRouter.Use(middleware.Logger(h.logger))
	kycRouter.Use(timeout(30 * time.Second))
	kycRouter.Post("/v1/kyc-auth/{relyingPartyId}/{clientId}", h.handleKycAuth)
	kycRouter.Post("/v1/kyc-exchange/{relyingPartyId}/{clientId}", h.handleKycExchange)
	kycRouter.Post("/v1/send-otp/{relyingPartyId}/{clientId}", h.handleSendOtp)

	r.Mount("/", kycRouter)
}

func (h *Handler) handleKycAuth(w http.ResponseWriter, r *http.Request) {
	var req models.KycAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid_request"))
		return
	}

	result, err := h.kyc.DoKycAuth(r.Context(),
		chi.URLParam(r, "relyingPartyId"), chi.URLParam(r, "clientId"), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) handleKycExchange(w http.ResponseWriter, r *http.Request) {
	var req models.KycExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid_request"))
		return
	}

	result, err := h.kyc.DoKycExchange(r.Context(),
		chi.URLParam(r, "relyingPartyId"), chi.URLParam(r, "clientId"), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

func (h *Handler) handleSendOtp(w http.ResponseWriter, r *http.Request) {
	var req models.OtpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid_request"))
		return
	}

	result, err := h.kyc.SendOtp(r.Context(),
		chi.URLParam(r, "relyingPartyId"), chi.URLParam(r, "clientId"), &req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, result)
}

type errorEntry struct {
	ErrorCode    string `json:"errorCode"`
	ErrorMessage string `json:"errorMessage"`
}

type errorEnvelope struct {
	Errors []errorEntry `json:"errors"`
}

var errorMessages = map[string]string{
	models.CodeAuthFailed:     "authentication failed",
	models.CodeInvalidToken:   "provided invalid kyc token",
	models.CodeExchangeFailed: "failed to build kyc data",
	models.CodeSendOtpFailed:  "failed to send otp",
	models.CodeHashGeneration: "failed to generate partner specific user token",
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.MessageOf(err)
	message, ok := errorMessages[code]
	if !ok {
		// Validation and decode failures carry their own message under a
		// shared code.
		message = code
		code = "invalid_request"
	}

	h.logger.WarnContext(r.Context(), "request failed",
		"request_id", middleware.GetRequestID(r.Context()),
		"error_code", code,
	)
	h.writeJSON(w, r, dErrors.ToHTTPStatus(dErrors.CodeOf(err)), errorEnvelope{
		Errors: []errorEntry{{ErrorCode: code, ErrorMessage: message}},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to write response", "error", err)
	}
}

func timeout(d time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
