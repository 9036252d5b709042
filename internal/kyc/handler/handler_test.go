package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockauthn/internal/kyc/models"
)

// fakeService records calls and returns canned results.
type fakeService struct {
	authResult     *models.KycAuthResult
	authErr        error
	exchangeResult *models.KycExchangeResult
	exchangeErr    error
	otpResult      *models.SendOtpResult
	otpErr         error

	gotRelyingParty string
	gotClientID     string
}

func (f *fakeService) DoKycAuth(_ context.Context, relyingPartyID, clientID string, _ *models.KycAuthRequest) (*models.KycAuthResult, error) {
	f.gotRelyingParty, f.gotClientID = relyingPartyID, clientID
	return f.authResult, f.authErr
}

func (f *fakeService) DoKycExchange(_ context.Context, relyingPartyID, clientID string, _ *models.KycExchangeRequest) (*models.KycExchangeResult, error) {
	f.gotRelyingParty, f.gotClientID = relyingPartyID, clientID
	return f.exchangeResult, f.exchangeErr
}

func (f *fakeService) SendOtp(_ context.Context, relyingPartyID, clientID string, _ *models.OtpRequest) (*models.SendOtpResult, error) {
	f.gotRelyingParty, f.gotClientID = relyingPartyID, clientID
	return f.otpResult, f.otpErr
}

func newTestRouter(svc Service) http.Handler {
	r := chi.NewRouter()
	New(svc, slog.Default()).Register(r)
	return r
}

func TestHandleKycAuth(t *testing.T) {
	fake := &fakeService{authResult: &models.KycAuthResult{
		KycToken:                 "tok",
		PartnerSpecificUserToken: "psut",
	}}
	router := newTestRouter(fake)

	body := `{"individualId":"9256","challengeList":[{"authFactorType":"PIN","challenge":"1234"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/kyc-auth/rp-1/client-1", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "rp-1", fake.gotRelyingParty)
	assert.Equal(t, "client-1", fake.gotClientID)

	var result models.KycAuthResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "tok", result.KycToken)
	assert.Equal(t, "psut", result.PartnerSpecificUserToken)
}

func TestHandleKycAuthFailure(t *testing.T) {
	fake := &fakeService{authErr: models.ErrAuthFailed()}
	router := newTestRouter(fake)

	body := `{"individualId":"9256","challengeList":[{"authFactorType":"PIN","challenge":"0000"}]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/kyc-auth/rp-1/client-1", strings.NewReader(body)))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var envelope struct {
		Errors []struct {
			ErrorCode string `json:"errorCode"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Errors, 1)
	assert.Equal(t, models.CodeAuthFailed, envelope.Errors[0].ErrorCode)
}

func TestHandleKycAuthRejectsBadJSON(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/kyc-auth/rp-1/client-1", strings.NewReader("{broken")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleKycExchange(t *testing.T) {
	fake := &fakeService{exchangeResult: &models.KycExchangeResult{EncryptedKyc: "jwe"}}
	router := newTestRouter(fake)

	body := `{"kycToken":"tok","acceptedClaims":["name"],"claimsLocales":["eng"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/kyc-exchange/rp-1/client-1", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.KycExchangeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "jwe", result.EncryptedKyc)
}

func TestHandleKycExchangeInvalidToken(t *testing.T) {
	fake := &fakeService{exchangeErr: models.ErrInvalidToken()}
	router := newTestRouter(fake)

	body := `{"kycToken":"bad"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/kyc-exchange/rp-1/client-1", strings.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), models.CodeInvalidToken)
}

func TestHandleSendOtp(t *testing.T) {
	fake := &fakeService{otpResult: &models.SendOtpResult{
		TransactionID: "txn-1",
		MaskedEmail:   "XXserXX@mail.com",
		MaskedMobile:  "XXXXXX3333",
	}}
	router := newTestRouter(fake)

	body := `{"transactionId":"txn-1","individualId":"9256","otpChannels":["email"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/send-otp/rp-1/client-1", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var result models.SendOtpResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "txn-1", result.TransactionID)
}

func TestHandleSendOtpMissingRecord(t *testing.T) {
	fake := &fakeService{otpErr: models.ErrSendOtpFailed()}
	router := newTestRouter(fake)

	body := `{"transactionId":"txn-1","individualId":"nobody","otpChannels":["email"]}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/send-otp/rp-1/client-1", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), models.CodeSendOtpFailed)
}
