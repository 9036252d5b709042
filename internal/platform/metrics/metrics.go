package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the mock authority.
type Metrics struct {
	AuthAttempts *prometheus.CounterVec
	Exchanges    *prometheus.CounterVec
	OtpRequests  *prometheus.CounterVec
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		AuthAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mock_authn_kyc_auth_total",
			Help: "KYC authentication attempts by result.",
		}, []string{"result"}),
		Exchanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mock_authn_kyc_exchange_total",
			Help: "KYC exchange attempts by result.",
		}, []string{"result"}),
		OtpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "mock_authn_send_otp_total",
			Help: "Send-OTP requests by result.",
		}, []string{"result"}),
	}
}

// ObserveAuth records one authentication attempt.
func (m *Metrics) ObserveAuth(success bool) {
	m.AuthAttempts.WithLabelValues(label(success)).Inc()
}

// ObserveExchange records one exchange attempt.
func (m *Metrics) ObserveExchange(success bool) {
	m.Exchanges.WithLabelValues(label(success)).Inc()
}

// ObserveOtp records one send-OTP attempt.
func (m *Metrics) ObserveOtp(success bool) {
	m.OtpRequests.WithLabelValues(label(success)).Inc()
}

func label(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
