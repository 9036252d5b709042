package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mockauthn/internal/claims"
	"mockauthn/internal/identity"
	"mockauthn/internal/keymanager"
	kychandler "mockauthn/internal/kyc/handler"
	kycservice "mockauthn/internal/kyc/service"
	"mockauthn/internal/platform/config"
	"mockauthn/internal/platform/httpserver"
	"mockauthn/internal/platform/logger"
	"mockauthn/internal/platform/metrics"
	"mockauthn/internal/policy"
	"mockauthn/internal/signature"
	"mockauthn/internal/token"
)

// main wires dependencies and owns the server lifecycle. Protocol logic
// lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	mapping, err := claims.LoadMapping(cfg.ClaimsMappingFile)
	if err != nil {
		log.Error("failed to load claims mapping", "path", cfg.ClaimsMappingFile, "error", err)
		os.Exit(1)
	}

	keys := keymanager.New(log)
	signer := signature.New(keys)
	tokens := token.New(signer, keys, cfg.KycTokenTTL, log)

	svc := kycservice.New(
		identity.NewStore(cfg.PersonaDir),
		policy.NewStore(cfg.PolicyDir),
		mapping,
		tokens,
		signer,
		keys,
		log,
		kycservice.WithMetrics(metrics.New()),
	)

	// Provision the signing key up front so the first request does not
	// pay for key generation.
	if _, err := keys.Provision(token.ApplicationID); err != nil {
		log.Error("signing key setup failed", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	kychandler.New(svc, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting mock authn service",
		"addr", cfg.Addr,
		"persona_dir", cfg.PersonaDir,
		"policy_dir", cfg.PolicyDir,
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
