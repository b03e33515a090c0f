// Package app assembles the service: config in, wired collaborators and an
// HTTP API out. Everything the entrypoint needs lives in the BuildResult so
// tests can construct the same object graph without a process.
package app

import (
	"context"
	"fmt"

	"github.com/salespilot-ai/salespilot/internal/config"
	"github.com/salespilot-ai/salespilot/internal/crm"
	"github.com/salespilot-ai/salespilot/internal/engine"
	"github.com/salespilot-ai/salespilot/internal/enhancer"
	"github.com/salespilot-ai/salespilot/internal/httpapi"
	"github.com/salespilot-ai/salespilot/internal/mail"
	"github.com/salespilot-ai/salespilot/internal/observability"
	"github.com/salespilot-ai/salespilot/internal/session"
)

type BuildResult struct {
	Config   config.Config
	API      *httpapi.Server
	Engine   *engine.Engine
	Sessions *session.Store
	Store    crm.Store
	Metrics  *observability.Metrics

	// Cleanup should be called on shutdown to release external resources.
	Cleanup func() error
}

func Build(ctx context.Context, cfg config.Config) (*BuildResult, error) {
	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	store, err := crm.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("crm store init failed: %w", err)
	}

	sender, err := mail.NewSender(mail.Config{
		Mode:        cfg.MailMode,
		SMTPAddr:    cfg.SMTPAddr,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		SenderName:  cfg.MailSenderName,
		SenderEmail: cfg.MailSenderEmail,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("mail sender init failed: %w", err)
	}

	rewriter, err := enhancer.NewRewriter(enhancer.Config{
		Mode: cfg.EnhancerMode,
		URL:  cfg.EnhancerHTTPURL,
	})
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("enhancer init failed: %w", err)
	}

	sessions := session.NewStore(cfg.SessionIdleTTL)
	eng := engine.New(sessions, store, sender, rewriter, metrics)
	api := httpapi.New(cfg, eng, store, sessions, metrics)

	return &BuildResult{
		Config:   cfg,
		API:      api,
		Engine:   eng,
		Sessions: sessions,
		Store:    store,
		Metrics:  metrics,
		Cleanup:  store.Close,
	}, nil
}
