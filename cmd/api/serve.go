package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xavierca1/nexus-concierge/internal/infra/http/handlers"
	"github.com/xavierca1/nexus-concierge/internal/infra/http/middleware"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/ayrshare"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/publisher"
	"github.com/xavierca1/nexus-concierge/internal/infra/integration/whatsapp"
	"github.com/xavierca1/nexus-concierge/internal/infra/llm"
	"github.com/xavierca1/nexus-concierge/internal/infra/mail"
	"github.com/xavierca1/nexus-concierge/internal/infra/queue"
	"github.com/xavierca1/nexus-concierge/internal/infra/worker"
	"github.com/xavierca1/nexus-concierge/internal/logger"
	"github.com/xavierca1/nexus-concierge/internal/usecase"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Sobe a API HTTP e os workers",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Banco
	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	loc := cfg.Location()

	// 2. Gateways
	llmClient := llm.NewClient(cfg.LLM, log)
	if !llmClient.Configured() {
		log.Warn("LOVABLE_API_KEY não configurada: o chat vai responder 500")
	}
	ayr := ayrshare.NewClient(cfg.Ayrshare, log)

	// 3. UseCases
	publishUC := usecase.NewPublishPostUseCase(store.Posts, ayr, log)

	var postPublisher usecase.PostPublisher = publishUC
	if cfg.Publish.URL != "" {
		postPublisher = publisher.NewClient(cfg.Publish.URL, cfg.Publish.ServiceKey, cfg.Publish.Timeout, log)
		log.Info("publicação via handler externo", zap.String("url", cfg.Publish.URL))
	}

	dispatcher := usecase.NewDispatcher(store.Leads, store.Notes, store.Posts, store.Projects, postPublisher, loc, log)
	chat := usecase.NewChatUseCase(llmClient, loc, log)

	// 4. Fila (opcional)
	var rabbit *queue.RabbitMQ
	if cfg.RabbitMQ.URL != "" {
		rabbit, err = queue.NewRabbitMQ(cfg.RabbitMQ.URL)
		if err != nil {
			log.Warn("RabbitMQ indisponível, lembretes não serão entregues", zap.Error(err))
			rabbit = nil
		} else {
			defer rabbit.Close()
		}
	}

	// 5. Handlers
	var rabbitCheck handlers.Checker
	if rabbit != nil {
		rabbitCheck = rabbit
	}
	health := handlers.NewHealthHandler(store.DB, rabbitCheck, map[string]bool{
		"llm":      llmClient.Configured(),
		"ayrshare": ayr.Configured(),
	}, version)

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateWindow)
	defer limiter.Stop()

	router := handlers.NewRouter(handlers.RouterOptions{
		Concierge:      handlers.NewConciergeHandler(dispatcher, chat, log),
		Publish:        handlers.NewPublishHandler(publishUC, cfg.Publish.ServiceKey, log),
		Health:         health,
		RateLimiter:    limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestLogger:  logger.RequestLogger(log),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	// 6. Workers
	sweeper := worker.NewSchedulingSweeper(store.Posts, cfg.Worker.StaleScheduling, cfg.Worker.SweepInterval, log)
	g.Go(func() error {
		sweeper.Start(gctx)
		return nil
	})

	if rabbit != nil {
		reminders := worker.NewReminderWorker(store.Notes, store.Profiles, queue.NewProducer(rabbit.Ch), cfg.Worker.ReminderInterval, log)
		g.Go(func() error {
			reminders.Start(gctx)
			return nil
		})

		var email queue.EmailNotifier
		if sender := mail.NewEmailSender(cfg.Mail); sender.Configured() {
			email = sender
		} else {
			log.Warn("SMTP não configurado: lembretes só por WhatsApp")
		}
		wa := mail.NewWhatsAppSender(whatsapp.NewClient(cfg.WhatsApp, log), log)

		consumer := queue.NewWorker(rabbit.Ch, email, wa, loc, log)
		g.Go(func() error {
			return consumer.Start(gctx, queue.QueueName)
		})
	}

	// 7. Servidor
	g.Go(func() error {
		log.Info("🔥 Nexus Concierge rodando", zap.String("porta", cfg.Server.Port), zap.String("versao", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 15*time.Second)
		defer cancel()
		log.Info("encerrando servidor")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
