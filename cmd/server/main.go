package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"gatepass/internal/audit"
	checkinhandler "gatepass/internal/checkin/handler"
	checkinmetrics "gatepass/internal/checkin/metrics"
	checkinservice "gatepass/internal/checkin/service"
	checkinstore "gatepass/internal/checkin/store"
	eventhandler "gatepass/internal/event/handler"
	eventservice "gatepass/internal/event/service"
	eventstore "gatepass/internal/event/store"
	"gatepass/internal/notify"
	paymenthandler "gatepass/internal/payment/handler"
	paymentmetrics "gatepass/internal/payment/metrics"
	paymentservice "gatepass/internal/payment/service"
	"gatepass/internal/platform/config"
	"gatepass/internal/platform/httpserver"
	"gatepass/internal/platform/logger"
	platformredis "gatepass/internal/platform/redis"
	"gatepass/internal/proof"
	regcache "gatepass/internal/registration/cache"
	reghandler "gatepass/internal/registration/handler"
	regmetrics "gatepass/internal/registration/metrics"
	regservice "gatepass/internal/registration/service"
	regstore "gatepass/internal/registration/store"
	"gatepass/internal/staffauth"
	"gatepass/internal/token"
	httptransport "gatepass/internal/transport/http"
)

// main wires dependencies and runs the server plus the audit worker until a
// signal arrives. Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	sealer, err := token.NewSealer(cfg.TokenKey)
	if err != nil {
		log.Error("token key rejected", "error", err)
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres open failed", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Error("postgres unreachable", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	proofs, err := proof.NewFilesystemStore(cfg.ProofDir)
	if err != nil {
		log.Error("proof storage unavailable", "error", err)
		os.Exit(1)
	}

	mailer, err := notify.NewSMTPSender(cfg.SMTP, log)
	if err != nil {
		log.Error("mailer configuration rejected", "error", err)
		os.Exit(1)
	}

	auditStore := audit.NewInMemoryStore()
	var auditSink audit.Sink
	if cfg.AMQP.URL != "" {
		sink, err := audit.NewAMQPSink(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			log.Error("audit broker connection failed", "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		auditSink = sink
	}
	auditor := audit.NewPublisher(auditStore, 256)
	auditWorker := audit.NewWorker(auditStore, auditSink, auditor.Inbox(), log)

	var views *regcache.Cache
	if redisClient != nil {
		views = regcache.New(redisClient.Client, 30*time.Second, log)
		defer redisClient.Close()
	}

	events, err := eventservice.New(eventstore.NewPostgresStore(db))
	if err != nil {
		log.Error("event service init failed", "error", err)
		os.Exit(1)
	}
	regStore := regstore.NewPostgresStore(db)
	registrations, err := regservice.New(regStore, events, sealer, mailer, proofs, auditor, regmetrics.New(), log)
	if err != nil {
		log.Error("registration service init failed", "error", err)
		os.Exit(1)
	}
	var checkinViews checkinservice.Views
	if views != nil {
		checkinViews = views
	}
	checkins, err := checkinservice.New(checkinstore.NewPostgresStore(db), sealer, registrations, events, checkinViews, auditor, checkinmetrics.New(), log)
	if err != nil {
		log.Error("check-in service init failed", "error", err)
		os.Exit(1)
	}
	var paymentViews paymentservice.Invalidator
	if views != nil {
		paymentViews = views
	}
	payments, err := paymentservice.New(regStore, proofs, paymentViews, auditor, paymentmetrics.New(), log)
	if err != nil {
		log.Error("payment service init failed", "error", err)
		os.Exit(1)
	}

	regHandler := reghandler.New(registrations, proofs, log)
	router := httptransport.NewRouter(httptransport.Deps{
		Logger:       log,
		JWTValidator: staffauth.NewJWTService(cfg.StaffJWTKey),
		Public:       []httptransport.PublicRegistrar{regHandler},
		Staff: []httptransport.StaffRegistrar{
			eventhandler.New(events, log),
			checkinhandler.New(checkins, log),
			paymenthandler.New(payments, log),
			regHandler,
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting gatepass", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := auditWorker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
