package main

import (
	"PayIVR/bot"
	"PayIVR/impl/core"
	"PayIVR/internal/config"
	"PayIVR/internal/database"
	"PayIVR/internal/http-server/api"
	"PayIVR/internal/lib/logger"
	"PayIVR/internal/lib/sl"
	"PayIVR/internal/metrics"
	"PayIVR/internal/service/payment"
	"PayIVR/internal/ws"
	"PayIVR/ivr"
	"PayIVR/ivr/gatherpayment"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type stateStore interface {
	ivr.Store
	Ping(ctx context.Context) error
}

func main() {

	configPath := flag.String("conf", "config.yml", "path to config file")
	logPath := flag.String("log", "/var/log/", "path to log file directory")
	flag.Parse()

	conf := config.MustLoad(*configPath)
	lg := logger.SetupLogger(conf.Env, *logPath)

	if conf.Telegram.Enabled {
		tgBot, err := bot.NewTgBot(conf.Telegram.BotName, conf.Telegram.ApiKey, conf.Telegram.AdminId, lg)
		if err != nil {
			lg.Error("failed to initialize telegram bot", sl.Err(err))
		} else {
			lg = logger.SetupTelegramHandler(lg, tgBot, slog.LevelError)
			lg.With(
				slog.String("bot_name", conf.Telegram.BotName),
			).Info("telegram bot initialized")
		}
	}

	lg.Info("starting payivr", slog.String("config", *configPath), slog.String("env", conf.Env))
	lg.Debug("debug messages enabled")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(conf, lg)
	if err != nil {
		lg.Error("state store", sl.Err(err))
		os.Exit(1)
	}
	defer closeStore()

	handler := core.New(lg)
	handler.SetAuthKey(conf.Listen.ApiKey)
	handler.SetStore(store, conf.Store.ResultMap)

	db, err := repository.NewMongoClient(conf, lg)
	if err != nil {
		lg.With(
			sl.Err(err),
		).Error("mongo client")
	}

	var mtr *metrics.Metrics
	var metricsHandler http.Handler
	if conf.Metrics.Enabled {
		mtr = metrics.New()
		metricsHandler = mtr.Handler()
	}

	hub := ws.NewHub(lg)

	paymentService := payment.NewService(payment.Config{
		Workers:   conf.Payment.Workers,
		QueueSize: conf.Payment.QueueSize,
		Timeout:   conf.Payment.Timeout,
		CacheMap:  conf.Store.CacheMap,
		ResultMap: conf.Store.ResultMap,
		ResultTTL: conf.Flow.StateTTL,
	}, store, &payment.MockGateway{}, lg)
	paymentService.SetEventSink(hub)
	if mtr != nil {
		paymentService.SetRecorder(mtr)
	}

	if db != nil {
		handler.SetRepository(db)
		paymentService.SetLedger(db)
		lg.With(
			slog.String("host", conf.Mongo.Host),
			slog.String("port", conf.Mongo.Port),
			slog.String("user", conf.Mongo.User),
			slog.String("database", conf.Mongo.Database),
		).Info("mongo client initialized")
	}

	workflow := gatherpayment.NewWorkflow(gatherpayment.Config{
		StrictSecurityCodeRetry: conf.Flow.StrictSecurityCodeRetry,
		ResultMap:               conf.Store.ResultMap,
		ResultTTL:               conf.Flow.StateTTL,
		StatusPause:             conf.Flow.StatusPause,
		PendingTimeout:          conf.Flow.PendingTimeout,
	}, store, paymentService)

	engine := ivr.NewCallEngine(workflow, store, ivr.Options{
		WebhookURL:    conf.WebhookURL(),
		Voice:         conf.Voice.Voice,
		FinishOnKey:   conf.Voice.FinishOnKey,
		GatherTimeout: conf.Voice.GatherTimeout,
		CacheMap:      conf.Store.CacheMap,
		StateTTL:      conf.Flow.StateTTL,
	}, lg)
	engine.SetEventSink(hub)
	if mtr != nil {
		engine.SetRecorder(mtr)
	}
	handler.SetCallEngine(engine)

	server := api.New(conf, lg, handler, hub, metricsHandler)

	g, gCtx := errgroup.WithContext(ctx)
	if err = paymentService.Start(gCtx); err != nil {
		lg.Error("payment service start", sl.Err(err))
		return
	}
	g.Go(func() error {
		hub.Run(gCtx)
		return nil
	})
	g.Go(func() error {
		return server.Serve()
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("server shutdown", sl.Err(err))
		}
		if err := paymentService.Stop(shutdownTimeout); err != nil {
			lg.Error("payment service stop", sl.Err(err))
		}
		return nil
	})

	if err = g.Wait(); err != nil {
		lg.Error("service stopped", sl.Err(err))
		return
	}
	lg.Info("service stopped")
}

// openStore connects the call-state store selected by store.driver.
func openStore(conf *config.Config, lg *slog.Logger) (stateStore, func(), error) {
	switch conf.Store.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		store := repository.NewRedisStore(client, conf.Store.Service, lg)
		lg.With(
			slog.String("addr", conf.Redis.Addr),
		).Info("redis store initialized")
		return store, func() { _ = client.Close() }, nil
	case "nats":
		store, err := repository.NewNatsStore(conf.Nats.URL, conf.Store.Service, conf.Flow.StateTTL, lg)
		if err != nil {
			return nil, nil, err
		}
		lg.With(
			slog.String("url", conf.Nats.URL),
		).Info("nats kv store initialized")
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}
