package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aviate-labs/agent-go/principal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fort-major/msq-pay/internal/api"
	"github.com/fort-major/msq-pay/internal/clients/msqpay"
	"github.com/fort-major/msq-pay/internal/flow"
	"github.com/fort-major/msq-pay/internal/repository"
	"github.com/fort-major/msq-pay/internal/request"
	"github.com/fort-major/msq-pay/internal/service"
	"github.com/fort-major/msq-pay/internal/settlement"
	"github.com/fort-major/msq-pay/internal/store"
	"github.com/fort-major/msq-pay/pkg/broker"
	"github.com/fort-major/msq-pay/pkg/config"
	"github.com/fort-major/msq-pay/pkg/job"
	"github.com/fort-major/msq-pay/pkg/logger"
	"github.com/fort-major/msq-pay/pkg/metrics"
	"github.com/fort-major/msq-pay/pkg/postgres"
)

const ShutdownTimeout = 10 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New(".env")
	panicOnErr("load config", err)

	l, err := logger.New(cfg.Logger.Level, cfg.Logger.Format)
	panicOnErr("create logger", err)

	err = postgres.UpMigrations(cfg.Postgres.DSN)
	panicOnErr("up migrations", err)

	pool, err := postgres.Connect(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConn)
	panicOnErr("connect to postgres", err)
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.NewPrometheusRecorder(reg)

	payCanister, err := principal.Decode(cfg.MsqPay.CanisterID)
	panicOnErr("decode msq pay canister id", err)

	canister := msqpay.NewClient(cfg.MsqPay)

	st := store.New(canister, rec)
	st.StartRefresh(ctx, cfg.MsqPay.RefreshInterval)
	defer st.Stop()

	producer := broker.NewProducer(l, cfg.Kafka.Brokers, cfg.Kafka.CheckoutStartedTopic)
	defer producer.Close()

	repo := repository.New(pool)
	s := service.New(repo, producer)

	sessions := flow.NewManager(flow.Deps{
		Store:       st,
		Memo:        request.InvoiceMemo([]byte(cfg.MsqPay.MemoDomain)),
		PayCanister: payCanister,
	}, cfg.Session.IdleTimeout)

	jobs := job.NewService().
		RegisterJob("expire idle payment sessions", cfg.Session.IdleTimeout/2, sessions.ExpireIdle).
		Start(ctx)
	defer jobs.Stop()

	poller := settlement.NewPoller(st, cfg.MsqPay.UrgentTTL)

	handler := api.NewHandler(s, sessions, poller, st, cfg.MsqPay.InvoicePollInterval)
	mw := api.NewMiddleware(rec, cfg.HTTP.AllowedOrigins)

	router := api.NewRouter(handler, mw, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	server := api.NewServer(ctx, fmt.Sprintf(":%d", cfg.HTTP.Port), router)

	var wg sync.WaitGroup

	wg.Add(1)

	go func() {
		defer wg.Done()

		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panicf("listen and serve: %s", err)
		}
	}()

	slog.InfoContext(ctx, "service started", "port", cfg.HTTP.Port, "msq_pay_canister", payCanister.String())

	wg.Add(1)

	go func() {
		defer wg.Done()

		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		sig := <-ch

		slog.InfoContext(ctx, "got OS signal", "signal", sig.String())

		shutdownCtx, cancelShutdown := context.WithTimeout(ctx, ShutdownTimeout)
		defer cancelShutdown()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.ErrorContext(ctx, "server shutdown", "error", err)
		}

		cancel()
	}()

	wg.Wait()
}

func panicOnErr(msg string, err error) {
	if err != nil {
		log.Panicf("%s: %s", msg, err)
	}
}
