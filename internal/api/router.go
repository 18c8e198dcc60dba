package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/fort-major/msq-pay/docs" // swagger docs
)

const ReadTimeout = 3 * time.Second

func NewRouter(h *Handler, mw *Middleware, metrics http.Handler) http.Handler {
	mux := chi.NewRouter()
	mux.Use(mw.Log, mw.Recover, mw.Cors)

	mux.Route("/api", func(r chi.Router) {
		r.HandleFunc("/health", h.HealthHandler)
		r.Handle("/metrics", metrics)
		r.HandleFunc("/swagger/*", httpSwagger.Handler())

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.CreateSession)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetSession)
				r.Delete("/", h.CloseSession)
				r.Post("/wallet", h.ConnectWallet)
				r.Post("/asset", h.SelectAsset)
				r.Put("/accounts", h.SetAccounts)
				r.Post("/back", h.Back)
				r.Post("/checkout", h.Checkout)
				r.Get("/receive", h.Receive)
			})
		})

		r.Get("/invoices/{id}/status", h.InvoiceStatus)
		r.Get("/invoices/{id}/events", h.InvoiceEvents)
		r.Get("/shops/{id}", h.Shop)
		r.Get("/tokens", h.Tokens)
		r.Get("/checkouts", h.Checkouts)
		r.Post("/accounts/{account}/history", h.AccountHistory)

		r.Route("/preferences/{deviceId}", func(r chi.Router) {
			r.Get("/hide-empty-assets", h.HideEmptyAssets)
			r.Put("/hide-empty-assets", h.SetHideEmptyAssets)
			r.Post("/visible-assets", h.VisibleAssets)
		})
	})

	return mux
}

// NewServer serves h on addr. Request contexts derive from ctx and end as soon as Shutdown
// starts, so open invoice event streams return instead of holding shutdown.
// There is no write timeout: invoice events are streamed until the invoice is paid.
func NewServer(ctx context.Context, addr string, h http.Handler) *http.Server {
	requestsCtx, cancelRequests := context.WithCancel(ctx)

	server := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       ReadTimeout,
		ReadHeaderTimeout: ReadTimeout,
		BaseContext: func(net.Listener) context.Context {
			return requestsCtx
		},
	}
	server.RegisterOnShutdown(cancelRequests)

	return server
}
