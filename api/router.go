package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"
)

// RequestRecorder receives one call per served request
type RequestRecorder interface {
	RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NewRouter registers the admin endpoints on a chi router
func NewRouter(ledger LedgerAPI, recorder RequestRecorder) http.Handler {
	h := NewHandler(ledger)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(recorder))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/pots", func(r chi.Router) {
		r.Get("/", h.ListPots)
		r.Put("/", h.ConfigurePots)
		r.Get("/{name}", h.GetPot)
	})

	r.Get("/transfers", h.ListTransfers)
	r.Post("/transfers", h.Transfer)
	r.Get("/withdrawals", h.ListWithdrawals)
	r.Post("/withdrawals", h.Withdraw)

	r.Post("/bets", h.PlaceBet)
	r.Get("/bets/{id}/distribution", h.GetDistribution)
	r.Post("/draws", h.TriggerDraw)
	r.Post("/draws/{id}/settle", h.SettleDraw)
	r.Get("/lotteries/{id}", h.LotterySummary)

	r.Get("/reconcile", h.Reconcile)
	r.Post("/sync", h.Sync)
	r.Post("/journal/{seq}/discard", h.DiscardConflict)

	return r
}

// requestLogger logs each request and reports it to recorder by route pattern
func requestLogger(recorder RequestRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			duration := time.Since(start)

			fields := log.Fields{
				"method":     r.Method,
				"route":      route,
				"status":     ww.Status(),
				"durationMs": duration.Milliseconds(),
				"requestId":  middleware.GetReqID(r.Context()),
			}
			if ww.Status() >= http.StatusInternalServerError {
				log.WithFields(fields).Warn("HTTP request failed")
			} else {
				log.WithFields(fields).Debug("HTTP request served")
			}

			if recorder != nil {
				recorder.RecordHTTPRequest(r.Context(), r.Method, route, ww.Status(), duration)
			}
		})
	}
}
