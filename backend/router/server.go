// Package router assembles the HTTP surface: the chi route table, request
// logging, panic recovery, health and metrics endpoints.
package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"socialhub/backend/handlers"
	"socialhub/backend/metrics"
)

// Pinger reports whether the ledger is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	API            *handlers.API
	DB             Pinger
	Log            zerolog.Logger
	RequestTimeout time.Duration
}

func New(o Options) http.Handler {
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 15 * time.Second
	}
	api := o.API

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(o.Log))
	r.Use(RecoveryMiddleware(o.Log))
	r.Use(metrics.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		ServeErrorPage(w, r, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ServeErrorPage(w, r, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/healthz", healthz(o.DB))
	r.Handle("/metrics", promhttp.Handler())

	// websocket connections outlive the request timeout
	r.Get("/ws", api.HandleWebSocket)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(o.RequestTimeout))

		r.Post("/register", api.RegisterHandler)
		r.Post("/login", api.LoginHandler)
		r.Post("/logout", api.LogoutHandler)

		r.Group(func(r chi.Router) {
			r.Use(api.Issuer().Middleware(handlers.Unauthorized))

			r.Get("/session", api.SessionHandler)
			r.Get("/feed", api.FeedHandler)
			r.Post("/posts", api.CreatePostHandler)
			r.Route("/posts/{postID}", func(r chi.Router) {
				r.Post("/like", api.ToggleLikeHandler)
				r.Get("/comments", api.CommentsHandler)
				r.Post("/comments", api.AddCommentHandler)
			})

			r.Route("/users/{userID}", func(r chi.Router) {
				r.Get("/", api.ProfileHandler)
				r.Get("/wall", api.WallHandler)
				r.Post("/poke", api.PokeHandler)
			})
			r.Get("/pokes", api.PokesHandler)
			r.Post("/pokes/read", api.MarkPokesReadHandler)

			r.Post("/invites", api.CreateInviteHandler)

			r.Get("/notifications", api.NotificationsHandler)
			r.Get("/notifications/count", api.UnreadCountHandler)
			r.Post("/notifications/read-all", api.MarkAllNotificationsReadHandler)
			r.Post("/notifications/{notificationID}/read", api.MarkNotificationReadHandler)
			r.Get("/unread", api.UnreadCountsHandler)

			r.Get("/contacts", api.ContactsHandler)
			r.Route("/conversations/{userID}", func(r chi.Router) {
				r.Get("/messages", api.ConversationHandler)
				r.Post("/messages", api.SendMessageHandler)
				r.Post("/read", api.MarkConversationReadHandler)
			})
		})
	})
	return r
}

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			ServeErrorPage(w, r, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// ServeErrorPage writes the JSON error shape every endpoint shares.
func ServeErrorPage(w http.ResponseWriter, r *http.Request, statusCode int, errorMessage string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   errorMessage,
		"code":    statusCode,
	})
}

func RecoveryMiddleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error().
						Interface("panic", rec).
						Str("request_id", middleware.GetReqID(r.Context())).
						Str("path", r.URL.Path).
						Msg("server panic recovered")
					ServeErrorPage(w, r, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request once it completes.
func RequestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			ev := log.Info()
			if status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", status).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
