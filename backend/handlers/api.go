// Package handlers exposes the action processor and the feed assembler over
// JSON HTTP and the /ws endpoint.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"socialhub/backend/actions"
	"socialhub/backend/auth"
	"socialhub/backend/fanout"
	"socialhub/backend/feed"
	"socialhub/backend/models"
	"socialhub/backend/ws"
)

type API struct {
	proc       *actions.Processor
	asm        *feed.Assembler
	pub        fanout.Publisher
	hub        *ws.Hub
	issuer     *auth.Issuer
	log        zerolog.Logger
	sendBuffer int
}

type Deps struct {
	Processor  *actions.Processor
	Assembler  *feed.Assembler
	Publisher  fanout.Publisher
	Hub        *ws.Hub
	Issuer     *auth.Issuer
	Log        zerolog.Logger
	SendBuffer int
}

func New(d Deps) *API {
	if d.SendBuffer <= 0 {
		d.SendBuffer = 256
	}
	return &API{
		proc:       d.Processor,
		asm:        d.Assembler,
		pub:        d.Publisher,
		hub:        d.Hub,
		issuer:     d.Issuer,
		log:        d.Log.With().Str("component", "api").Logger(),
		sendBuffer: d.SendBuffer,
	}
}

// Issuer is the token issuer the routes authenticate with.
func (a *API) Issuer() *auth.Issuer { return a.issuer }

type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response{Success: true, Data: data})
}

func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response{Success: false, Error: message})
}

// StatusFor maps the error taxonomy onto HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		msg = "Internal server error"
	}
	sendErrorResponse(w, msg, status)
}

// commit publishes a committed outcome's deliveries and writes its payload.
func commit[T any](a *API, w http.ResponseWriter, r *http.Request, status int, out actions.Outcome[T], err error) {
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.publish(r, out.Deliveries)
	writeJSON(w, status, out.Payload)
}

// publish outlives the request deadline: the rows are already committed.
func (a *API) publish(r *http.Request, deliveries []models.Delivery) {
	a.pub.Publish(context.WithoutCancel(r.Context()), deliveries...)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		sendErrorResponse(w, "Invalid "+name, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// queryLimit reads ?limit=; 0 lets the assembler pick its default.
func queryLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	s := r.URL.Query().Get("limit")
	if s == "" {
		return 0, true
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		sendErrorResponse(w, "Invalid limit", http.StatusBadRequest)
		return 0, false
	}
	return v, true
}
