package mux

import (
	"context"
	"net/http"
	"strings"

	"cardroom-server/internal/jwt"
	"cardroom-server/internal/metrics"
	"cardroom-server/pkg/room"

	gmux "github.com/gorilla/mux"
)

type ctxKey int

const ctxUserIDKey ctxKey = iota

// Mux handles HTTP requests
type Mux struct {
	*gmux.Router
	version  string
	registry *room.Registry

	// store for testing purposes
	authRouter *gmux.Router
}

// NewMux returns a new HTTP mux
func NewMux(version string, registry *room.Registry) *Mux {
	this := &Mux{
		Router:   gmux.NewRouter(),
		version:  version,
		registry: registry,
	}

	this.authRouter = this.Router.NewRoute().Subrouter()
	this.authRouter.Use(this.authMiddleware)

	// unauthorized endpoints
	{
		r := this.Router
		r.Methods(http.MethodGet).Path("/health").Handler(this.getHealth())
		r.Methods(http.MethodGet).Path("/metrics").Handler(metrics.Handler())
	}

	// requires bearer authorization
	{
		r := this.authRouter

		rr := r.PathPrefix("/room/{id:(?i)[a-f0-9]{8}(?:-[a-f0-9]{4}){3}-[a-f0-9]{12}}").Subrouter()
		rr.Methods(http.MethodGet).Path("").Handler(this.getRoomID())
		rr.Methods(http.MethodGet).Path("/ws").Handler(this.getRoomIDWS())
	}

	return this
}

func (m *Mux) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.FormValue("access_token")
		if token == "" {
			authHeader := strings.Split(r.Header.Get("Authorization"), " ")
			if len(authHeader) != 2 || strings.ToLower(authHeader[0]) != "bearer" {
				writeJSONError(w, http.StatusUnauthorized, nil)
				return
			}

			token = authHeader[1]
		}

		userID, err := jwt.ValidUserID(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, nil)
			return
		}

		newCtx := context.WithValue(r.Context(), ctxUserIDKey, userID)
		w.Header().Set("Cardroom-UserID", userID)
		next.ServeHTTP(w, r.WithContext(newCtx))
	})
}
