package app

import (
	"net/http"
	"strings"

	"github.com/breakeven/breakeven/pkg/user"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware wires all HTTP middlewares for the application.
func SetupMiddleware(r *mux.Router, deps *Dependencies) {

	// Tag every request with an ID for log correlation.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			requestId := uuid.New().String()
			w.Header().Set("X-Request-Id", requestId)
			log.WithFields(log.Fields{
				"requestId": requestId,
				"method":    req.Method,
				"path":      req.URL.Path,
			}).Debug("handling request")
			next.ServeHTTP(w, req)
		})
	})

	// Verify the Supabase bearer token and resolve the local user,
	// provisioning one on first sight of a verified identity.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.URL.Path == "/health" || req.URL.Path == "/" {
				next.ServeHTTP(w, req)
				return
			}

			header := req.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			ctx := req.Context()
			identity, err := deps.TokenVerifier.Verify(ctx, token)
			if err != nil {
				log.Debugf("token rejected: %v", err)
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}

			u, err := deps.UserService.GetOrCreate(ctx, identity.Uid, identity.Email)
			if err != nil {
				log.Errorf("failed to resolve user: %v", err)
				http.Error(w, "failed to resolve user", http.StatusInternalServerError)
				return
			}

			next.ServeHTTP(w, req.WithContext(user.WithUser(ctx, u)))
		})
	})
}
