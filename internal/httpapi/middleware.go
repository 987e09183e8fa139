package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"rcsapi/internal/auth"
	"rcsapi/internal/observability"
	"rcsapi/internal/store"
)

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start),
		)
	})
}

func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		observability.APIRequests.WithLabelValues(routeLabel(r), strconv.Itoa(sw.status)).Inc()
	})
}

func routeLabel(r *http.Request) string {
	route := mux.CurrentRoute(r)
	if route == nil {
		return r.URL.Path
	}
	tpl, err := route.GetPathTemplate()
	if err != nil {
		return r.URL.Path
	}
	return tpl
}

type accountKey struct{}

// requireAccount resolves the Authorization header to an account exactly
// once and stashes it in the request context; every RCS handler reads its
// authorization scope from there.
func (a *API) requireAccount(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cred, err := auth.ParseCredential(r.Header.Get("Authorization"))
		if err != nil {
			observability.AuthFailures.WithLabelValues("missing").Inc()
			writeDetail(w, http.StatusUnauthorized, detailCredentials)
			return
		}

		account, err := a.Resolver.ResolveAccount(r.Context(), cred)
		if err != nil {
			observability.AuthFailures.WithLabelValues(schemeLabel(cred.Scheme)).Inc()
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountKey{}, account)
		next(w, r.WithContext(ctx))
	}
}

func accountFrom(ctx context.Context) store.Account {
	account, _ := ctx.Value(accountKey{}).(store.Account)
	return account
}

func schemeLabel(s auth.Scheme) string {
	switch s {
	case auth.SchemeBearer:
		return "bearer"
	case auth.SchemeAPIKey:
		return "apikey"
	default:
		return "unsupported"
	}
}
