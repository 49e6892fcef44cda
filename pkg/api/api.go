package api

import (
	"net/http"
	"time"

	"pulse-node/pkg/defaults"
	"pulse-node/pkg/log"
	"pulse-node/pkg/ports"
	"pulse-node/pkg/types"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

// RequestIDHeader carries the id that ties a request to its log lines.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

// ClusterAPI serves the snapshot and lifecycle endpoints.
type ClusterAPI struct {
	svc      ports.ClusterService
	gatherer prometheus.Gatherer
	instance string
	logger   *logrus.Entry
}

// NewClusterAPI creates the HTTP API. instance is reported by the health endpoint.
func NewClusterAPI(svc ports.ClusterService, gatherer prometheus.Gatherer, instance string, logger *logrus.Entry) *ClusterAPI {
	return &ClusterAPI{
		svc:      svc,
		gatherer: gatherer,
		instance: instance,
		logger:   logger.WithField("component", "http"),
	}
}

// RegisterRoutes registers all routes on the router.
func (api *ClusterAPI) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", api.Health).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(api.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	router.HandleFunc("/api/nodes", api.ListNodes).Methods(http.MethodGet)
	router.HandleFunc("/api/nodes/{id}", api.GetNode).Methods(http.MethodGet)
	router.HandleFunc("/api/nodes/{id}/{action}", api.ApplyAction).Methods(http.MethodPost)

	router.HandleFunc("/api/cluster/status", api.ClusterStatus).Methods(http.MethodGet)
}

// NewRouter returns a router with every route registered and requests logged.
func (api *ClusterAPI) NewRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(api.requestID, api.logRequests, api.recoverPanics)
	router.NotFoundHandler = http.HandlerFunc(api.notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(api.methodNotAllowed)

	api.RegisterRoutes(router)

	return router
}

// NewServer wraps the router in an http.Server bound to addr.
func (api *ClusterAPI) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(),
		ReadTimeout:  defaults.ReadTimeout,
		WriteTimeout: defaults.WriteTimeout,
	}
}

// requestID tags every request with an id taken from X-Request-ID or generated, echoes it
// back and attaches a logger carrying it to the request context.
func (api *ClusterAPI) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := log.WithLogger(r.Context(), api.logger.WithField("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (api *ClusterAPI) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()

		next.ServeHTTP(w, r)

		log.GetLogger(r.Context()).WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(started),
		}).Debug("handled request")
	})
}

// recoverPanics turns a panicking handler into a 500 response.
func (api *ClusterAPI) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var catcher panics.Catcher
		catcher.Try(func() { next.ServeHTTP(w, r) })

		if recovered := catcher.Recovered(); recovered != nil {
			log.GetLogger(r.Context()).WithError(recovered.AsError()).
				WithField("path", r.URL.Path).
				Error("handler panicked")

			writeJSON(w, http.StatusInternalServerError, types.ErrorResponse{Error: "internal server error"})
		}
	})
}
