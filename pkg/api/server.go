package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cbodonnell/scorekeeper/pkg/api/handlers"
	"github.com/cbodonnell/scorekeeper/pkg/log"
	"github.com/cbodonnell/scorekeeper/pkg/messages"
	"github.com/cbodonnell/scorekeeper/pkg/network"
	"github.com/cbodonnell/scorekeeper/pkg/state"
	"github.com/cbodonnell/scorekeeper/pkg/tutorial"
	"github.com/gorilla/mux"
	"github.com/klauspost/compress/gzhttp"
)

type APIServer struct {
	server *http.Server
	tls    *TLSConfig
}

type TLSConfig struct {
	CertFile string
	KeyFile  string
}

type NewAPIServerOptions struct {
	Addr         string
	TLS          *TLSConfig
	StateManager state.StateManager
	Tracker      *tutorial.Tracker
	Subscribers  *network.SubscriberManager

	// AllowedOrigins lists the browser origins, besides the API's own, that may call it
	AllowedOrigins []string
	// Now defaults to time.Now
	Now            func() time.Time
}

// NewAPIServer creates a new http.Server serving the scoreboard API
func NewAPIServer(opts NewAPIServerOptions) *APIServer {
	server := &http.Server{
		Addr:    opts.Addr,
		Handler: NewRouter(opts),
	}
	return &APIServer{
		server: server,
		tls:    opts.TLS,
	}
}

// NewRouter builds the routes of the API.
func NewRouter(opts NewAPIServerOptions) http.Handler {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	r := mux.NewRouter()
	r.Use(newOriginMiddleware(opts.AllowedOrigins))
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	api := r.PathPrefix("/api").Subrouter()
	api.Use(func(next http.Handler) http.Handler {
		return gzhttp.GzipHandler(next)
	})
	api.HandleFunc("/state", handlers.HandleGetState(opts.StateManager)).Methods(http.MethodGet)
	api.HandleFunc("/round", handlers.HandleSetRound(opts.StateManager)).Methods(http.MethodPut)
	api.HandleFunc("/players/{slot}/score", handlers.HandleAdjustScore(opts.StateManager)).Methods(http.MethodPost)
	api.HandleFunc("/players/{slot}/status", handlers.HandleSetStatus(opts.StateManager)).Methods(http.MethodPut)
	api.HandleFunc("/reset/provisional", handlers.HandleResetProvisional(opts.StateManager)).Methods(http.MethodPost)
	api.HandleFunc("/reset/all", handlers.HandleResetAll(opts.StateManager)).Methods(http.MethodPost)
	api.HandleFunc("/mode", handlers.HandleSetMode(opts.StateManager)).Methods(http.MethodPut)
	if opts.Tracker != nil {
		api.HandleFunc("/tutorial", handlers.HandleGetTutorial(opts.Tracker, now)).Methods(http.MethodGet)
		api.HandleFunc("/tutorial/dismiss", handlers.HandleDismissTutorial(opts.Tracker, now)).Methods(http.MethodPost)
	}

	if opts.Subscribers != nil {
		r.HandleFunc("/ws", network.NewWebsocketHandler(network.NewWebsocketHandlerOptions{
			Manager:        opts.Subscribers,
			OriginPatterns: originHosts(opts.AllowedOrigins),
			Initial: func(ctx context.Context) ([]byte, error) {
				return messages.SerializeGameState(opts.StateManager.Get(ctx))
			},
		}))
	}

	return r
}

// newOriginMiddleware rejects state changes from browser pages on other origins.
// Requests without an Origin header (curl, the CLI) and same-origin requests pass.
// Allowed cross-origin callers get CORS headers naming their origin.
func newOriginMiddleware(allowed []string) mux.MiddlewareFunc {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		allowedSet[strings.TrimSuffix(o, "/")] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" || sameOrigin(origin, r.Host) {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := allowedSet[origin]; ok {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Add("Vary", "Origin")
				next.ServeHTTP(w, r)
				return
			}
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				// served without CORS headers, the browser withholds the response
				next.ServeHTTP(w, r)
				return
			}
			log.Warn("Rejected %s %s from origin %s", r.Method, r.URL.Path, origin)
			http.Error(w, "Origin not allowed", http.StatusForbidden)
		})
	}
}

func sameOrigin(origin string, host string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == host
}

// originHosts converts origins to the host patterns the websocket handshake checks.
func originHosts(origins []string) []string {
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			hosts = append(hosts, u.Host)
		}
	}
	return hosts
}

// Start starts the APIServer
func (s *APIServer) Start() {
	var listenAndServe func() error
	if s.tls != nil {
		log.Info("API server listening on %s with TLS", s.server.Addr)
		listenAndServe = func() error {
			return s.server.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
		}
	} else {
		log.Info("API server listening on %s", s.server.Addr)
		listenAndServe = s.server.ListenAndServe
	}
	if err := listenAndServe(); err != nil {
		if errors.Is(err, http.ErrServerClosed) {
			log.Info("API server closed")
			return
		}
		log.Error("API server error: %v", err)
	}
}

// Stop stops the APIServer
func (s *APIServer) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
