package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"domotic/internal/ports"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

const urlDeviceID = "id"

type Config struct {
	Addr            string
	AllowedPrefixes []string // remote address prefixes allowed on admin routes
	ShutdownTimeout time.Duration
}

// Server exposes the admin JSON API and the public sunrise trigger.
type Server struct {
	panel ports.PanelPort
	cfg   Config
}

func NewServer(panel ports.PanelPort, cfg Config) *Server {
	return &Server{panel: panel, cfg: cfg}
}

// Handler builds the routed handler wrapped with access logging and panic recovery.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/sunrise/{name}", s.handleSunrise).Methods(http.MethodGet)

	admin := router.NewRoute().Subrouter()
	admin.HandleFunc("/devices", s.handleListDevices).Methods(http.MethodGet)
	admin.HandleFunc("/devices", s.handleCreateDevice).Methods(http.MethodPost)
	admin.HandleFunc("/devices/{id}", s.handleGetDevice).Methods(http.MethodGet)
	admin.HandleFunc("/devices/{id}", s.handleUpdateDevice).Methods(http.MethodPut)
	admin.HandleFunc("/devices/{id}", s.handleRemoveDevice).Methods(http.MethodDelete)
	admin.HandleFunc("/devices/{id}/scene", s.handleSaveScene).Methods(http.MethodPut)
	admin.HandleFunc("/devices/{id}/scene", s.handleDeleteScene).Methods(http.MethodDelete)
	admin.HandleFunc("/devices/{id}/scene/test", s.handlePreviewScene).Methods(http.MethodPost)
	admin.HandleFunc("/devices/{id}/apply", s.handleApply).Methods(http.MethodPost)
	admin.HandleFunc("/devices/{id}/on", s.handleOn).Methods(http.MethodPost)
	admin.HandleFunc("/devices/{id}/off", s.handleOff).Methods(http.MethodPost)
	admin.HandleFunc("/cloud/devices", s.handleCloudDevices).Methods(http.MethodGet)
	admin.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	admin.Use(s.localOnly)

	access := log.Logger.With().Str("component", "access").Logger()
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{}),
		handlers.PrintRecoveryStack(true),
	)(handlers.CombinedLoggingHandler(access, router))
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Info().Str("addr", s.cfg.Addr).Msg("Starting HTTP server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP server shutdown error")
		}
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// localOnly hides admin routes from callers outside the home network.
func (s *Server) localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.isLocal(r) {
			log.Warn().Str("remote_addr", r.RemoteAddr).Str("url", r.RequestURI).Msg("Rejected admin access")
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// isLocal accepts a remote address with an allowed prefix, or a connection accepted
// on a loopback listener. The Host header is not consulted.
func (s *Server) isLocal(r *http.Request) bool {
	if local, ok := r.Context().Value(http.LocalAddrContextKey).(net.Addr); ok {
		if ip := net.ParseIP(hostOnly(local.String())); ip != nil && ip.IsLoopback() {
			return true
		}
	}
	addr := hostOnly(r.RemoteAddr)
	for _, prefix := range s.cfg.AllowedPrefixes {
		if strings.HasPrefix(addr, prefix) {
			return true
		}
	}
	return false
}

func hostOnly(hostport string) string {
	if host, _, err := net.SplitHostPort(hostport); err == nil {
		return host
	}
	return hostport
}

type recoveryLogger struct{}

func (recoveryLogger) Println(v ...interface{}) {
	log.Error().Interface("panic", v).Msg("Recovered from panic")
}
