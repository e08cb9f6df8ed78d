package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/lumon-ai/agentloop/agent"
	"github.com/lumon-ai/agentloop/config"
	"github.com/lumon-ai/agentloop/knowledge"
)

// Server exposes the agent and the document pipeline over HTTP.
type Server struct {
	conf        *config.ServerConfig
	logger      *slog.Logger
	manager     *agent.Manager
	knowledge   knowledge.Service
	synthesizer *knowledge.Synthesizer

	router *mux.Router
	http   *http.Server
}

func NewServer(conf *config.ServerConfig, logger *slog.Logger, manager *agent.Manager, knowledgeService knowledge.Service, synthesizer *knowledge.Synthesizer) *Server {
	s := &Server{
		conf:        conf,
		logger:      logger,
		manager:     manager,
		knowledge:   knowledgeService,
		synthesizer: synthesizer,
		router:      mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	s.router.HandleFunc("/agent/chat", s.handleAgentChat).Methods(http.MethodPost)
	s.router.HandleFunc("/agent/reset", s.handleAgentReset).Methods(http.MethodPost)

	s.router.HandleFunc("/documents", s.handleIngestDocument).Methods(http.MethodPost)
	s.router.HandleFunc("/documents/{userId}", s.handleListDocuments).Methods(http.MethodGet)
	s.router.HandleFunc("/documents/{userId}/{documentId}", s.handleDeleteDocument).Methods(http.MethodDelete)

	s.router.HandleFunc("/chat/query", s.handleChatQuery).Methods(http.MethodPost)
	s.router.HandleFunc("/chat/stream", s.handleChatStream).Methods(http.MethodPost)
}

// Handler returns the fully wrapped handler chain: CORS for browser
// clients, panic recovery, request logging.
func (s *Server) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	recovery := handlers.RecoveryHandler(handlers.PrintRecoveryStack(false))
	return recovery(cors(s.router))
}

// Start serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Start(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.conf.Host, s.conf.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	s.logger.Info("server listening", slog.String("addr", s.http.Addr))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
