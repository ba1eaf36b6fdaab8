package server

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/seqx/internal/shared"
)

// NewRouter wires the sequence and health endpoints behind the standard middleware stack:
// panic recovery, request logging, then rate limiting.
func NewRouter(seq Sequencer, db Pinger, cfg shared.ServerConfig, logger *log.Logger) *BasicRouter {
	router := NewBasicRouter()
	router.Use(
		Recover(logger),
		Logging(logger),
		RateLimit(cfg.RateLimit, cfg.RateBurst),
	)

	router.Handler(NewSequenceHandler(seq, logger))
	router.Handle(http.MethodGet, "/health", NewHealthHandler(db))

	return router
}
