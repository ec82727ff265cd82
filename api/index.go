package handler

import (
	"kodesha/config"
	"kodesha/di"
	"kodesha/shared/logger"
	"kodesha/transport/http"
	nethttp "net/http"
	"sync"
)

var (
	server *http.HTTP
	once   sync.Once
)

// Handler is the serverless entrypoint. The dependency graph is built once per instance.
func Handler(w nethttp.ResponseWriter, r *nethttp.Request) {
	once.Do(func() {
		cfg := config.Get()
		logger.InitLogger(cfg, logger.ComponentAPI)

		server = di.InitializeService()
	})

	r.RequestURI = r.URL.String()

	server.ServeHTTP(w, r)
}
