package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mcdev12/bidroom/go/internal/config"
)

func setupServer(cfg config.ServerConfig, services *Services) *http.Server {
	mux := http.NewServeMux()

	c := cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodOptions,
		},
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	services.Handler.RegisterRoutes(mux)

	handler := c.Handler(mux)

	return &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
