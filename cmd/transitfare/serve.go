package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/antigravity/transitfare/internal/app"
	"github.com/antigravity/transitfare/internal/httpapi"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the journey-planning HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "8080", "Port to listen on")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	pool, err := app.Connect(ctx, dbURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	layer, err := app.LoadLayer(ctx, pool)
	if err != nil {
		return err
	}
	log.Printf("transitfare: loaded %d stops, %d patterns", len(layer.Stops), len(layer.Patterns))

	handler := httpapi.NewHandler(layer, app.NewFareCache())

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Get("/health", handler.Health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/plan", handler.Plan)
	})

	port := servePort
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	log.Printf("transitfare: listening on :%s", port)
	return http.ListenAndServe(":"+port, r)
}
