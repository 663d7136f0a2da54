package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tinyspots/internal/auth"
	"tinyspots/internal/coordinator"
	"tinyspots/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	coordinator   *coordinator.Coordinator
	authenticator auth.Authenticator
	rateLimiter   *ratelimiter.FixedWindowRateLimiter
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if app.config.rateLimiter.Enabled {
		r.Use(app.RateLimiterMiddleware)
	}

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)
		if app.config.env != "production" {
			r.Get("/debug/vars", expvar.Handler().ServeHTTP)
		}
		r.Get("/session", app.sessionHandler)

		r.Route("/vendors", func(r chi.Router) {
			r.Get("/", app.listVendorsHandler)
			r.Post("/", app.createVendorHandler)
			r.Post("/refresh", app.refreshVendorsHandler)

			r.Route("/{vendorID}", func(r chi.Router) {
				r.Get("/", app.getVendorHandler)
				r.Post("/reviews", app.createReviewHandler)
				r.With(app.AuthTokenMiddleware).Put("/favorite", app.toggleFavoriteHandler)
			})
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.getCurrentUserHandler)
			r.Patch("/", app.updateProfileHandler)
			r.Get("/favorites", app.listFavoritesHandler)
		})

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/login", app.loginHandler)
			r.Post("/signup", app.signupHandler)
			r.With(app.AuthTokenMiddleware).Post("/logout", app.logoutHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	bg, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	app.startBackground(bg)

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env, "mode", app.coordinator.Mode())

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	stopBackground()
	// let in-flight remote writes land before the pool closes
	app.coordinator.Wait()

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
