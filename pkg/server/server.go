package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nergy-se/wemportal/pkg/state"
	"github.com/nergy-se/wemportal/pkg/version"
	"github.com/sirupsen/logrus"
)

type Server struct {
	store   *state.Store
	metrics http.Handler
	httpLog bool
}

func New(store *state.Store, metrics http.Handler, httpLog bool) *Server {
	return &Server{
		store:   store,
		metrics: metrics,
		httpLog: httpLog,
	}
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/version", s.VersionHandler)
	e.GET("/devices", s.DevicesHandler)
	e.GET("/devices/:id/values", s.ValuesHandler)
	if s.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.metrics))
	}
	return e
}

// Start serves on addr until ctx is done.
func (s *Server) Start(ctx context.Context, wg *sync.WaitGroup, addr string) {
	server := &http.Server{
		Addr:         addr,
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		logrus.Infof("http server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Errorf("http server: %s", err)
		}
	}()
	go func() {
		defer wg.Done()
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logrus.Errorf("http server shutdown: %s", err)
		}
	}()
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	if ok, _ := s.store.Healthy(); ok {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) VersionHandler(c echo.Context) error {
	return c.JSONBlob(http.StatusOK, []byte(version.Version))
}

func (s *Server) DevicesHandler(c echo.Context) error {
	snapshot := s.store.Get()
	if snapshot == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no poll has completed yet")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"fetchedAt": snapshot.FetchedAt,
		"devices":   snapshot.Devices,
	})
}

func (s *Server) ValuesHandler(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "device id must be a number")
	}
	snapshot := s.store.Get()
	if snapshot == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "no poll has completed yet")
	}
	d := snapshot.Device(id)
	if d == nil {
		return echo.NewHTTPError(http.StatusNotFound, "device not found")
	}
	return c.JSON(http.StatusOK, d.ParameterValues())
}
