// Package server exposes vendoring over HTTP for shared build hosts.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/removethebg/rtbg/internal/fsutil"
	"github.com/removethebg/rtbg/internal/logger"
	"github.com/removethebg/rtbg/internal/vendorer"
)

// RequestIDHeader carries the per-request ID on every response.
const RequestIDHeader = "X-Request-ID"

// ErrRunActive is returned when a vendoring run is requested while one is in progress.
var ErrRunActive = errors.New("a vendoring run is already in progress")

// VendorFunc performs one vendoring run.
type VendorFunc func(ctx context.Context) (*vendorer.Report, error)

// Status describes the current and last vendoring run.
type Status struct {
	Running    bool      `json:"running"`
	Trigger    string    `json:"trigger,omitempty"`
	LastRunID  string    `json:"last_run_id,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// Server serialises vendoring runs behind a single-writer guard. Only one run
// touches the vendor directory at a time, whether started over HTTP or by the
// schedule.
type Server struct {
	vendorDir string
	run       VendorFunc
	log       logger.Logger

	// ctx bounds background runs; set by ListenAndServe.
	ctx context.Context
	wg  sync.WaitGroup

	mu     sync.Mutex
	status Status

	cron *cron.Cron
}

// New creates a server for vendorDir.
func New(vendorDir string, run VendorFunc, log logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		vendorDir: vendorDir,
		run:       run,
		log:       log,
		ctx:       context.Background(),
	}
}

// Handler returns the gin engine serving the vendor API.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), s.accessLog())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/vendor", s.getManifest)
	r.POST("/vendor", s.startRun)
	r.GET("/vendor/status", s.getStatus)
	r.GET("/vendor/size", s.getSize)
	return r
}

// Schedule re-vendors on a standard five-field cron expression. Trigger
// returns at once, so overlapping ticks are skipped by its ErrRunActive guard.
func (s *Server) Schedule(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if err := s.Trigger("schedule"); err != nil {
			s.log.Logf("[SCHEDULE] Skipped: %v\n", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.cron = c
	s.log.Logf("[SCHEDULE] Re-vendoring on %q\n", spec)
	return nil
}

// Trigger starts a run in the background. It returns ErrRunActive without
// starting anything when a run is already in progress.
func (s *Server) Trigger(trigger string) error {
	s.mu.Lock()
	if s.status.Running {
		s.mu.Unlock()
		return ErrRunActive
	}
	s.status.Running = true
	s.status.Trigger = trigger
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.log.Logf("[VENDOR] Run started (%s)\n", trigger)
		report, err := s.run(s.ctx)
		s.finish(report, err)
	}()
	return nil
}

func (s *Server) finish(report *vendorer.Report, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Running = false
	s.status.Trigger = ""
	s.status.LastError = ""
	now := time.Now()
	s.status.FinishedAt = &now
	if report != nil {
		s.status.LastRunID = report.RunID
	}
	if err != nil {
		s.status.LastError = err.Error()
		s.log.Logf("[ERROR] Run failed: %v\n", err)
		return
	}
	s.log.Log("[VENDOR] Run finished")
}

// Status returns a snapshot of the run state.
func (s *Server) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Wait blocks until background runs have returned.
func (s *Server) Wait() {
	s.wg.Wait()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully and waits for an in-flight run.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.ctx = ctx
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.cron != nil {
		s.cron.Start()
		defer s.cron.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Logf("[SERVE] Listening on %s\n", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.Wait()
	return nil
}

func (s *Server) getManifest(c *gin.Context) {
	m, err := vendorer.ReadManifest(s.vendorDir)
	if errors.Is(err, fs.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "nothing vendored yet"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) startRun(c *gin.Context) {
	if err := s.Trigger("http"); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *Server) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, s.Status())
}

func (s *Server) getSize(c *gin.Context) {
	n, err := fsutil.DirSize(s.vendorDir)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"bytes": n, "human": fsutil.FormatMB(n)})
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Logf("[HTTP] %s %s %d %s id=%s\n",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(),
			time.Since(start).Round(time.Microsecond), c.GetString("request_id"))
	}
}
