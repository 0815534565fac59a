// Package api serves the JSON endpoints used by the resume editor.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/nikogura/smartresume/pkg/jobsearch"
	"github.com/nikogura/smartresume/pkg/linkedin"
	"github.com/nikogura/smartresume/pkg/llm"
	"github.com/nikogura/smartresume/pkg/logging"
	"github.com/nikogura/smartresume/pkg/store"
)

// Searcher runs job searches.
type Searcher interface {
	Configured() bool
	Search(ctx context.Context, criteria jobsearch.Criteria) (jobs []jobsearch.Posting, err error)
}

// Generator runs AI tasks.
type Generator interface {
	Configured() bool
	Run(ctx context.Context, task llm.Task, input llm.Input) (result llm.RunResult, err error)
	ParseJobHTML(ctx context.Context, html string) llm.Outcome[linkedin.ParsedJobFields]
}

// PageFetcher downloads LinkedIn job pages.
type PageFetcher interface {
	FetchJobHTML(ctx context.Context, jobID string) (page string, err error)
}

// Deps are the components behind the handlers. Results may be nil, which
// disables persisting and serving the last search.
type Deps struct {
	Search  Searcher
	AI      Generator
	Fetcher PageFetcher
	Results store.ResultStore
	Logger  *logging.Logger
}

// Server is the HTTP front end.
type Server struct {
	deps   Deps
	router *gin.Engine
	http   *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, deps Deps) (s *Server) {
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}

	s = &Server{deps: deps}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		// Searches poll for up to a minute and AI calls can be slow.
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() (h http.Handler) {
	h = s.router
	return h
}

// ListenAndServe blocks until the server stops. A graceful shutdown is not an error.
func (s *Server) ListenAndServe() (err error) {
	s.deps.Logger.Info("starting HTTP server", "addr", s.http.Addr)

	err = s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		err = nil
	}
	return err
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) (err error) {
	err = s.http.Shutdown(ctx)
	if err != nil {
		err = errors.Wrap(err, "HTTP server shutdown failed")
	}
	return err
}

func (s *Server) routes() (r *gin.Engine) {
	r = gin.New()

	r.Use(requestLogger(s.deps.Logger))
	r.Use(gin.CustomRecovery(recoverJSON))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", requestIDHeader}
	corsCfg.ExposeHeaders = []string{requestIDHeader}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.POST("/apify", s.searchJobs)
		api.GET("/apify/last", s.lastSearch)
		api.POST("/ai", s.generate)
		api.POST("/linkedin", s.parseLinkedInURL)
		api.POST("/linkedin/parse", s.parseLinkedInHTML)
	}

	return r
}
