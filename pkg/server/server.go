package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/config"
	"github.com/darkclainer/wordmeaning/pkg/meaning"
	"github.com/darkclainer/wordmeaning/pkg/querier"
)

const (
	// MaxBodyBytes limits size of request body
	MaxBodyBytes      = 1 << 20
	ReadHeaderTimeout = 5 * time.Second

	wordMeaningPath = "/get-word-meaning"
)

type Server struct {
	http.Server
	conf      *config.Config
	logger    *zap.Logger
	q         querier.Querier
	validator *meaning.Validator
	// pool runs lookups of all requests
	pool *workerpool.WorkerPool
}

// New creates server that owns q: it will be closed together with the server
func New(logger *zap.Logger, conf *config.Config, q querier.Querier) (*Server, error) {
	validator, err := meaning.NewValidator(conf.MaxWords)
	if err != nil {
		return nil, err
	}
	workers := conf.LookupWorkers
	if workers < 1 {
		workers = 1
	}
	s := Server{
		conf:      conf,
		logger:    logger,
		q:         q,
		validator: validator,
		pool:      workerpool.New(workers),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(s.middleLogging)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Heartbeat("/healthz"))
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusNotFound, &ErrorResponse{Detail: "Not Found"})
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.respondError(w, http.StatusMethodNotAllowed, &ErrorResponse{Detail: "Method Not Allowed"})
	})
	router.Post(conf.APIPrefix+wordMeaningPath, s.handleWordMeaning())

	s.Addr = conf.Host
	s.Server.Handler = router
	s.ReadHeaderTimeout = ReadHeaderTimeout
	return &s, nil
}

func (s *Server) Close(ctx context.Context) error {
	var reasons []string
	if serverErr := s.Server.Shutdown(ctx); serverErr != nil {
		reasons = append(reasons, "server shutdown failed: "+serverErr.Error())
	}
	s.pool.StopWait()
	if querierErr := s.q.Close(ctx); querierErr != nil {
		reasons = append(reasons, "querier close failed: "+querierErr.Error())
	}
	if len(reasons) > 0 {
		return fmt.Errorf("close failed because: %s", strings.Join(reasons, " AND "))
	}
	return nil
}

type ErrorResponse struct {
	Detail string               `json:"detail"`
	Errors []meaning.FieldError `json:"errors,omitempty"`
}

func (s *Server) respondError(w http.ResponseWriter, status int, response *ErrorResponse) {
	s.respondJSON(w, response, status)
}

func (s *Server) respondJSON(w http.ResponseWriter, vPtr interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	buffer := new(bytes.Buffer)
	if err := json.NewEncoder(buffer).Encode(vPtr); err != nil {
		s.logger.Error("encodig failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"encoding error"}`))
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buffer.Bytes())
}

func (s *Server) middleLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("path", r.URL.Path),
			zap.String("client", r.RemoteAddr),
			zap.String("method", r.Method),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
