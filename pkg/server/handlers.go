package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sourcegraph/conc/panics"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/darkclainer/wordmeaning/pkg/meaning"
	"github.com/darkclainer/wordmeaning/pkg/querier"
)

var errLookupPanic = errors.New("lookup panicked")

// handleWordMeaning goes through validation, authentication, lookup and assembling.
// Nothing is looked up unless request is valid and authenticated.
func (s *Server) handleWordMeaning() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var request meaning.Request
		if status, err := decodeRequest(w, r, &request); err != nil {
			detail := "invalid JSON body: " + err.Error()
			if status == http.StatusRequestEntityTooLarge {
				detail = "request body too large"
			}
			s.respondError(w, status, &ErrorResponse{Detail: detail})
			return
		}

		if err := s.validator.Request(&request); err != nil {
			response := &ErrorResponse{Detail: "invalid request"}
			var validationErr *meaning.ValidationError
			if errors.As(err, &validationErr) {
				response.Errors = validationErr.Errors
			}
			s.respondError(w, http.StatusUnprocessableEntity, response)
			return
		}

		if !s.authenticate(*request.Password) {
			s.respondError(w, http.StatusForbidden, &ErrorResponse{Detail: "Incorrect password"})
			return
		}

		results, err := s.lookupAll(r.Context(), request.Words)
		if err != nil {
			s.logger.Error("Lookup failed",
				zap.Error(err),
				zap.Strings("words", request.Words),
			)
			s.respondError(w, lookupStatus(err), &ErrorResponse{Detail: "dictionary lookup failed"})
			return
		}

		response, err := meaning.Assemble(request.Words, results)
		if err == nil {
			err = s.validator.Response(response)
		}
		if err != nil {
			s.logger.Error("Response validation failed",
				zap.Error(err),
				zap.Strings("words", request.Words),
			)
			errorResponse := &ErrorResponse{Detail: "response validation failed"}
			var shapeErr *meaning.ShapeError
			if errors.As(err, &shapeErr) {
				errorResponse.Errors = shapeErr.Errors
			}
			s.respondError(w, http.StatusInternalServerError, errorResponse)
			return
		}
		s.respondJSON(w, response, http.StatusOK)
	}
}

// authenticate compares password with configured one literally
func (s *Server) authenticate(password string) bool {
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.conf.Password)) == 1
}

// decodeRequest reads exactly one JSON document from body
func decodeRequest(w http.ResponseWriter, r *http.Request, request *meaning.Request) (int, error) {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	err := decoder.Decode(request)
	if err == nil {
		if err = decoder.Decode(&struct{}{}); errors.Is(err, io.EOF) {
			return http.StatusOK, nil
		}
		if err == nil {
			err = errors.New("body must contain a single JSON document")
		}
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge, err
	}
	return http.StatusUnprocessableEntity, err
}

// lookupAll queries all words concurrently. results[i] always belongs to words[i].
// The first failure cancels lookups that are still in progress.
func (s *Server) lookupAll(ctx context.Context, words []string) ([]*meaning.WordResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.conf.LookupTimeout)
	defer cancel()

	results := make([]*meaning.WordResult, len(words))
	p := pool.New().
		WithContext(ctx).
		WithCancelOnError().
		WithFirstError().
		WithMaxGoroutines(s.maxLookups())
	for i, word := range words {
		i, word := i, word
		p.Go(func(ctx context.Context) error {
			var (
				result *meaning.WordResult
				err    error
			)
			// shared pool bounds lookups of all requests together
			s.pool.SubmitWait(func() {
				result, err = s.lookup(ctx, word)
			})
			if err != nil {
				return fmt.Errorf("lookup of %q failed: %w", word, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Server) maxLookups() int {
	if s.conf.LookupWorkers < 1 {
		return 1
	}
	return s.conf.LookupWorkers
}

// lookup runs on pool goroutines, so panic of querier is returned as errLookupPanic
func (s *Server) lookup(ctx context.Context, word string) (result *meaning.WordResult, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	recovered := panics.Try(func() {
		result, err = s.q.Lookup(ctx, word)
	})
	if recovered != nil {
		return nil, fmt.Errorf("%w: %w", errLookupPanic, recovered.AsError())
	}
	if errors.Is(err, querier.ErrNotFound) {
		return &meaning.WordResult{}, nil
	}
	return result, err
}

func lookupStatus(err error) int {
	switch {
	case errors.Is(err, errLookupPanic):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
