package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"productapi/pkg/kit"
)

const (
	maxBodyBytes = 1 << 20

	welcomeText = "Welcome to the Product API!"

	msgBadJSON     = "Invalid JSON body."
	msgNotObject   = "Request body must be a JSON object."
	msgNoRoute     = "Route not found"
	msgNoMethod    = "Method not allowed"
	msgNotReady    = "not ready"
	readyzDeadline = 1 * time.Second
)

type Server struct {
	Store Store
	Keys  *KeyChecker
	Log   *zap.Logger
}

// handlerFunc is a handler that reports failure by returning it. The
// returned error is rendered by Server.fail and nowhere else.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteError(w, http.StatusNotFound, msgNoRoute)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		kit.WriteError(w, http.StatusMethodNotAllowed, msgNoMethod)
	})

	r.Get("/", welcome)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", s.handle(s.ready))

	r.Route("/api/products", func(pr chi.Router) {
		pr.Get("/", s.handle(s.list))
		pr.Get("/search", s.handle(s.search))
		pr.Get("/stats", s.handle(s.stats))
		pr.Get("/{id}", s.handle(s.get))

		pr.Group(func(ar chi.Router) {
			ar.Use(s.requireAPIKey)
			ar.Post("/", s.handle(s.create))
			ar.Put("/{id}", s.handle(s.update))
			ar.Delete("/{id}", s.handle(s.delete))
		})
	})

	return r
}

func welcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, welcomeText)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), readyzDeadline)
	defer cancel()

	if err := s.Store.Ping(ctx); err != nil {
		s.logger().Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, http.StatusServiceUnavailable, msgNotReady)
		return nil
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	pp, err := ParsePageParams(q.Get("page"), q.Get("limit"))
	if err != nil {
		return err
	}

	products, err := s.Store.List(r.Context())
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	kit.WriteJSON(w, http.StatusOK, Paginate(FilterByCategory(products, q.Get("category")), pp))
	return nil
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	p, err := s.Store.Get(r.Context(), id)
	if err != nil {
		return fmt.Errorf("get product %s: %w", id, err)
	}

	kit.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (s *Server) search(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query().Get("q")

	products, err := s.Store.List(r.Context())
	if err != nil {
		return fmt.Errorf("search products: %w", err)
	}

	found, err := Search(products, q)
	if err != nil {
		return err
	}

	kit.WriteJSON(w, http.StatusOK, found)
	return nil
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) error {
	products, err := s.Store.List(r.Context())
	if err != nil {
		return fmt.Errorf("product stats: %w", err)
	}

	kit.WriteJSON(w, http.StatusOK, CategoryStats(products))
	return nil
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) error {
	payload, err := decodePayload(w, r)
	if err != nil {
		return err
	}

	draft, err := ValidateCreate(payload)
	if err != nil {
		return err
	}

	p, err := s.Store.Insert(r.Context(), draft)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}

	s.logger().Info("product created",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("id", p.ID),
		zap.String("name", p.Name),
	)
	kit.WriteJSON(w, http.StatusCreated, p)
	return nil
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	payload, err := decodePayload(w, r)
	if err != nil {
		return err
	}

	patch, err := ValidateUpdate(payload)
	if err != nil {
		return err
	}

	p, err := s.Store.Update(r.Context(), id, patch)
	if err != nil {
		return fmt.Errorf("update product %s: %w", id, err)
	}

	s.logger().Info("product updated",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("id", p.ID),
	)
	kit.WriteJSON(w, http.StatusOK, p)
	return nil
}

func (s *Server) delete(w http.ResponseWriter, r *http.Request) error {
	id := chi.URLParam(r, "id")

	if err := s.Store.Delete(r.Context(), id); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}

	s.logger().Info("product deleted",
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("id", id),
	)
	kit.WriteNoContent(w)
	return nil
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := r.Header.Get(APIKeyHeader)
		_, present := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]

		if err := s.Keys.Authenticate(provided, present); err != nil {
			s.fail(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			s.fail(w, r, err)
		}
	}
}

// fail renders err as {"message": ...}. Only validation and not-found
// messages reach the client; everything else becomes a generic 500.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusOf(err)

	log := s.logger().With(
		zap.String("request_id", chimw.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	if status == http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
	} else {
		log.Info("request rejected", zap.String("message", PublicMessage(err)))
	}

	kit.WriteError(w, status, PublicMessage(err))
}

func StatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) logger() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}

// decodePayload reads a JSON object body. An empty body is an empty object.
func decodePayload(w http.ResponseWriter, r *http.Request) (Payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer func() { _ = r.Body.Close() }()

	raw, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, Validation(msgBadJSON)
		}
		return nil, fmt.Errorf("read body: %w", err)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return Payload{}, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Validation(msgBadJSON)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, Validation(msgBadJSON)
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, Validation(msgNotObject)
	}
	return Payload(obj), nil
}
