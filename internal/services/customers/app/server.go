// Package server hosts the customers HTTP service: a small JSON CRUD surface
// over persistent customer records.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/louisbranch/tableside/internal/platform/timeouts"
	"github.com/louisbranch/tableside/internal/services/customers/storage"
	customersqlite "github.com/louisbranch/tableside/internal/services/customers/storage/sqlite"
)

const maxCustomerNameRunes = 300

// Config defines the inputs for the customers HTTP boundary.
type Config struct {
	HTTPAddr          string
	DBPath            string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the customers HTTP process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	store           *customersqlite.Store
}

type customerRequest struct {
	Name string `json:"name"`
}

type customerResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toCustomerResponse(customer storage.Customer) customerResponse {
	return customerResponse{
		ID:        customer.ID,
		Name:      customer.Name,
		CreatedAt: customer.CreatedAt.UTC().UnixMilli(),
		UpdatedAt: customer.UpdatedAt.UTC().UnixMilli(),
	}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.New("name is required")
	}
	if utf8.RuneCountInString(name) > maxCustomerNameRunes {
		return "", fmt.Errorf("name exceeds %d characters", maxCustomerNameRunes)
	}
	return name, nil
}

// NewServer builds a configured customers server backed by SQLite storage.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	dbPath := strings.TrimSpace(config.DBPath)
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := customersqlite.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open customers storage: %w", err)
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(store),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		store:           store,
	}, nil
}

// Run creates and serves a customers server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init customers server: %w", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			log.Printf("close customers storage: %v", err)
		}
	}()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve customers: %w", err)
	}
	return nil
}

// Close releases the storage handle.
func (s *Server) Close() error {
	if s == nil || s.store == nil {
		return nil
	}
	return s.store.Close()
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("customers server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("customers server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// NewHandler builds the customers route table over the given store.
func NewHandler(store storage.CustomerStore) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /customers", func(w http.ResponseWriter, r *http.Request) {
		handleCreateCustomer(w, r, store)
	})
	mux.HandleFunc("GET /customers", func(w http.ResponseWriter, r *http.Request) {
		handleListCustomers(w, r, store)
	})
	mux.HandleFunc("GET /customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetCustomer(w, r, store)
	})
	mux.HandleFunc("PATCH /customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleUpdateCustomer(w, r, store)
	})
	mux.HandleFunc("DELETE /customers/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleDeleteCustomer(w, r, store)
	})

	return withCORS(mux)
}

// withCORS answers preflight requests and stamps permissive CORS headers so
// browser clients on other origins can reach the API directly.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func handleCreateCustomer(w http.ResponseWriter, r *http.Request, store storage.CustomerStore) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	now := time.Now().UTC()
	customer := storage.Customer{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.PutCustomer(r.Context(), customer); err != nil {
		log.Printf("create customer: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to create customer")
		return
	}
	writeJSON(w, http.StatusCreated, toCustomerResponse(customer))
}

func handleListCustomers(w http.ResponseWriter, r *http.Request, store storage.CustomerStore) {
	customers, err := store.ListCustomers(r.Context())
	if err != nil {
		log.Printf("list customers: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}
	responses := make([]customerResponse, 0, len(customers))
	for _, customer := range customers {
		responses = append(responses, toCustomerResponse(customer))
	}
	writeJSON(w, http.StatusOK, responses)
}

func handleGetCustomer(w http.ResponseWriter, r *http.Request, store storage.CustomerStore) {
	customer, err := store.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		log.Printf("get customer: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to get customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func handleUpdateCustomer(w http.ResponseWriter, r *http.Request, store storage.CustomerStore) {
	var req customerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	name, err := validateName(req.Name)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	customer, err := store.GetCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		log.Printf("update customer: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}

	customer.Name = name
	customer.UpdatedAt = time.Now().UTC()
	if err := store.PutCustomer(r.Context(), customer); err != nil {
		log.Printf("update customer: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to update customer")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(customer))
}

func handleDeleteCustomer(w http.ResponseWriter, r *http.Request, store storage.CustomerStore) {
	err := store.DeleteCustomer(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "customer not found")
			return
		}
		log.Printf("delete customer: %v", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
