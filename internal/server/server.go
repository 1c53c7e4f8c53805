package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	"bank-ledger/internal/config"
	"bank-ledger/internal/handler"
	"bank-ledger/internal/repository"
	"bank-ledger/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *mux.Router
	server *http.Server
	db     *sql.DB
	mirror *repository.LedgerMirror
	logger *slog.Logger
	port   string
}

// NewServer wires the store, services and handlers. The mirror database is
// only opened when cfg.MirrorEnabled is set.
func NewServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	s := &Server{logger: logger}

	var opts []service.Option
	if cfg.MirrorEnabled {
		db, err := openDB(cfg, logger)
		if err != nil {
			return nil, err
		}
		s.db = db
		s.mirror = repository.NewLedgerMirror(db, uuid.New(), logger)
		opts = append(opts, service.WithSink(s.mirror))

		logger.Info("Ledger mirror enabled", "run_id", s.mirror.RunID())
	}

	// Initialize store (in-memory registries and ledger)
	store := repository.NewStore(repository.Capacities{
		Customers: cfg.CustomerCapacity,
		Accounts:  cfg.AccountCapacity,
		Ledger:    cfg.LedgerCapacity,
	}, logger)

	// Initialize services
	customerService := service.NewCustomerService(store, logger)
	accountService := service.NewAccountService(store, cfg.OverdraftLimit, logger)
	transactionService := service.NewTransactionService(store, logger, opts...)

	// Initialize handlers
	customerHandler := handler.NewCustomerHandler(customerService, accountService)
	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(transactionService)

	// Setup router
	router := mux.NewRouter()

	// Add middleware for logging
	router.Use(loggingMiddleware(logger))

	// Customer routes
	router.HandleFunc("/customers", customerHandler.RegisterCustomer).Methods("POST")
	router.HandleFunc("/customers", customerHandler.ListCustomers).Methods("GET")
	router.HandleFunc("/customers/{customer_id}", customerHandler.GetCustomer).Methods("GET")
	router.HandleFunc("/customers/{customer_id}/accounts", customerHandler.ListCustomerAccounts).Methods("GET")

	// Account routes
	router.HandleFunc("/accounts", accountHandler.OpenAccount).Methods("POST")
	router.HandleFunc("/accounts", accountHandler.ListAccounts).Methods("GET")
	router.HandleFunc("/accounts/{account_number}", accountHandler.GetAccount).Methods("GET")
	router.HandleFunc("/accounts/{account_number}/status", accountHandler.UpdateStatus).Methods("PATCH")
	router.HandleFunc("/accounts/{account_number}/interest", accountHandler.CalculateInterest).Methods("GET")

	// Transaction routes
	router.HandleFunc("/accounts/{account_number}/deposits", transactionHandler.Deposit).Methods("POST")
	router.HandleFunc("/accounts/{account_number}/withdrawals", transactionHandler.Withdraw).Methods("POST")
	router.HandleFunc("/accounts/{account_number}/transactions", transactionHandler.ProcessTransaction).Methods("POST")
	router.HandleFunc("/accounts/{account_number}/transactions", transactionHandler.History).Methods("GET")
	router.HandleFunc("/accounts/{account_number}/summary", transactionHandler.Summary).Methods("GET")
	router.HandleFunc("/transfers", transactionHandler.Transfer).Methods("POST")

	router.HandleFunc("/bank/summary", accountHandler.BankSummary).Methods("GET")

	// Health check
	router.HandleFunc("/health", s.health).Methods("GET")

	s.router = router
	return s, nil
}

func openDB(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("Successfully connected to database")
	return db, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy", "error": "database unavailable"})
			return
		}
	}

	json.NewEncoder(w).Encode(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// loggingMiddleware adds request logging
func loggingMiddleware(logger *slog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.statusCode,
				"duration", time.Since(start),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Start starts the HTTP server on the specified port
func (s *Server) Start(port string) (string, error) {
	// Create listener first to get actual port
	listener, err := net.Listen("tcp", ":"+port)
	if err != nil {
		return "", err
	}

	addr := listener.Addr().(*net.TCPAddr)
	s.port = strconv.Itoa(addr.Port)

	s.server = &http.Server{
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server", "port", s.port)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server failed to start", "error", err)
		}
	}()

	return s.port, nil
}

// Stop gracefully shuts down the server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	// Close the database after in-flight requests finished mirroring
	if s.db != nil {
		s.db.Close()
	}
	return err
}

// GetPort returns the port the server is listening on
func (s *Server) GetPort() string {
	return s.port
}

// GetBaseURL returns the base URL for the server
func (s *Server) GetBaseURL() string {
	return "http://localhost:" + s.port
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *mux.Router {
	return s.router
}

// Mirror returns the ledger mirror, or nil when mirroring is disabled.
func (s *Server) Mirror() *repository.LedgerMirror {
	return s.mirror
}

// NewLogger builds the process logger. Port "0" means a test run and
// discards output.
func NewLogger(cfg *config.Config) *slog.Logger {
	if cfg.ServerPort == "0" {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
}

// StartServer starts the server with the given configuration
func StartServer(cfg *config.Config) (*Server, string, error) {
	logger := NewLogger(cfg)

	server, err := NewServer(cfg, logger)
	if err != nil {
		return nil, "", err
	}

	port, err := server.Start(cfg.ServerPort)
	if err != nil {
		return nil, "", err
	}

	return server, port, nil
}
