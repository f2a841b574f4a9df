package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dukerupert/moveready/internal/auth"
	"github.com/dukerupert/moveready/internal/backup"
	"github.com/dukerupert/moveready/internal/config"
	"github.com/dukerupert/moveready/internal/database"
	"github.com/dukerupert/moveready/internal/handler"
	"github.com/dukerupert/moveready/internal/middleware"
	"github.com/dukerupert/moveready/internal/pubsub"
	"github.com/dukerupert/moveready/internal/push"
	"github.com/dukerupert/moveready/internal/remote"
	"github.com/dukerupert/moveready/internal/replica"
	"github.com/dukerupert/moveready/internal/store"
	"github.com/dukerupert/moveready/internal/syncstore"
	ws "github.com/dukerupert/moveready/internal/websocket"
)

// ErrNoJWTSecret is returned by New when tokens could not be signed.
var ErrNoJWTSecret = errors.New("auth.jwt_secret is required")

type Server struct {
	db          *database.DB
	cfg         *config.Config
	hub         *ws.Hub
	replicas    *replica.Manager
	provider    *auth.Provider
	archiver    *backup.Archiver
	scheduler   *push.Scheduler
	rateLimiter *middleware.RateLimiter
	registry    *prometheus.Registry
	httpMetrics *middleware.HTTPMetrics
	logger      *slog.Logger

	documentH  *handler.DocumentHandler
	inventoryH *handler.InventoryHandler
	adminH     *handler.AdminHandler
	groceryH   *handler.GroceryHandler
	roommateH  *handler.RoommateHandler
	snapshotH  *handler.SnapshotHandler
	toolH      *handler.ToolHandler
	dataH      *handler.DataHandler
	authH      *handler.AuthHandler
	pushH      *handler.PushHandler

	detachAuth func()
	cancel     context.CancelFunc
}

// New wires the stores, replica manager and background services. Stores
// opened through it live until Shutdown.
func New(ctx context.Context, db *database.DB, ps pubsub.PubSub, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if cfg.Auth.JWTSecret == "" {
		return nil, ErrNoJWTSecret
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	docStore := store.NewDocumentStore(db)
	userStore := store.NewUserStore(db)
	pushSt := store.NewPushStore(db)

	hub := ws.NewHub(logger)
	replicas := replica.NewManager(ctx, remote.New(docStore, ps, logger), hub, logger,
		syncstore.WithMetrics(syncstore.NewMetrics(registry)))
	registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "moveready",
			Name:      "active_documents",
			Help:      "Documents with a running synchronized store.",
		}, func() float64 { return float64(replicas.Len()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "moveready",
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients.",
		}, func() float64 { return float64(hub.ClientCount()) }),
	)

	provider := auth.NewProvider(userStore, cfg.Auth, logger)

	archiveLogger := logger.With("component", "archive")
	archiver := backup.NewArchiver(cfg.Backup, backup.StoreSource{Docs: docStore, Users: userStore}, logger, func(s backup.Status) {
		archiveLogger.Debug("archive status", "state", s.State, "in_progress", s.InProgress, "error", s.Error)
	})

	var sender push.Sender
	var scheduler *push.Scheduler
	if cfg.Push.Enabled() {
		svc := push.NewService(cfg.Push)
		sender = svc
		scheduler = push.NewScheduler(svc, pushSt, replicas, cfg.Push.Interval, logger)
	} else {
		logger.Info("push notifications disabled: VAPID keys not configured")
	}

	return &Server{
		db:          db,
		cfg:         cfg,
		hub:         hub,
		replicas:    replicas,
		provider:    provider,
		archiver:    archiver,
		scheduler:   scheduler,
		rateLimiter: middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		registry:    registry,
		httpMetrics: middleware.NewHTTPMetrics(registry),
		logger:      logger,

		documentH:  handler.NewDocumentHandler(replicas, logger.With("component", "document")),
		inventoryH: handler.NewInventoryHandler(replicas, logger.With("component", "inventory")),
		adminH:     handler.NewAdminHandler(replicas, logger.With("component", "admin")),
		groceryH:   handler.NewGroceryHandler(replicas, logger.With("component", "grocery")),
		roommateH:  handler.NewRoommateHandler(replicas, logger.With("component", "roommate")),
		snapshotH:  handler.NewSnapshotHandler(replicas, logger.With("component", "snapshot")),
		toolH:      handler.NewToolHandler(replicas, logger),
		dataH:      handler.NewDataHandler(replicas, userStore, archiver, logger),
		authH:      handler.NewAuthHandler(provider, logger),
		pushH:      handler.NewPushHandler(pushSt, sender, cfg.Push.VAPIDPublicKey, logger),

		detachAuth: replicas.Attach(provider),
	}, nil
}

// Provider returns the identity provider.
func (s *Server) Provider() *auth.Provider {
	return s.provider
}

// Replicas returns the replica manager.
func (s *Server) Replicas() *replica.Manager {
	return s.replicas
}

// Start launches the background loops: scheduled archives, deadline
// reminders and rate limiter cleanup.
func (s *Server) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.archiver.Start(ctx)
	if s.scheduler != nil {
		s.scheduler.Start(ctx)
	}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.rateLimiter.Cleanup(10 * time.Minute)
			}
		}
	}()
}

// Shutdown stops the background loops and every running store. Pending
// writes are drained before it returns.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.archiver.Stop()
	s.detachAuth()
	s.replicas.Close()
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/register", s.rateLimitedHandler(s.authH.Register))
	outerMux.HandleFunc("POST /api/auth/login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("POST /api/auth/oauth", s.rateLimitedHandler(s.authH.OAuth))
	outerMux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	// Protected routes, wrapped with RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.provider)
	outerMux.Handle("/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger)(s.httpMetrics.Instrument(outerMux))
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
		return
	}
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "ok",
		"documents": s.replicas.Len(),
		"clients":   s.hub.ClientCount(),
	})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.RealIP)
	return rl(h).ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/logout", s.authH.Logout)
	mux.HandleFunc("GET /api/auth/me", s.authH.Me)

	// Document views
	mux.HandleFunc("GET /api/state", s.documentH.State)
	mux.HandleFunc("GET /api/dashboard", s.documentH.Dashboard)
	mux.HandleFunc("GET /api/budget", s.documentH.Budget)
	mux.HandleFunc("GET /api/badges", s.documentH.Badges)
	mux.HandleFunc("GET /api/shopping", s.documentH.Shopping)

	// Inventory
	mux.HandleFunc("POST /api/items", s.inventoryH.Create)
	mux.HandleFunc("PUT /api/items/{id}", s.inventoryH.Update)
	mux.HandleFunc("POST /api/items/{id}/toggle", s.inventoryH.Toggle)
	mux.HandleFunc("POST /api/items/{id}/subitems/{sub}/toggle", s.inventoryH.ToggleSubItem)
	mux.HandleFunc("DELETE /api/items/{id}", s.inventoryH.Delete)
	mux.HandleFunc("POST /api/items/batch", s.inventoryH.Batch)
	mux.HandleFunc("GET /api/templates", s.documentH.Templates)
	mux.HandleFunc("POST /api/templates/{id}/import", s.documentH.ImportTemplate)

	// Admin tasks
	mux.HandleFunc("GET /api/admin-tasks", s.adminH.List)
	mux.HandleFunc("POST /api/admin-tasks/{id}/toggle", s.adminH.Toggle)
	mux.HandleFunc("PUT /api/admin-tasks/{id}/date", s.adminH.SetDate)
	mux.HandleFunc("PUT /api/admin-tasks/{id}/status", s.adminH.SetStatus)
	mux.HandleFunc("GET /api/admin-tasks/calendar.ics", s.adminH.Calendar)

	// Moving
	mux.HandleFunc("GET /api/moving", s.documentH.Moving)
	mux.HandleFunc("PUT /api/moving/date", s.documentH.SetMovingDate)
	mux.HandleFunc("PUT /api/moving/furniture", s.documentH.SetFurniture)
	mux.HandleFunc("PUT /api/moving/box-size", s.documentH.SetBoxSize)
	mux.HandleFunc("PUT /api/boxes/{category}", s.documentH.SetBox)

	// Groceries
	mux.HandleFunc("POST /api/groceries", s.groceryH.Create)
	mux.HandleFunc("PUT /api/groceries/{id}", s.groceryH.Update)
	mux.HandleFunc("POST /api/groceries/{id}/toggle", s.groceryH.Toggle)
	mux.HandleFunc("POST /api/groceries/{id}/favorite", s.groceryH.Favorite)
	mux.HandleFunc("DELETE /api/groceries/{id}", s.groceryH.Delete)
	mux.HandleFunc("POST /api/groceries/clear-checked", s.groceryH.ClearChecked)

	// Roommates
	mux.HandleFunc("GET /api/roommates", s.roommateH.List)
	mux.HandleFunc("POST /api/roommates", s.roommateH.Add)
	mux.HandleFunc("DELETE /api/roommates/{name}", s.roommateH.Remove)

	// Snapshots
	mux.HandleFunc("GET /api/snapshots", s.snapshotH.List)
	mux.HandleFunc("POST /api/snapshots", s.snapshotH.Create)
	mux.HandleFunc("POST /api/snapshots/{id}/restore", s.snapshotH.Restore)
	mux.HandleFunc("DELETE /api/snapshots/{id}", s.snapshotH.Delete)

	// Agent tools
	mux.HandleFunc("GET /api/tools", s.toolH.List)
	mux.HandleFunc("POST /api/tools/{name}", s.toolH.Call)

	// Data
	mux.HandleFunc("GET /api/export", s.dataH.Export)
	mux.HandleFunc("POST /api/import", s.dataH.Import)
	mux.HandleFunc("POST /api/reset", s.dataH.Reset)
	mux.HandleFunc("POST /api/onboarding", s.dataH.Onboard)
	mux.HandleFunc("POST /api/archive", s.dataH.Archive)
	mux.HandleFunc("GET /api/archives", s.dataH.Archives)

	// Push notifications
	mux.HandleFunc("POST /api/push/subscribe", s.pushH.Subscribe)
	mux.HandleFunc("POST /api/push/unsubscribe", s.pushH.Unsubscribe)
	mux.HandleFunc("GET /api/push/subscriptions", s.pushH.ListSubscriptions)
	mux.HandleFunc("POST /api/push/test", s.pushH.TestNotification)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.cfg.Server.AllowedOrigins, func(ctx context.Context, userID string) error {
		_, err := s.replicas.Get(ctx, userID)
		return err
	}))
}
