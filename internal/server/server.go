// Package server wires the fiber application: middleware, HTTP routes and
// the relay websocket endpoint.
package server

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/gorm"

	"flowdraw/internal/auth"
	"flowdraw/internal/cache"
	"flowdraw/internal/config"
	"flowdraw/internal/handler"
	"flowdraw/internal/relay"
)

// Server holds the fiber app and everything the routes need.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	jwt      *auth.JWTManager
	registry *relay.Registry
}

// New builds the application. rc may be nil when Redis is disabled.
func New(cfg *config.Config, db *gorm.DB, rc *cache.RedisClient) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "flowdraw",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORS.AllowOrigins,
		AllowHeaders: cfg.CORS.AllowHeaders,
	}))

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenExpiry)

	chatHandler := handler.NewChatHandler(db, rc, cfg.Canvas.HistoryLimit)
	s := &Server{
		app:      app,
		cfg:      cfg,
		jwt:      jwtManager,
		registry: relay.NewRegistry(chatHandler),
	}

	authHandler := handler.NewAuthHandler(db, jwtManager)
	roomHandler := handler.NewRoomHandler(db, rc)
	healthHandler := handler.NewHealthHandler(db, rc)

	protected := auth.Middleware(jwtManager)

	// credential endpoints are rate limited, everything else is not
	authLimiter := limiter.New(limiter.Config{
		Max:        20,
		Expiration: time.Minute,
	})

	app.Get("/health", healthHandler.Health)
	app.Post("/signup", authLimiter, authHandler.Signup)
	app.Post("/signin", authLimiter, authHandler.Signin)

	app.Post("/room", protected, roomHandler.Create)
	app.Get("/allrooms", protected, roomHandler.List)
	app.Get("/room/:slug", roomHandler.BySlug)
	app.Delete("/room/:id", protected, roomHandler.Delete)

	app.Get("/chats/:roomId", chatHandler.GetChats)
	app.Delete("/drawing/:id", protected, chatHandler.DeleteDrawing)

	s.mountRelay()

	return s
}

// mountRelay authenticates the handshake from the query-string token and
// hands the upgraded connection to the registry.
func (s *Server) mountRelay() {
	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}

		claims, err := s.jwt.ValidateAccessToken(c.Query("token"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid token",
			})
		}
		c.Locals("userID", claims.UserID)
		return c.Next()
	})

	s.app.Get("/ws", websocket.New(func(conn *websocket.Conn) {
		userID, ok := conn.Locals("userID").(int64)
		if !ok {
			conn.Close()
			return
		}
		s.registry.Serve(conn, userID)
	}, websocket.Config{
		ReadBufferSize:  s.cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: s.cfg.WebSocket.WriteBufferSize,
	}))
}

// Start listens until SIGINT/SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(s.cfg.Server.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Printf("[Server] received %s, shutting down", sig)
		return s.app.ShutdownWithTimeout(10 * time.Second)
	}
}
