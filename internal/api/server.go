package api

import (
	"net/http"
	"time"

	"github.com/HatimDz/crypto-sub000/internal/events"
	"github.com/HatimDz/crypto-sub000/internal/learning"
	"github.com/HatimDz/crypto-sub000/internal/market"
	"github.com/HatimDz/crypto-sub000/internal/signal"
	"github.com/HatimDz/crypto-sub000/pkg/db"

	"github.com/gin-gonic/gin"
)

// Server wires HTTP endpoints around the analysis core.
type Server struct {
	Router    *gin.Engine
	Bus       *events.Bus
	DB        *db.Database
	Provider  market.HistoryProvider
	Learner   *learning.Learner
	Profiles  map[string]signal.Profile
	JWTSecret string
	AccessKey string
	Meta      SystemMeta

	queries *db.Queries
}

// SystemMeta describes runtime status exposed to clients.
type SystemMeta struct {
	Version string
	Testnet bool
	Symbols []string
}

// NewServer builds the router with the full middleware stack and routes.
func NewServer(bus *events.Bus, database *db.Database, provider market.HistoryProvider, learner *learning.Learner, profiles []signal.Profile, meta SystemMeta, jwtSecret, accessKey string) *Server {
	r := gin.New()

	// Middleware stack (order matters!)
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(RequestLogger())
	r.Use(RateLimitMiddleware())
	r.Use(TimeoutMiddleware(30 * time.Second))
	r.Use(CORSMiddleware())

	byName := make(map[string]signal.Profile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}

	s := &Server{
		Router:    r,
		Bus:       bus,
		DB:        database,
		Provider:  provider,
		Learner:   learner,
		Profiles:  byName,
		JWTSecret: jwtSecret,
		AccessKey: accessKey,
		Meta:      meta,
		queries:   database.Queries(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.Router.GET("/health", s.health)
	s.Router.GET("/ws", s.websocket)

	api := s.Router.Group("/api")
	{
		api.POST("/auth/token", s.issueToken)

		protected := api.Group("")
		protected.Use(AuthMiddleware(s.JWTSecret))
		{
			protected.GET("/signal/:symbol", s.getSignal)
			protected.GET("/optimal/:symbol", s.getOptimalPrices)

			protected.POST("/backtests", s.runBacktest)
			protected.GET("/backtests", s.listBacktests)
			protected.GET("/backtests/:id", s.getBacktest)

			protected.GET("/learning/:symbol", s.getLearningState)
			protected.POST("/learning/:symbol/trades", s.recordTradeOutcome)
			protected.DELETE("/learning/:symbol", s.resetLearning)

			protected.GET("/weights/:symbol", s.getWeights)
			protected.PUT("/weights/:symbol", s.putWeights)
			protected.DELETE("/weights/:symbol", s.deleteWeights)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"version": s.Meta.Version,
		"testnet": s.Meta.Testnet,
		"symbols": s.Meta.Symbols,
	})
}

func (s *Server) Start(addr string) error {
	return s.Router.Run(addr)
}
