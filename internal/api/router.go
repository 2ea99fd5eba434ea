package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fritter/fritter/internal/cache"
	"github.com/fritter/fritter/internal/db"
	"github.com/fritter/fritter/internal/feed"
	"github.com/fritter/fritter/pkg/config"
	"github.com/fritter/fritter/pkg/logging"
)

// Router sets up API routes
type Router struct {
	handler *JSONRPCHandler
	db      *db.DB
	cache   *cache.Cache
	logger  *zap.Logger
}

// NewRouter creates a new API router
func NewRouter(database *db.DB, redisCache *cache.Cache, cfg *config.Config) *Router {
	handler := NewJSONRPCHandler()
	router := &Router{
		handler: handler,
		db:      database,
		cache:   redisCache,
		logger:  logging.GetLogger().With(zap.String("component", "api-router")),
	}

	// Register all API methods
	router.registerMethods(cfg)

	return router
}

// SetupRoutes sets up all API routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check endpoints
	engine.GET("/health", r.healthHandler)
	engine.GET("/.well-known/healthcheck.json", r.healthHandler)

	// JSON-RPC endpoint
	engine.POST("/", r.handler.Handle)
}

// registerMethods registers all API methods
func (r *Router) registerMethods(cfg *config.Config) {
	store := db.NewStore(r.db)
	clock := feed.SystemClock{}
	policy := feed.PolicyFromConfig(&cfg.Feed)
	logger := logging.GetLogger()

	freets := feed.NewFreetService(store, clock, policy, logger.With(zap.String("component", "freets")))
	votes := feed.NewVoteLedger(store, logger.With(zap.String("component", "votes")))
	reports := feed.NewReportLedger(store, clock, policy, logger.With(zap.String("component", "reports")))
	audits := feed.NewAuditProcess(store, clock, policy, logger.With(zap.String("component", "audits")))
	selector := feed.NewSelector(store, clock, feed.NewRand(clock.Now().UnixNano()), policy,
		logger.With(zap.String("component", "selector")))

	freetAPI := NewFreetAPI(freets, votes, reports, audits)
	feedAPI := NewFeedAPI(selector, r.cache)
	userAPI := NewUserAPI(store)

	// Freet lifecycle
	r.handler.RegisterMethod("fritter.create_freet", freetAPI.CreateFreet)
	r.handler.RegisterMethod("fritter.get_freet", freetAPI.GetFreet)
	r.handler.RegisterMethod("fritter.update_freet", freetAPI.UpdateFreet)
	r.handler.RegisterMethod("fritter.delete_freet", freetAPI.DeleteFreet)

	// Moderation
	r.handler.RegisterMethod("fritter.vote", freetAPI.Vote)
	r.handler.RegisterMethod("fritter.report", freetAPI.Report)
	r.handler.RegisterMethod("fritter.audit_vote", freetAPI.AuditVote)

	// Feed views
	r.handler.RegisterMethod("fritter.get_feed", feedAPI.GetFeed)

	// Users and follows
	r.handler.RegisterMethod("fritter.get_user", userAPI.GetUser)
	r.handler.RegisterMethod("fritter.follow", userAPI.Follow)
	r.handler.RegisterMethod("fritter.unfollow", userAPI.Unfollow)
}

// healthHandler handles health check requests
func (r *Router) healthHandler(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "OK",
		"service": "fritter-api",
	})
}
