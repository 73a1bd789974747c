package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avialine/groupfare/api"
	"github.com/avialine/groupfare/config"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Handlers carries every route family the server mounts.
type Handlers struct {
	Flights   *api.FlightHandler
	AdminBids *api.AdminBidHandler
	Retail    *api.RetailBidHandler
	Statuses  *api.StatusHandler
}

// Run starts the HTTP server and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, h Handlers) error {
	engine := newEngine(cfg, h)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(cfg *config.Config, h Handlers) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.Flights.Register(engine.Group("/api/flights"))

	admin := engine.Group("/api/admin")
	h.AdminBids.Register(admin)
	h.Statuses.Register(admin)

	h.Retail.Register(engine.Group("/api/retail"))

	if cfg.HTTP.SwaggerDir != "" {
		engine.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		engine.GET("/docs/bidding/*any", gin.WrapH(httpSwagger.Handler(
			httpSwagger.URL("/swagger/bidding.swagger.json"),
		)))
	}

	return engine
}
