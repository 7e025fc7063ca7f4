package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/loader"
	"github.com/surveypulse/backend/internal/store"
	"github.com/surveypulse/backend/pkg/utils"
)

// Pinger is implemented by the warehouse reader and the redis cache.
type Pinger interface {
	Ping() error
}

type HealthHandler struct {
	warehouse Pinger
	redis     Pinger // nil when the in-memory cache is active
	store     *store.CampaignStore
	campaigns []*config.CampaignConfig
	loader    *loader.Loader
	logger    *logrus.Logger
}

func NewHealthHandler(
	warehouse Pinger,
	redis Pinger,
	campaignStore *store.CampaignStore,
	campaigns []*config.CampaignConfig,
	l *loader.Loader,
	logger *logrus.Logger,
) *HealthHandler {
	return &HealthHandler{
		warehouse: warehouse,
		redis:     redis,
		store:     campaignStore,
		campaigns: campaigns,
		loader:    l,
		logger:    logger,
	}
}

type campaignStatus struct {
	Code     string `json:"code"`
	Loaded   bool   `json:"loaded"`
	LoadedAt string `json:"loaded_at,omitempty"`
}

type healthStatus struct {
	Status    string           `json:"status"`
	Warehouse string           `json:"warehouse"`
	Cache     string           `json:"cache"`
	Loading   bool             `json:"loading"`
	Campaigns []campaignStatus `json:"campaigns"`
}

// HandleHealth reports connectivity and per-campaign data freshness.
func (h *HealthHandler) HandleHealth(c *gin.Context) {
	status := healthStatus{
		Status:    "ok",
		Warehouse: "up",
		Cache:     "memory",
		Loading:   h.loader.IsLoading(),
	}

	if err := h.warehouse.Ping(); err != nil {
		h.logger.WithError(err).Warn("Warehouse ping failed")
		status.Status = "degraded"
		status.Warehouse = "down"
	}

	if h.redis != nil {
		status.Cache = "redis"
		if err := h.redis.Ping(); err != nil {
			h.logger.WithError(err).Warn("Redis ping failed")
			status.Status = "degraded"
			status.Cache = "down"
		}
	}

	for _, cfg := range h.campaigns {
		cs := campaignStatus{Code: cfg.Code, Loaded: h.store.HasData(cfg.Code)}
		if loadedAt, ok := h.store.LoadedAt(cfg.Code); ok {
			cs.LoadedAt = loadedAt.UTC().Format(time.RFC3339)
		}
		status.Campaigns = append(status.Campaigns, cs)
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	utils.SuccessResponse(c, code, "", status)
}
