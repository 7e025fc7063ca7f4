package handlers

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/cache"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/loader"
	"github.com/surveypulse/backend/internal/models"
	"github.com/surveypulse/backend/internal/store"
	"github.com/surveypulse/backend/pkg/utils"
)

// CampaignHandler serves the read-only campaign aggregates out of the
// campaign store, behind the response cache.
type CampaignHandler struct {
	campaigns     map[string]*config.CampaignConfig
	store         *store.CampaignStore
	responseCache cache.ResponseCache
	translations  *cache.TranslationsCache
	loader        *loader.Loader
	logger        *logrus.Logger
}

func NewCampaignHandler(
	campaigns []*config.CampaignConfig,
	campaignStore *store.CampaignStore,
	responseCache cache.ResponseCache,
	translations *cache.TranslationsCache,
	l *loader.Loader,
	logger *logrus.Logger,
) *CampaignHandler {
	byCode := make(map[string]*config.CampaignConfig, len(campaigns))
	for _, cfg := range campaigns {
		byCode[cfg.Code] = cfg
	}
	return &CampaignHandler{
		campaigns:     byCode,
		store:         campaignStore,
		responseCache: responseCache,
		translations:  translations,
		loader:        l,
		logger:        logger,
	}
}

// campaign resolves the :code path parameter. A first-ever load that never
// succeeded is the only case with nothing to serve; it surfaces as an
// absent-campaign condition.
func (h *CampaignHandler) campaign(c *gin.Context) (*config.CampaignConfig, bool) {
	code := c.Param("code")
	cfg, ok := h.campaigns[code]
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Unknown campaign", nil)
		return nil, false
	}
	if !h.store.HasData(code) {
		utils.ErrorResponse(c, http.StatusNotFound, "Campaign data is not available", nil)
		return nil, false
	}
	return cfg, true
}

type filterOptions struct {
	Ages        []models.FacetValue `json:"ages"`
	AgeRanges   []models.FacetValue `json:"age_ranges"`
	Genders     []models.FacetValue `json:"genders"`
	Professions []models.FacetValue `json:"professions"`
	Countries   []models.Country    `json:"countries"`
}

// HandleFilterOptions returns the demographic facet sets of a campaign.
func (h *CampaignHandler) HandleFilterOptions(c *gin.Context) {
	cfg, ok := h.campaign(c)
	if !ok {
		return
	}
	lang := c.DefaultQuery("lang", "en")

	key := cache.Key(map[string]string{
		"endpoint": "filter-options",
		"campaign": cfg.Code,
		"lang":     lang,
	})
	if cached, ok := h.responseCache.Get(c.Request.Context(), key); ok {
		utils.SuccessResponse(c, http.StatusOK, "", json.RawMessage(cached))
		return
	}

	options := filterOptions{
		Ages:        h.translateFacet(h.store.Ages(cfg.Code), lang),
		AgeRanges:   h.translateFacet(h.store.AgeRanges(cfg.Code), lang),
		Genders:     h.translateFacet(h.store.Genders(cfg.Code), lang),
		Professions: h.translateFacet(h.store.Professions(cfg.Code), lang),
		Countries:   h.store.Countries(cfg.Code),
	}

	h.respondAndCache(c, key, options)
}

// HandleNgrams returns the frequency tables of one question code.
func (h *CampaignHandler) HandleNgrams(c *gin.Context) {
	cfg, ok := h.campaign(c)
	if !ok {
		return
	}
	qCode := c.DefaultQuery("q_code", config.QuestionQ1)

	key := cache.Key(map[string]string{
		"endpoint": "ngrams",
		"campaign": cfg.Code,
		"q_code":   qCode,
	})
	if cached, ok := h.responseCache.Get(c.Request.Context(), key); ok {
		utils.SuccessResponse(c, http.StatusOK, "", json.RawMessage(cached))
		return
	}

	ngrams, ok := h.store.Ngrams(cfg.Code, qCode)
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Unknown question code", nil)
		return
	}

	h.respondAndCache(c, key, ngrams)
}

type responsesSample struct {
	Columns []sampleColumn      `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

type sampleColumn struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

const sampleSize = 1000

// HandleResponsesSample returns a deterministic sample of enriched rows with
// the columns the campaign exposes.
func (h *CampaignHandler) HandleResponsesSample(c *gin.Context) {
	cfg, ok := h.campaign(c)
	if !ok {
		return
	}
	qCode := c.DefaultQuery("q_code", config.QuestionQ1)

	key := cache.Key(map[string]string{
		"endpoint": "responses-sample",
		"campaign": cfg.Code,
		"q_code":   qCode,
	})
	if cached, ok := h.responseCache.Get(c.Request.Context(), key); ok {
		utils.SuccessResponse(c, http.StatusOK, "", json.RawMessage(cached))
		return
	}

	rows := h.store.Responses(cfg.Code)
	sample := responsesSample{
		Columns: h.sampleColumns(cfg),
		Rows:    make([]map[string]string, 0, sampleSize),
	}

	resolver := h.loader.Taxonomy(cfg.Code)
	for _, i := range samplePick(len(rows), sampleSize) {
		row := &rows[i]
		answer, ok := row.Answer(qCode)
		if !ok {
			continue
		}

		record := map[string]string{
			"response":          answer.RawText,
			"description":       resolver.JoinedDescription(answer.CanonicalCode),
			"canonical_country": row.CanonicalCountry,
			"age":               row.AgeRange,
		}
		if cfg.ShowRegion {
			record["region"] = row.Region
		}
		if cfg.ShowGender {
			record["gender"] = row.Gender
		}
		if cfg.ShowProfession {
			record["profession"] = row.Profession
		}
		if cfg.ShowSetting {
			record["setting"] = row.Setting
		}
		sample.Rows = append(sample.Rows, record)
	}

	h.respondAndCache(c, key, sample)
}

// HandleReload triggers a full reload in the background.
func (h *CampaignHandler) HandleReload(c *gin.Context) {
	if h.loader.IsLoading() {
		utils.ErrorResponse(c, http.StatusConflict, "Reload already in progress", nil)
		return
	}

	// Detached from the request context: the reload outlives the response.
	go h.loader.LoadAll(context.Background())

	utils.SuccessResponse(c, http.StatusAccepted, "Reload started", nil)
}

func (h *CampaignHandler) sampleColumns(cfg *config.CampaignConfig) []sampleColumn {
	columns := []sampleColumn{
		{ID: "response", Name: "Response"},
		{ID: "description", Name: "Response Categories"},
		{ID: "canonical_country", Name: "Country"},
		{ID: "age", Name: "Age"},
	}
	if cfg.ShowRegion {
		columns = append(columns, sampleColumn{ID: "region", Name: "Region"})
	}
	if cfg.ShowGender {
		columns = append(columns, sampleColumn{ID: "gender", Name: "Gender"})
	}
	if cfg.ShowProfession {
		columns = append(columns, sampleColumn{ID: "profession", Name: "Professional Title"})
	}
	if cfg.ShowSetting {
		columns = append(columns, sampleColumn{ID: "setting", Name: "Setting"})
	}
	return columns
}

// samplePick selects up to n distinct row indexes with a fixed seed, so the
// sample is stable between cache refreshes of the same dataset.
func samplePick(total, n int) []int {
	if total <= n {
		indexes := make([]int, total)
		for i := range indexes {
			indexes[i] = i
		}
		return indexes
	}
	rng := rand.New(rand.NewSource(1))
	return rng.Perm(total)[:n]
}

func (h *CampaignHandler) translateFacet(facet []models.FacetValue, lang string) []models.FacetValue {
	if lang == "en" || facet == nil {
		return facet
	}
	translated := make([]models.FacetValue, len(facet))
	for i, value := range facet {
		if t, ok := h.translations.Get(lang + ":" + value.Name); ok {
			value.Name = t
		}
		translated[i] = value
	}
	return translated
}

func (h *CampaignHandler) respondAndCache(c *gin.Context, key string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal response payload")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Internal error", err)
		return
	}

	h.responseCache.Set(c.Request.Context(), key, data)
	utils.SuccessResponse(c, http.StatusOK, "", json.RawMessage(data))
}
