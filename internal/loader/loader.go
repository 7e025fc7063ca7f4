// Package loader drives the per-campaign reload pipeline:
// fetch -> enrich -> index -> publish, followed by the n-gram pass, one
// wholesale response-cache clear and the coordinate pass.
package loader

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/cache"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/countries"
	"github.com/surveypulse/backend/internal/enrich"
	"github.com/surveypulse/backend/internal/geo"
	"github.com/surveypulse/backend/internal/index"
	"github.com/surveypulse/backend/internal/models"
	"github.com/surveypulse/backend/internal/ngram"
	"github.com/surveypulse/backend/internal/store"
	"github.com/surveypulse/backend/internal/taxonomy"
)

// WarehouseReader is the loader's view of the warehouse.
type WarehouseReader interface {
	FetchCampaignResponses(ctx context.Context, cfg *config.CampaignConfig) ([]models.RawResponse, error)
}

type Loader struct {
	campaigns     []*config.CampaignConfig
	warehouse     WarehouseReader
	store         *store.CampaignStore
	responseCache cache.ResponseCache
	countries     *countries.Reference
	stopwords     map[string][]string
	taxonomies    map[string]*taxonomy.Resolver
	geo           *geo.Resolver
	coordsPath    string
	persistCoords bool
	logger        *logrus.Logger

	mu      sync.Mutex
	loading atomic.Bool
}

// New wires a loader. geoResolver may be nil when no geocoder is configured;
// the coordinate pass is then skipped. baseStopwords holds the per-language
// stopword lists unioned with each campaign's extras; nil means extras only.
func New(
	campaigns []*config.CampaignConfig,
	reader WarehouseReader,
	campaignStore *store.CampaignStore,
	responseCache cache.ResponseCache,
	ref *countries.Reference,
	baseStopwords map[string][]string,
	geoResolver *geo.Resolver,
	coordsPath string,
	persistCoords bool,
	logger *logrus.Logger,
) *Loader {
	taxonomies := make(map[string]*taxonomy.Resolver, len(campaigns))
	for _, cfg := range campaigns {
		taxonomies[cfg.Code] = taxonomy.NewResolver(cfg.ParentCategories)
	}

	return &Loader{
		campaigns:     campaigns,
		warehouse:     reader,
		store:         campaignStore,
		responseCache: responseCache,
		countries:     ref,
		stopwords:     baseStopwords,
		taxonomies:    taxonomies,
		geo:           geoResolver,
		coordsPath:    coordsPath,
		persistCoords: persistCoords,
		logger:        logger,
	}
}

// Taxonomy returns the resolver of one campaign's category tree.
func (l *Loader) Taxonomy(campaignCode string) *taxonomy.Resolver {
	return l.taxonomies[campaignCode]
}

// IsLoading reports whether a reload is in flight.
func (l *Loader) IsLoading() bool {
	return l.loading.Load()
}

// LoadAll reloads every campaign sequentially. A campaign whose fetch or
// enrichment fails keeps its previously stored data; the other campaigns are
// unaffected. The response cache is cleared exactly once, after all
// campaigns finished their n-gram stage. Only one reload runs at a time.
func (l *Loader) LoadAll(ctx context.Context) {
	if !l.mu.TryLock() {
		l.logger.Warn("Reload already in progress, skipping")
		return
	}
	defer l.mu.Unlock()

	l.loading.Store(true)
	defer l.loading.Store(false)

	for _, cfg := range l.campaigns {
		l.logger.WithField("campaign", cfg.Code).Infof("Loading data for campaign %s", cfg.Code)

		if err := l.loadCampaign(ctx, cfg); err != nil {
			l.logger.WithError(err).WithField("campaign", cfg.Code).
				Errorf("Error loading data for campaign %s", cfg.Code)
			continue
		}

		l.loadNgrams(cfg)
	}

	l.responseCache.Clear(ctx)

	l.LoadCoordinates(ctx)
}

func (l *Loader) loadCampaign(ctx context.Context, cfg *config.CampaignConfig) error {
	rows, err := l.warehouse.FetchCampaignResponses(ctx, cfg)
	if err != nil {
		return err
	}

	enricher := enrich.NewEnricher(cfg, l.taxonomies[cfg.Code], l.countries, l.logger)
	enriched := enricher.EnrichAll(rows)

	facets := index.Build(enriched, cfg, l.countries, l.logger)

	l.store.Replace(cfg.Code, &store.Databank{
		Responses:   enriched,
		Ages:        facets.Ages,
		AgeRanges:   facets.AgeRanges,
		Genders:     facets.Genders,
		Professions: facets.Professions,
		Countries:   facets.Countries,
	})

	return nil
}

// loadNgrams recomputes every question's frequency tables from the dataset
// already published to the store.
func (l *Loader) loadNgrams(cfg *config.CampaignConfig) {
	rows := l.store.Responses(cfg.Code)
	stopwords := l.stopwordsFor(cfg)

	for _, qCode := range cfg.Questions {
		l.store.SetNgrams(cfg.Code, qCode, ngram.Generate(rows, qCode, stopwords))
	}
}

// stopwordsFor unions the campaign language's base stopword list with the
// campaign's extra stopwords.
func (l *Loader) stopwordsFor(cfg *config.CampaignConfig) map[string]struct{} {
	set := cfg.StopwordSet()
	for _, w := range l.stopwords[cfg.Language] {
		set[w] = struct{}{}
	}
	return set
}

// LoadCoordinates resolves the regions of the country-focused campaigns. A
// single location's geocoding failure is logged and leaves no cache entry;
// it never aborts the pass. The cache file is rewritten only when persisting
// is enabled and the pass added at least one entry.
func (l *Loader) LoadCoordinates(ctx context.Context) {
	if l.geo == nil {
		l.logger.Debug("No geocoder configured, skipping coordinates")
		return
	}

	l.logger.Info("Loading coordinates...")

	for _, cfg := range l.campaigns {
		if !cfg.FocusedOnCountry {
			continue
		}

		countriesList := l.store.Countries(cfg.Code)
		if len(countriesList) < 1 {
			l.logger.WithField("campaign", cfg.Code).Warnf("Campaign %s has no countries", cfg.Code)
			continue
		}

		country := countriesList[0]
		for _, region := range country.Regions {
			if _, err := l.geo.Resolve(ctx, country.Alpha2Code, country.Name, region.Name); err != nil {
				l.logger.WithError(err).WithFields(logrus.Fields{
					"campaign": cfg.Code,
					"region":   region.Name,
				}).Warn("Failed to geocode region")
			}
		}
	}

	if l.persistCoords && l.geo.Cache().Added() {
		if err := l.geo.Cache().SaveFile(l.coordsPath); err != nil {
			l.logger.WithError(err).Error("Failed to save coordinates file")
		} else {
			l.logger.WithField("path", l.coordsPath).Info("Saved new coordinates")
		}
	}
}
