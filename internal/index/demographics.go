// Package index derives the demographic facet sets of an enriched campaign
// dataset: ages, age ranges, genders, professions and the country/region
// structure.
package index

import (
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/countries"
	"github.com/surveypulse/backend/internal/models"
)

// Facets holds every demographic index of one campaign.
type Facets struct {
	Ages        []models.FacetValue
	AgeRanges   []models.FacetValue
	Genders     []models.FacetValue
	Professions []models.FacetValue
	Countries   []models.Country
}

// Build scans the enriched dataset once per facet. Ages, age ranges and
// countries keep first-seen order; genders and professions are ordered by
// descending frequency with ties broken by first occurrence. Gender and
// profession facets are only built when the campaign exposes the column.
func Build(
	rows []models.EnrichedResponse,
	cfg *config.CampaignConfig,
	ref *countries.Reference,
	logger *logrus.Logger,
) Facets {
	facets := Facets{
		Ages:      distinctValues(rows, func(r *models.EnrichedResponse) string { return r.Age }),
		AgeRanges: distinctValues(rows, func(r *models.EnrichedResponse) string { return r.AgeRange }),
		Countries: buildCountries(rows, cfg.Code, ref, logger),
	}

	if cfg.ShowGender {
		facets.Genders = byFrequency(rows, func(r *models.EnrichedResponse) string { return r.Gender })
	}
	if cfg.ShowProfession {
		facets.Professions = byFrequency(rows, func(r *models.EnrichedResponse) string { return r.Profession })
	}

	return facets
}

func distinctValues(rows []models.EnrichedResponse, value func(*models.EnrichedResponse) string) []models.FacetValue {
	seen := make(map[string]bool)
	var facet []models.FacetValue
	for i := range rows {
		v := value(&rows[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		facet = append(facet, models.FacetValue{Code: v, Name: v})
	}
	return facet
}

func byFrequency(rows []models.EnrichedResponse, value func(*models.EnrichedResponse) string) []models.FacetValue {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i := range rows {
		v := value(&rows[i])
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			firstSeen[v] = len(order)
			order = append(order, v)
		}
		counts[v]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if counts[order[i]] != counts[order[j]] {
			return counts[order[i]] > counts[order[j]]
		}
		return firstSeen[order[i]] < firstSeen[order[j]]
	})

	facet := make([]models.FacetValue, 0, len(order))
	for _, v := range order {
		facet = append(facet, models.FacetValue{Code: v, Name: v})
	}
	return facet
}

func buildCountries(
	rows []models.EnrichedResponse,
	campaignCode string,
	ref *countries.Reference,
	logger *logrus.Logger,
) []models.Country {
	byAlpha2 := make(map[string]int) // alpha2 -> index into result
	var result []models.Country

	for i := range rows {
		alpha2 := rows[i].Alpha2Country
		if alpha2 == "" {
			continue
		}
		if _, ok := byAlpha2[alpha2]; ok {
			continue
		}
		info, ok := ref.Lookup(alpha2)
		if !ok {
			logger.WithFields(logrus.Fields{
				"campaign": campaignCode,
				"alpha2":   alpha2,
			}).Warn("Country code not found in countries reference data")
			byAlpha2[alpha2] = -1
			continue
		}
		byAlpha2[alpha2] = len(result)
		result = append(result, models.Country{
			Alpha2Code: alpha2,
			Name:       info.Name,
			Demonym:    info.Demonym,
		})
	}

	// Attach regions in the order their (country, region) pairs first appear.
	seenRegions := make(map[string]bool)
	for i := range rows {
		alpha2, region := rows[i].Alpha2Country, rows[i].Region
		if region == "" {
			continue
		}
		idx, ok := byAlpha2[alpha2]
		if !ok || idx < 0 {
			continue
		}
		key := alpha2 + "\x00" + region
		if seenRegions[key] {
			continue
		}
		seenRegions[key] = true
		result[idx].Regions = append(result[idx].Regions, models.Region{Code: region, Name: region})
	}

	return result
}
