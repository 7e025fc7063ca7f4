// Package enrich turns raw warehouse rows into the analytical records the
// campaign store serves: per-question answer columns, age buckets, category
// remaps and top-level category derivation.
package enrich

import (
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/countries"
	"github.com/surveypulse/backend/internal/models"
	"github.com/surveypulse/backend/internal/taxonomy"
)

const (
	codeUncodable         = "UNCODABLE"
	codeOtherQuestionable = "OTHERQUESTIONABLE"
	codeNotRelated        = "NOTRELATED"
)

type Enricher struct {
	cfg      *config.CampaignConfig
	taxonomy *taxonomy.Resolver
	ref      *countries.Reference
	logger   *logrus.Logger
}

func NewEnricher(
	cfg *config.CampaignConfig,
	resolver *taxonomy.Resolver,
	ref *countries.Reference,
	logger *logrus.Logger,
) *Enricher {
	return &Enricher{
		cfg:      cfg,
		taxonomy: resolver,
		ref:      ref,
		logger:   logger,
	}
}

// EnrichAll enriches every raw row and returns the rows that survive the
// campaign's drop rules. Per-row failures are logged and skipped; they never
// abort the campaign.
func (e *Enricher) EnrichAll(rows []models.RawResponse) []models.EnrichedResponse {
	enriched := make([]models.EnrichedResponse, 0, len(rows))
	dropped := 0

	for i := range rows {
		row, ok := e.enrichRow(&rows[i])
		if !ok {
			dropped++
			continue
		}
		enriched = append(enriched, row)
	}

	e.logger.WithFields(logrus.Fields{
		"campaign": e.cfg.Code,
		"kept":     len(enriched),
		"dropped":  dropped,
	}).Info("Enriched campaign responses")

	return enriched
}

func (e *Enricher) enrichRow(raw *models.RawResponse) (models.EnrichedResponse, bool) {
	row := models.EnrichedResponse{
		Answers:       make(map[string]models.Answer, len(e.cfg.Questions)),
		Alpha2Country: strings.TrimSpace(raw.Alpha2Country),
		Region:        raw.Region,
		Age:           raw.Age,
		Gender:        raw.Gender,
		Profession:    raw.Profession,
		DataSource:    raw.DataSource,
		IngestionTime: raw.IngestionTime,
	}

	// q1 columns are materialized by the warehouse query. A row without a
	// canonical code cannot be indexed and is dropped.
	if raw.CanonicalCode == "" {
		e.logger.WithField("campaign", e.cfg.Code).Warn("Row is missing its q1 canonical code")
		return row, false
	}
	row.Answers[config.QuestionQ1] = models.Answer{
		RawText:        raw.RawText,
		LemmatizedText: raw.LemmatizedText,
		CanonicalCode:  raw.CanonicalCode,
		OriginalLang:   raw.OriginalLang,
	}

	// Answers to later questions and the 'setting' field travel in the
	// additional-fields side channel.
	if len(e.cfg.Questions) > 1 || e.cfg.ShowSetting {
		fields, err := parseAdditionalFields(raw.AdditionalFields)
		if err != nil {
			e.logger.WithError(err).WithField("campaign", e.cfg.Code).
				Warn("Row has a malformed additional-fields payload, skipping")
			return row, false
		}

		if e.cfg.ShowSetting {
			row.Setting = fields["setting"]
		}

		for _, qCode := range e.cfg.Questions[1:] {
			if answer, ok := e.extractAnswer(fields, qCode); ok {
				row.Answers[qCode] = answer
			}
		}
	}

	if !e.applyAgePolicy(&row) {
		return row, false
	}

	if info, ok := e.ref.Lookup(row.Alpha2Country); ok {
		row.CanonicalCountry = info.Name
	}

	// Category normalization and top-level derivation, per in-scope question.
	for qCode, answer := range row.Answers {
		if answer.CanonicalCode == codeUncodable {
			return row, false
		}

		answer.CanonicalCode = e.cfg.Remap(qCode, answer.CanonicalCode)
		if answer.CanonicalCode == codeOtherQuestionable {
			answer.CanonicalCode = codeNotRelated
		}
		answer.ParentCategory = e.taxonomy.ParentCategory(answer.CanonicalCode)
		answer.Tokens = strings.Fields(answer.LemmatizedText)

		row.Answers[qCode] = answer
	}

	return row, true
}

// extractAnswer pulls one question's columns out of the side-channel payload.
// An answer without a canonical code is entirely absent for the row; partial
// column sets are never produced.
func (e *Enricher) extractAnswer(fields map[string]string, qCode string) (models.Answer, bool) {
	originalText := fields[qCode+"_response_original_text"]
	englishText := fields[qCode+"_response_english_text"]
	canonicalCode := fields[qCode+"_response_nlu_category"]

	if canonicalCode == "" {
		return models.Answer{}, false
	}

	answer := models.Answer{
		CanonicalCode:  canonicalCode,
		LemmatizedText: fields[qCode+"_response_lemmatized_text"],
		OriginalLang:   fields[qCode+"_response_original_lang"],
	}

	if e.cfg.JoinEnglishText {
		switch {
		case originalText != "" && englishText != "":
			answer.RawText = originalText + " (" + englishText + ")"
		case originalText != "":
			answer.RawText = originalText
		default:
			answer.RawText = englishText
		}
	} else {
		answer.RawText = originalText
	}

	return answer, true
}

func (e *Enricher) applyAgePolicy(row *models.EnrichedResponse) bool {
	switch e.cfg.AgePolicy {
	case config.AgePolicyRange10To24:
		// Youth campaign: keep raw numeric ages 10-24, drop everything else,
		// never bucket.
		if !ageWithin(row.Age, 10, 24) {
			return false
		}
		row.AgeRange = row.Age
	case config.AgePolicyBucketHealth:
		row.AgeRange = AgeRangeHealth(row.Age)
	case config.AgePolicyPassthrough:
		// Age already arrives as a range from the warehouse.
		row.AgeRange = row.Age
	default:
		row.AgeRange = AgeRange(row.Age)
	}
	return true
}

func parseAdditionalFields(payload string) (map[string]string, error) {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, err
	}

	// Values are strings in practice; anything else is kept as its raw JSON
	// text so an unexpected payload shape does not lose the row.
	fields := make(map[string]string, len(raw))
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			fields[key] = s
		} else {
			fields[key] = string(value)
		}
	}

	return fields, nil
}
