package enrich

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/countries"
	"github.com/surveypulse/backend/internal/models"
	"github.com/surveypulse/backend/internal/taxonomy"
)

func testCountries() *countries.Reference {
	return countries.NewReference(map[string]countries.Info{
		"KE": {Name: "Kenya", Demonym: "Kenyan"},
		"MX": {Name: "Mexico", Demonym: "Mexican"},
	})
}

func testTaxonomy() []config.ParentCategory {
	return []config.ParentCategory{{
		Code:        "NA",
		Description: "N/A",
		Subcategories: map[string]string{
			"HEALTH": "General health and health services",
			"SAFETY": "Safety and a supportive environment",
			"POWER":  "Agency and resilience",
		},
	}}
}

func newTestEnricher(t *testing.T, cfg *config.CampaignConfig) *Enricher {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewEnricher(cfg, taxonomy.NewResolver(cfg.ParentCategories), testCountries(), logger)
}

func baseConfig() *config.CampaignConfig {
	return &config.CampaignConfig{
		Code:             "testcamp",
		Questions:        []string{"q1"},
		AgePolicy:        config.AgePolicyBucket,
		ParentCategories: testTaxonomy(),
	}
}

func TestAgeRange(t *testing.T) {
	tests := []struct {
		age  string
		want string
	}{
		{"14", "N/A"},
		{"15", "15-19"},
		{"19", "15-19"},
		{"20", "20-24"},
		{"24", "20-24"},
		{"25", "25-34"},
		{"34", "25-34"},
		{"35", "35-44"},
		{"44", "35-44"},
		{"45", "45-54"},
		{"54", "45-54"},
		{"55", "55+"},
		{"90", "55+"},
		{"prefer not to say", "prefer not to say"},
		{"25-34", "25-34"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeRange(tt.age), "age %q", tt.age)
	}
}

func TestAgeRangeHealth(t *testing.T) {
	tests := []struct {
		age  string
		want string
	}{
		{"9", "N/A"},
		{"10", "10-15"},
		{"15", "10-15"},
		{"16", "16-20"},
		{"20", "16-20"},
		{"21", "21-25"},
		{"25", "21-25"},
		{"26", "26-35"},
		{"35", "26-35"},
		{"36", "36-45"},
		{"46", "46-55"},
		{"56", "56-64"},
		{"64", "56-64"},
		{"65", "65+"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AgeRangeHealth(tt.age), "age %q", tt.age)
	}
}

func TestEnricher_EnrichAll(t *testing.T) {
	enricher := newTestEnricher(t, baseConfig())

	rows := []models.RawResponse{
		{
			RawText:        "we need more nurses",
			LemmatizedText: "need nurse",
			CanonicalCode:  "HEALTH",
			Alpha2Country:  " KE ",
			Region:         "Nairobi",
			Age:            "30",
			Gender:         "Female",
		},
		{
			RawText:        "more power to decide",
			LemmatizedText: "power decide",
			CanonicalCode:  "POWER",
			Alpha2Country:  "MX",
			Age:            "52",
		},
	}

	enriched := enricher.EnrichAll(rows)
	require.Len(t, enriched, 2)

	first := enriched[0]
	assert.Equal(t, "KE", first.Alpha2Country)
	assert.Equal(t, "Kenya", first.CanonicalCountry)
	assert.Equal(t, "25-34", first.AgeRange)

	answer, ok := first.Answer("q1")
	require.True(t, ok)
	assert.Equal(t, "HEALTH", answer.CanonicalCode)
	assert.Equal(t, "NA", answer.ParentCategory)
	assert.Equal(t, []string{"need", "nurse"}, answer.Tokens)

	second := enriched[1]
	assert.Equal(t, "Mexico", second.CanonicalCountry)
	assert.Equal(t, "45-54", second.AgeRange)
}

func TestEnricher_DropsUncodable(t *testing.T) {
	enricher := newTestEnricher(t, baseConfig())

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "UNCODABLE", Age: "30"},
		{CanonicalCode: "HEALTH", Age: "30"},
	})

	require.Len(t, enriched, 1)
	answer, _ := enriched[0].Answer("q1")
	assert.Equal(t, "HEALTH", answer.CanonicalCode)
}

func TestEnricher_DropsMissingCanonicalCode(t *testing.T) {
	enricher := newTestEnricher(t, baseConfig())

	enriched := enricher.EnrichAll([]models.RawResponse{
		{RawText: "something", Age: "30"},
	})

	assert.Empty(t, enriched)
}

func TestEnricher_RenamesOtherQuestionable(t *testing.T) {
	enricher := newTestEnricher(t, baseConfig())

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "OTHERQUESTIONABLE", Age: "30"},
	})

	require.Len(t, enriched, 1)
	answer, _ := enriched[0].Answer("q1")
	assert.Equal(t, "NOTRELATED", answer.CanonicalCode)
}

func TestEnricher_CategoryRemap(t *testing.T) {
	cfg := baseConfig()
	cfg.CategoryRemaps = map[string]map[string]string{
		"q1": {"ENVIRONMENT": "SAFETY"},
	}
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "ENVIRONMENT", Age: "20"},
	})

	require.Len(t, enriched, 1)
	answer, _ := enriched[0].Answer("q1")
	assert.Equal(t, "SAFETY", answer.CanonicalCode)
	assert.Equal(t, "NA", answer.ParentCategory)
}

func TestEnricher_YouthAgeFilter(t *testing.T) {
	cfg := baseConfig()
	cfg.AgePolicy = config.AgePolicyRange10To24
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "HEALTH", Age: "9"},
		{CanonicalCode: "HEALTH", Age: "10"},
		{CanonicalCode: "HEALTH", Age: "24"},
		{CanonicalCode: "HEALTH", Age: "25"},
		{CanonicalCode: "HEALTH", Age: "not sure"},
	})

	require.Len(t, enriched, 2)
	// Raw ages survive unbucketed for the youth campaign.
	assert.Equal(t, "10", enriched[0].AgeRange)
	assert.Equal(t, "24", enriched[1].AgeRange)
}

func TestEnricher_PassthroughAgePolicy(t *testing.T) {
	cfg := baseConfig()
	cfg.AgePolicy = config.AgePolicyPassthrough
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "HEALTH", Age: "25-34"},
	})

	require.Len(t, enriched, 1)
	assert.Equal(t, "25-34", enriched[0].AgeRange)
}

func TestEnricher_SecondQuestionFromAdditionalFields(t *testing.T) {
	cfg := baseConfig()
	cfg.Questions = []string{"q1", "q2"}
	cfg.JoinEnglishText = true
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{
			CanonicalCode: "HEALTH",
			Age:           "30",
			AdditionalFields: `{
				"q2_response_original_text": "mejores salarios",
				"q2_response_english_text": "better salaries",
				"q2_response_lemmatized_text": "mejor salario",
				"q2_response_nlu_category": "POWER",
				"q2_response_original_lang": "es"
			}`,
		},
	})

	require.Len(t, enriched, 1)
	answer, ok := enriched[0].Answer("q2")
	require.True(t, ok)
	assert.Equal(t, "mejores salarios (better salaries)", answer.RawText)
	assert.Equal(t, "POWER", answer.CanonicalCode)
	assert.Equal(t, "es", answer.OriginalLang)
	assert.Equal(t, []string{"mejor", "salario"}, answer.Tokens)
}

func TestEnricher_JoinFallsBackWithoutEnglishText(t *testing.T) {
	cfg := baseConfig()
	cfg.Questions = []string{"q1", "q2"}
	cfg.JoinEnglishText = true
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{
			CanonicalCode: "HEALTH",
			Age:           "30",
			AdditionalFields: `{
				"q2_response_original_text": "mejores salarios",
				"q2_response_nlu_category": "POWER"
			}`,
		},
	})

	require.Len(t, enriched, 1)
	answer, _ := enriched[0].Answer("q2")
	assert.Equal(t, "mejores salarios", answer.RawText)
}

func TestEnricher_SecondAnswerAbsentWithoutCategory(t *testing.T) {
	cfg := baseConfig()
	cfg.Questions = []string{"q1", "q2"}
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{
			CanonicalCode:    "HEALTH",
			Age:              "30",
			AdditionalFields: `{"q2_response_original_text": "text without a category"}`,
		},
	})

	require.Len(t, enriched, 1)
	_, ok := enriched[0].Answer("q2")
	assert.False(t, ok)
	_, ok = enriched[0].Answer("q1")
	assert.True(t, ok)
}

func TestEnricher_DropsMalformedAdditionalFields(t *testing.T) {
	cfg := baseConfig()
	cfg.Questions = []string{"q1", "q2"}
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "HEALTH", Age: "30", AdditionalFields: "{not json"},
		{CanonicalCode: "HEALTH", Age: "30", AdditionalFields: `{"q2_response_nlu_category": "POWER"}`},
	})

	require.Len(t, enriched, 1)
}

func TestEnricher_SettingExtraction(t *testing.T) {
	cfg := baseConfig()
	cfg.ShowSetting = true
	enricher := newTestEnricher(t, cfg)

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "HEALTH", Age: "30", AdditionalFields: `{"setting": "Urban"}`},
	})

	require.Len(t, enriched, 1)
	assert.Equal(t, "Urban", enriched[0].Setting)
}

func TestEnricher_UnknownCountryStaysUncanonical(t *testing.T) {
	enricher := newTestEnricher(t, baseConfig())

	enriched := enricher.EnrichAll([]models.RawResponse{
		{CanonicalCode: "HEALTH", Age: "30", Alpha2Country: "XX"},
	})

	require.Len(t, enriched, 1)
	assert.Equal(t, "XX", enriched[0].Alpha2Country)
	assert.Empty(t, enriched[0].CanonicalCountry)
}
