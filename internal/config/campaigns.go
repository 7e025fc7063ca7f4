package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// QuestionQ1 is the primary free-text question every campaign has. Later
// question codes ("q2", ...) exist only for campaigns that declare them.
const QuestionQ1 = "q1"

// Age policies. A campaign selects exactly one; the enricher branches on it
// once instead of on campaign codes.
const (
	AgePolicyBucket       = "bucket"        // standard ladder 15-19 ... 55+
	AgePolicyBucketHealth = "bucket-health" // extended ladder 10-15 ... 65+
	AgePolicyRange10To24  = "range-10-24"   // keep raw ages 10-24, drop the rest
	AgePolicyPassthrough  = "passthrough"   // age arrives pre-bucketed upstream
)

// ParentCategory is one node of a campaign's category taxonomy: a top-level
// code with the leaf codes that roll up to it.
type ParentCategory struct {
	Code          string            `json:"code"`
	Description   string            `json:"description"`
	Subcategories map[string]string `json:"subcategories"`
}

// CampaignConfig declares everything campaign-specific the pipeline needs:
// supported question codes, the enrichment hooks and the taxonomy.
type CampaignConfig struct {
	Code             string                       `json:"code"`
	DashboardName    string                       `json:"dashboard_name"`
	RespondentNoun   string                       `json:"respondent_noun"`
	Language         string                       `json:"language"`
	Questions        []string                     `json:"questions"`
	AgePolicy        string                       `json:"age_policy"`
	JoinEnglishText  bool                         `json:"join_english_text"`
	CategoryRemaps   map[string]map[string]string `json:"category_remaps"`
	ShowGender       bool                         `json:"show_gender"`
	ShowProfession   bool                         `json:"show_profession"`
	ShowRegion       bool                         `json:"show_region"`
	ShowSetting      bool                         `json:"show_setting"`
	FocusedOnCountry bool                         `json:"focused_on_country"`
	MinimumAge       int                          `json:"minimum_age"`
	ExtraStopwords   []string                     `json:"extra_stopwords"`
	ParentCategories []ParentCategory             `json:"parent_categories"`
}

func (c *CampaignConfig) validate() error {
	if c.Code == "" {
		return fmt.Errorf("campaign code is required")
	}
	if len(c.Questions) == 0 || c.Questions[0] != QuestionQ1 {
		return fmt.Errorf("campaign %s: questions must start with %s", c.Code, QuestionQ1)
	}
	for _, q := range c.Questions {
		if !strings.HasPrefix(q, "q") {
			return fmt.Errorf("campaign %s: invalid question code %q", c.Code, q)
		}
	}
	switch c.AgePolicy {
	case AgePolicyBucket, AgePolicyBucketHealth, AgePolicyRange10To24, AgePolicyPassthrough:
	default:
		return fmt.Errorf("campaign %s: unknown age policy %q", c.Code, c.AgePolicy)
	}
	if c.Language == "" {
		c.Language = "en"
	}
	return nil
}

// StopwordSet returns the campaign's extra stopwords as a set.
func (c *CampaignConfig) StopwordSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.ExtraStopwords))
	for _, w := range c.ExtraStopwords {
		set[w] = struct{}{}
	}
	return set
}

// Remap applies the campaign's category rename table for one question code.
// Unmapped codes come back unchanged.
func (c *CampaignConfig) Remap(qCode, canonicalCode string) string {
	table, ok := c.CategoryRemaps[qCode]
	if !ok {
		return canonicalCode
	}
	if renamed, ok := table[canonicalCode]; ok {
		return renamed
	}
	return canonicalCode
}

// LoadCampaignConfigs reads every campaigns-config/<folder>/config.json,
// validates it and returns the configs keyed by campaign code in folder scan
// order.
func LoadCampaignConfigs(dir string) ([]*CampaignConfig, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read campaigns config dir: %w", err)
	}

	var configs []*CampaignConfig
	seen := make(map[string]bool)

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "example" {
			continue
		}

		path := filepath.Join(dir, entry.Name(), "config.json")
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		var cfg CampaignConfig
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		if err := cfg.validate(); err != nil {
			return nil, err
		}
		if seen[cfg.Code] {
			return nil, fmt.Errorf("duplicate campaign code %s", cfg.Code)
		}
		seen[cfg.Code] = true

		configs = append(configs, &cfg)
	}

	if len(configs) == 0 {
		return nil, fmt.Errorf("no campaign configs found in %s", dir)
	}

	return configs, nil
}
