// Package warehouse reads raw campaign responses out of the analytical
// warehouse.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/surveypulse/backend/internal/config"
	"github.com/surveypulse/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const responsesTable = "survey_responses"

// fetchTimeout bounds one campaign's warehouse query; expiry is a hard
// failure for that campaign's reload.
const fetchTimeout = 2 * time.Minute

// The q1 columns are materialized by the query itself: original and english
// text are joined as "original (english)" when both exist, and age is
// coalesced from the numeric age or the pre-bucketed range.
const campaignQuery = `
SELECT CASE WHEN response_english_text IS NULL THEN response_original_text
            ELSE response_original_text || ' (' || response_english_text || ')' END AS q1_raw_response,
       response_original_lang AS q1_original_language,
       response_nlu_category AS q1_canonical_code,
       response_lemmatized_text AS q1_lemmatized,
       respondent_country_code AS alpha2country,
       respondent_region_name AS region,
       COALESCE(CAST(respondent_age AS TEXT), respondent_age_bucket) AS age,
       INITCAP(respondent_gender) AS gender,
       respondent_additional_fields->>'profession' AS profession,
       respondent_additional_fields->>'data_source' AS data_source,
       ingestion_time AS ingestion_time,
       respondent_additional_fields::text AS additional_fields
FROM ` + responsesTable + `
WHERE campaign = ?
  AND response_original_text IS NOT NULL
  AND (respondent_age >= ? OR respondent_age IS NULL)
  AND respondent_country_code IS NOT NULL
  AND response_nlu_category IS NOT NULL
  AND response_lemmatized_text IS NOT NULL
  AND LENGTH(response_original_text) > 3
`

type Reader struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewReader opens a pooled connection to the warehouse.
func NewReader(databaseURL, logLevel string, log *logrus.Logger) (*Reader, error) {
	gormLogger := logger.Default.LogMode(logger.Silent)
	if logLevel == "debug" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to warehouse: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping warehouse: %w", err)
	}

	return &Reader{db: db, logger: log}, nil
}

// FetchCampaignResponses returns every raw response row of one campaign. A
// transport or timeout error aborts that campaign's reload; the caller keeps
// serving the previously stored data.
func (r *Reader) FetchCampaignResponses(ctx context.Context, cfg *config.CampaignConfig) ([]models.RawResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	started := time.Now()

	var rows []models.RawResponse
	tx := r.db.WithContext(ctx).Raw(campaignQuery, cfg.Code, cfg.MinimumAge).Scan(&rows)
	if tx.Error != nil {
		return nil, fmt.Errorf("warehouse query for campaign %s failed: %w", cfg.Code, tx.Error)
	}

	r.logger.WithFields(logrus.Fields{
		"campaign": cfg.Code,
		"rows":     len(rows),
		"took":     time.Since(started).String(),
	}).Info("Fetched campaign responses from warehouse")

	return rows, nil
}

func (r *Reader) Ping() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (r *Reader) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
