package models

import "time"

// RawResponse is one survey answer as it comes out of the warehouse.
// The q1 columns are materialized by the warehouse query itself; answers to
// later questions travel in the AdditionalFields JSON side channel.
type RawResponse struct {
	RawText          string    `gorm:"column:q1_raw_response"`
	OriginalLang     string    `gorm:"column:q1_original_language"`
	CanonicalCode    string    `gorm:"column:q1_canonical_code"`
	LemmatizedText   string    `gorm:"column:q1_lemmatized"`
	Alpha2Country    string    `gorm:"column:alpha2country"`
	Region           string    `gorm:"column:region"`
	Age              string    `gorm:"column:age"`
	Gender           string    `gorm:"column:gender"`
	Profession       string    `gorm:"column:profession"`
	DataSource       string    `gorm:"column:data_source"`
	IngestionTime    time.Time `gorm:"column:ingestion_time"`
	AdditionalFields string    `gorm:"column:additional_fields"`
}

// Answer holds the derived columns for one question of one response. An
// answer is either fully present in EnrichedResponse.Answers or absent from
// the map entirely; downstream consumers must handle the absent case.
type Answer struct {
	RawText        string
	LemmatizedText string
	Tokens         []string
	CanonicalCode  string
	ParentCategory string
	OriginalLang   string
}

// EnrichedResponse is a RawResponse after field enrichment.
type EnrichedResponse struct {
	Answers          map[string]Answer
	Alpha2Country    string
	CanonicalCountry string
	Region           string
	Age              string
	AgeRange         string
	Gender           string
	Profession       string
	Setting          string
	DataSource       string
	IngestionTime    time.Time
}

// Answer returns the answer for a question code, if the row has one.
func (r *EnrichedResponse) Answer(qCode string) (Answer, bool) {
	a, ok := r.Answers[qCode]
	return a, ok
}
