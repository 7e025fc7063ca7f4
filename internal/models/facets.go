package models

// FacetValue is a (code, display name) pair for a demographic facet such as
// age, gender or profession.
type FacetValue struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

type Region struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Country is one distinct respondent country observed in a campaign dataset,
// with the regions observed for it in first-seen order.
type Country struct {
	Alpha2Code string   `json:"alpha2_code"`
	Name       string   `json:"name"`
	Demonym    string   `json:"demonym"`
	Regions    []Region `json:"regions"`
}

// Ngrams holds the frequency tables for one question code.
type Ngrams struct {
	Unigrams map[string]int `json:"unigram"`
	Bigrams  map[string]int `json:"bigram"`
	Trigrams map[string]int `json:"trigram"`
}

// Coordinate is a geocoded location.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
