// Package store owns the per-campaign in-memory datasets and derived
// indexes served to the API layer.
package store

import (
	"sync"
	"time"

	"github.com/surveypulse/backend/internal/models"
)

// Databank is everything the store holds for one campaign. A reload builds a
// fresh databank and publishes it wholesale; published databanks are treated
// as immutable by readers and never mutated in place.
type Databank struct {
	Responses   []models.EnrichedResponse
	Ages        []models.FacetValue
	AgeRanges   []models.FacetValue
	Genders     []models.FacetValue
	Professions []models.FacetValue
	Countries   []models.Country
	Ngrams      map[string]models.Ngrams
	LoadedAt    time.Time
}

// CampaignStore supports concurrent readers during a reload: every setter
// swaps a value atomically, so a reader sees either the fully-prior or the
// fully-new value, never a torn intermediate.
type CampaignStore struct {
	mu    sync.RWMutex
	banks map[string]*Databank
}

func NewCampaignStore() *CampaignStore {
	return &CampaignStore{
		banks: make(map[string]*Databank),
	}
}

// Replace publishes a freshly built databank for a campaign. N-grams carry
// over from the prior databank until their second pass recomputes them.
func (s *CampaignStore) Replace(campaignCode string, bank *Databank) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bank.Ngrams == nil {
		if prior, ok := s.banks[campaignCode]; ok {
			bank.Ngrams = prior.Ngrams
		} else {
			bank.Ngrams = make(map[string]models.Ngrams)
		}
	}
	bank.LoadedAt = time.Now()
	s.banks[campaignCode] = bank
}

// SetNgrams fully replaces the n-gram index of one question code. The
// published databank is copied shallowly so concurrent readers keep a
// consistent view.
func (s *CampaignStore) SetNgrams(campaignCode, qCode string, ngrams models.Ngrams) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.banks[campaignCode]
	if !ok {
		return
	}

	next := *prior
	next.Ngrams = make(map[string]models.Ngrams, len(prior.Ngrams)+1)
	for q, n := range prior.Ngrams {
		next.Ngrams[q] = n
	}
	next.Ngrams[qCode] = ngrams
	s.banks[campaignCode] = &next
}

func (s *CampaignStore) bank(campaignCode string) (*Databank, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	bank, ok := s.banks[campaignCode]
	return bank, ok
}

// HasData reports whether a campaign has ever loaded successfully.
func (s *CampaignStore) HasData(campaignCode string) bool {
	_, ok := s.bank(campaignCode)
	return ok
}

func (s *CampaignStore) LoadedAt(campaignCode string) (time.Time, bool) {
	bank, ok := s.bank(campaignCode)
	if !ok {
		return time.Time{}, false
	}
	return bank.LoadedAt, true
}

// Responses returns the enriched dataset. The returned slice is shared and
// must not be modified.
func (s *CampaignStore) Responses(campaignCode string) []models.EnrichedResponse {
	if bank, ok := s.bank(campaignCode); ok {
		return bank.Responses
	}
	return nil
}

func (s *CampaignStore) Ages(campaignCode string) []models.FacetValue {
	if bank, ok := s.bank(campaignCode); ok {
		return bank.Ages
	}
	return nil
}

func (s *CampaignStore) AgeRanges(campaignCode string) []models.FacetValue {
	if bank, ok := s.bank(campaignCode); ok {
		return bank.AgeRanges
	}
	return nil
}

func (s *CampaignStore) Genders(campaignCode string) []models.FacetValue {
	if bank, ok := s.bank(campaignCode); ok {
		return bank.Genders
	}
	return nil
}

func (s *CampaignStore) Professions(campaignCode string) []models.FacetValue {
	if bank, ok := s.bank(campaignCode); ok {
		return bank.Professions
	}
	return nil
}

func (s *CampaignStore) Countries(campaignCode string) []models.Country {
	if bank, ok := s.bank(campaignCode); ok {
		return bank.Countries
	}
	return nil
}

func (s *CampaignStore) Ngrams(campaignCode, qCode string) (models.Ngrams, bool) {
	bank, ok := s.bank(campaignCode)
	if !ok {
		return models.Ngrams{}, false
	}
	ngrams, ok := bank.Ngrams[qCode]
	return ngrams, ok
}
