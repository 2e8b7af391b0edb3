// Package statistics defines the wire schema for population statistics. The
// server-side aggregator produces it and the client-side estimator consumes
// it; the two share this schema but deliberately not any computation logic.
package statistics

import "time"

// Factor keys in EffectivenessFactors. A factor is the fraction of
// candidates a filter typically removes, in [0,1].
const (
	FactorRegion       = "region"
	FactorGroup        = "group"
	FactorPartialID    = "partial_id_4"
	FactorPartialPhone = "partial_phone_4"
	FactorSubregion    = "subregion"
	FactorOrganization = "organization"
)

// DefaultKey is the fallback entry in the frequency tables for names outside
// the top-100.
const DefaultKey = "_default"

// Default fallback frequencies for names not in the top-100 tables.
const (
	DefaultSurnameFrequency   = 0.0002
	DefaultFirstnameFrequency = 0.0003
)

// Statistics is a versioned population snapshot. It is replaced atomically
// as a whole, never field-by-field.
type Statistics struct {
	Version            string             `json:"version"`
	GeneratedAt        time.Time          `json:"generated_at"`
	TotalRecords       int                `json:"total_records"`
	RegionCounts       map[string]int     `json:"region_counts"`
	SurnameFrequency   map[string]float64 `json:"surname_frequency"`
	FirstnameFrequency map[string]float64 `json:"firstname_frequency"`
	AvgGroupSize       int                `json:"avg_group_size"`
	EffectivenessF     map[string]float64 `json:"effectiveness_factors"`
}

// Defaults returns the documented fixed-default snapshot, used when the
// registry is empty or when computation fails with no prior snapshot. The
// seed name tables reflect the registry's dominant population so the client
// estimate stays sane before the first real refresh.
func Defaults() *Statistics {
	return &Statistics{
		Version:      "1.0",
		GeneratedAt:  time.Now().UTC(),
		TotalRecords: 0,
		RegionCounts: map[string]int{},
		SurnameFrequency: map[string]float64{
			"mohapi":   0.02,
			"sello":    0.019,
			"mohale":   0.015,
			"mokoena":  0.014,
			"letsie":   0.013,
			DefaultKey: DefaultSurnameFrequency,
		},
		FirstnameFrequency: map[string]float64{
			"thabo":      0.025,
			"lerato":     0.02,
			"mamosa":     0.015,
			"nthabiseng": 0.012,
			DefaultKey:   DefaultFirstnameFrequency,
		},
		AvgGroupSize:   100,
		EffectivenessF: DefaultFactors(),
	}
}

// DefaultFactors returns the tuned effectiveness constants. Only the region
// factor is ever recomputed from live data; the rest are too sparse to
// estimate reliably and stay fixed.
func DefaultFactors() map[string]float64 {
	return map[string]float64{
		FactorGroup:        0.85,
		FactorRegion:       0.12,
		FactorPartialID:    0.92,
		FactorPartialPhone: 0.90,
		FactorSubregion:    0.55,
		FactorOrganization: 0.45,
	}
}

// Factor looks up an effectiveness factor, falling back to the tuned
// default when the snapshot predates a factor key.
func (s *Statistics) Factor(key string) float64 {
	if s.EffectivenessF != nil {
		if f, ok := s.EffectivenessF[key]; ok {
			return f
		}
	}
	return DefaultFactors()[key]
}

// SurnameFreq returns the frequency for a lowercased surname, using the
// table's fallback entry for unknown names.
func (s *Statistics) SurnameFreq(name string) (float64, bool) {
	return lookupFreq(s.SurnameFrequency, name, DefaultSurnameFrequency)
}

// FirstnameFreq returns the frequency for a lowercased first name.
func (s *Statistics) FirstnameFreq(name string) (float64, bool) {
	return lookupFreq(s.FirstnameFrequency, name, DefaultFirstnameFrequency)
}

// lookupFreq reports the table frequency and whether the name was a top-100
// entry (as opposed to the fallback).
func lookupFreq(table map[string]float64, name string, fallback float64) (float64, bool) {
	if table == nil {
		return fallback, false
	}
	if f, ok := table[name]; ok && name != DefaultKey {
		return f, true
	}
	if f, ok := table[DefaultKey]; ok {
		return f, false
	}
	return fallback, false
}
