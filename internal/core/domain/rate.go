package domain

import (
	"sort"
	"strings"
)

// RateTable maps a lower-cased car category to its per-day price.
type RateTable map[string]int64

// DefaultRates returns a fresh copy of the built-in price list.
func DefaultRates() RateTable {
	return RateTable{
		"sedan":          2500,
		"mini campervan": 6000,
		"suv":            4000,
	}
}

// Lookup resolves carType case-insensitively. Unknown categories cost 0.
func (t RateTable) Lookup(carType string) int64 {
	return t[strings.ToLower(strings.TrimSpace(carType))]
}

// Known reports whether carType has an entry in the table.
func (t RateTable) Known(carType string) bool {
	_, ok := t[strings.ToLower(strings.TrimSpace(carType))]
	return ok
}

// With returns a copy of t with overrides applied on top.
func (t RateTable) With(overrides map[string]int64) RateTable {
	out := make(RateTable, len(t)+len(overrides))
	for k, v := range t {
		out[k] = v
	}
	for k, v := range overrides {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}

type CarRate struct {
	CarType     string `json:"car_type"`
	PricePerDay int64  `json:"price_per_day"`
}

// Entries lists the table sorted by car type.
func (t RateTable) Entries() []CarRate {
	entries := make([]CarRate, 0, len(t))
	for k, v := range t {
		entries = append(entries, CarRate{CarType: k, PricePerDay: v})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].CarType < entries[j].CarType })
	return entries
}
