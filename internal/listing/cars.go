// Package listing derives what the console renders from fetched lists:
// filtered and sorted cars, fleet statistics, filter options, booking rows
// and pager state. Every function is pure and leaves its input untouched.
package listing

import (
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ukydev/fleet-admin/internal/models"
)

// All disables a filter.
const All = "all"

// Availability filter values.
const (
	Available   = "available"
	Unavailable = "unavailable"
)

// Filters narrows the car list. Each member is All (or empty) or an exact
// value to match.
type Filters struct {
	Category     string
	Availability string
	City         string
	FuelType     string
	Transmission string
}

// DefaultFilters has every filter disabled.
func DefaultFilters() Filters {
	return Filters{Category: All, Availability: All, City: All, FuelType: All, Transmission: All}
}

// SortKey orders the car list.
type SortKey string

const (
	SortNameAsc   SortKey = "name-asc"
	SortNameDesc  SortKey = "name-desc"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortYearNew   SortKey = "year-new"
	SortYearOld   SortKey = "year-old"
)

// SortKeys lists every key in display order.
var SortKeys = []SortKey{SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc, SortYearNew, SortYearOld}

// ParseSortKey validates a user-supplied key.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

func active(v string) bool { return v != "" && v != All }

// Match reports whether car passes every active filter.
func (f Filters) Match(car *models.Car) bool {
	if active(f.Category) && string(car.Category) != f.Category {
		return false
	}
	if active(f.Availability) {
		// A car without an availability record matches neither value.
		if car.Availability == nil || car.Availability.IsAvailable != (f.Availability == Available) {
			return false
		}
	}
	if active(f.City) && car.City != f.City {
		return false
	}
	if active(f.FuelType) && string(car.FuelType) != f.FuelType {
		return false
	}
	if active(f.Transmission) && string(car.Transmission) != f.Transmission {
		return false
	}
	return true
}

// Apply returns the cars passing f, ordered by key. The result is a new
// slice; an unknown key keeps server order.
func Apply(cars []models.Car, f Filters, key SortKey) []models.Car {
	out := make([]models.Car, 0, len(cars))
	for i := range cars {
		if f.Match(&cars[i]) {
			out = append(out, cars[i])
		}
	}
	if less := comparator(key); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	}
	return out
}

func comparator(key SortKey) func(a, b *models.Car) bool {
	switch key {
	case SortNameAsc, SortNameDesc:
		col := collate.New(language.English)
		desc := key == SortNameDesc
		return func(a, b *models.Car) bool {
			if desc {
				a, b = b, a
			}
			return col.CompareString(a.DisplayName(), b.DisplayName()) < 0
		}
	case SortPriceAsc:
		return func(a, b *models.Car) bool { return a.DailyRate() < b.DailyRate() }
	case SortPriceDesc:
		return func(a, b *models.Car) bool { return b.DailyRate() < a.DailyRate() }
	case SortYearNew:
		return func(a, b *models.Car) bool { return b.Year < a.Year }
	case SortYearOld:
		return func(a, b *models.Car) bool { return a.Year < b.Year }
	default:
		return nil
	}
}
