package listing

import (
	"math"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Stats summarises the fetched fleet, before any filter.
type Stats struct {
	Total       int
	Available   int
	Unavailable int
	Categories  map[models.Category]int
	AvgPrice    int
}

// ComputeStats counts cars by availability and category and averages the
// daily rate, rounded. An empty fleet averages 0.
func ComputeStats(cars []models.Car) Stats {
	s := Stats{Total: len(cars), Categories: make(map[models.Category]int)}
	var sum float64
	for i := range cars {
		car := &cars[i]
		if car.Available() {
			s.Available++
		}
		s.Categories[car.Category]++
		sum += car.DailyRate()
	}
	s.Unavailable = s.Total - s.Available
	if s.Total > 0 {
		s.AvgPrice = int(math.Round(sum / float64(s.Total)))
	}
	return s
}

// FilterOptions holds the distinct non-empty values present in the fleet, in
// first-seen order.
type FilterOptions struct {
	Cities        []string
	Categories    []string
	FuelTypes     []string
	Transmissions []string
}

// Options enumerates the values each filter can take.
func Options(cars []models.Car) FilterOptions {
	var o FilterOptions
	cities, cats, fuels, trans := set{}, set{}, set{}, set{}
	for i := range cars {
		car := &cars[i]
		o.Cities = cities.add(o.Cities, car.City)
		o.Categories = cats.add(o.Categories, string(car.Category))
		o.FuelTypes = fuels.add(o.FuelTypes, string(car.FuelType))
		o.Transmissions = trans.add(o.Transmissions, string(car.Transmission))
	}
	return o
}

type set map[string]struct{}

func (s set) add(list []string, v string) []string {
	if v == "" {
		return list
	}
	if _, ok := s[v]; ok {
		return list
	}
	s[v] = struct{}{}
	return append(list, v)
}
