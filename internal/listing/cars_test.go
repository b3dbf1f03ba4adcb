package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-admin/internal/models"
)

func car(brand, model string, year int, perDay float64) models.Car {
	c := models.Car{ID: primitive.NewObjectID(), Brand: brand, Model: model, Year: year}
	if perDay != 0 {
		c.Pricing = &models.Pricing{PerDay: models.Float(perDay)}
	}
	return c
}

func names(cars []models.Car) []string {
	out := make([]string, len(cars))
	for i := range cars {
		out[i] = cars[i].DisplayName()
	}
	return out
}

func fleet() []models.Car {
	swift := car("Maruti", "Swift", 2020, 1500)
	swift.Category = models.CategoryHatchback
	swift.City = "Pune"
	swift.FuelType = models.FuelPetrol
	swift.Transmission = models.TransmissionManual
	swift.Availability = &models.Availability{IsAvailable: true}

	city := car("Honda", "City", 2022, 2200)
	city.Category = models.CategorySedan
	city.City = "Mumbai"
	city.FuelType = models.FuelPetrol
	city.Transmission = models.TransmissionAutomatic

	nexon := car("Tata", "Nexon EV", 0, 0)
	nexon.Price = models.Float(3000)
	nexon.Category = models.CategoryElectric
	nexon.City = "Pune"
	nexon.FuelType = models.FuelElectric
	nexon.Transmission = models.TransmissionAutomatic
	nexon.Availability = &models.Availability{IsAvailable: true}

	alto := car("maruti", "Alto", 2018, 0)
	alto.Category = models.CategoryHatchback
	alto.FuelType = models.FuelCNG
	alto.Transmission = models.TransmissionManual
	alto.Availability = &models.Availability{IsAvailable: false}

	return []models.Car{swift, city, nexon, alto}
}

func TestApply_Example(t *testing.T) {
	cars := []models.Car{car("Maruti", "Swift", 2020, 1500), car("Honda", "City", 2022, 2200)}

	assert.Equal(t, []string{"Honda City", "Maruti Swift"}, names(Apply(cars, DefaultFilters(), SortPriceDesc)))
	assert.Equal(t, []string{"Maruti Swift", "Honda City"}, names(Apply(cars, DefaultFilters(), SortYearOld)))
}

func TestApply_Sorts(t *testing.T) {
	tests := []struct {
		key      SortKey
		expected []string
	}{
		{SortNameAsc, []string{"Honda City", "maruti Alto", "Maruti Swift", "Tata Nexon EV"}},
		{SortNameDesc, []string{"Tata Nexon EV", "Maruti Swift", "maruti Alto", "Honda City"}},
		{SortPriceAsc, []string{"maruti Alto", "Maruti Swift", "Honda City", "Tata Nexon EV"}},
		{SortPriceDesc, []string{"Tata Nexon EV", "Honda City", "Maruti Swift", "maruti Alto"}},
		{SortYearNew, []string{"Honda City", "Maruti Swift", "maruti Alto", "Tata Nexon EV"}},
		{SortYearOld, []string{"Tata Nexon EV", "maruti Alto", "Maruti Swift", "Honda City"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.expected, names(Apply(fleet(), DefaultFilters(), tt.key)))
		})
	}
}

func TestApply_SortIsPermutationAndIdempotent(t *testing.T) {
	input := fleet()
	for _, key := range SortKeys {
		once := Apply(input, DefaultFilters(), key)
		twice := Apply(once, DefaultFilters(), key)

		require.Len(t, once, len(input), key)
		assert.ElementsMatch(t, names(input), names(once), key)
		assert.Equal(t, names(once), names(twice), key)
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	input := fleet()
	before := names(input)

	Apply(input, Filters{City: "Pune"}, SortNameDesc)

	assert.Equal(t, before, names(input))
}

func TestApply_Filters(t *testing.T) {
	tests := []struct {
		name     string
		filters  Filters
		expected []string
	}{
		{"all", DefaultFilters(), []string{"Maruti Swift", "Honda City", "Tata Nexon EV", "maruti Alto"}},
		{"category", Filters{Category: "hatchback"}, []string{"Maruti Swift", "maruti Alto"}},
		{"available", Filters{Availability: Available}, []string{"Maruti Swift", "Tata Nexon EV"}},
		{"unavailable skips missing record", Filters{Availability: Unavailable}, []string{"maruti Alto"}},
		{"city and transmission", Filters{City: "Pune", Transmission: "automatic"}, []string{"Tata Nexon EV"}},
		{"fuel", Filters{FuelType: "cng", Category: All}, []string{"maruti Alto"}},
		{"no match", Filters{City: "Delhi"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(fleet(), tt.filters, "")
			assert.Equal(t, tt.expected, names(got))

			again := Apply(got, tt.filters, "")
			assert.Equal(t, names(got), names(again))
			for i := range got {
				assert.True(t, tt.filters.Match(&got[i]))
			}
		})
	}
}

func TestParseSortKey(t *testing.T) {
	k, err := ParseSortKey("price-desc")
	require.NoError(t, err)
	assert.Equal(t, SortPriceDesc, k)

	_, err = ParseSortKey("cheapest")
	assert.Error(t, err)
}
