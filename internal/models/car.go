package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxCarImages is the upper bound on gallery images per car.
const MaxCarImages = 10

// Category is the body style of a car.
type Category string

const (
	CategoryHatchback Category = "hatchback"
	CategorySedan     Category = "sedan"
	CategorySUV       Category = "suv"
	CategoryMUV       Category = "muv"
	CategoryLuxury    Category = "luxury"
	CategoryElectric  Category = "electric"
)

// FuelType of a car.
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelCNG      FuelType = "cng"
	FuelElectric FuelType = "electric"
	FuelHybrid   FuelType = "hybrid"
)

// Transmission of a car.
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
)

// AvailabilityStatus is the operational status of a listing.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusBooked      AvailabilityStatus = "booked"
	StatusMaintenance AvailabilityStatus = "maintenance"
	StatusInactive    AvailabilityStatus = "inactive"
)

// Condition of a car.
type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
)

// Car is a rental listing as returned by the remote API.
type Car struct {
	ID                 primitive.ObjectID `json:"_id"`
	Brand              string             `json:"brand"`
	Model              string             `json:"model"`
	Variant            string             `json:"variant,omitempty"`
	Year               int                `json:"year,omitempty"`
	RegistrationNumber string             `json:"registrationNumber,omitempty"`
	Category           Category           `json:"category,omitempty"`
	FuelType           FuelType           `json:"fuelType,omitempty"`
	Transmission       Transmission       `json:"transmission,omitempty"`
	Seats              int                `json:"seats,omitempty"`
	Color              *string            `json:"color,omitempty"`
	Mileage            *float64           `json:"mileage,omitempty"` // km/l
	KmDriven           int                `json:"kmDriven,omitempty"`
	City               string             `json:"city,omitempty"`
	Area               string             `json:"area,omitempty"`
	PickupLocations    []PickupPoint      `json:"pickupLocations,omitempty"`
	DropLocations      []PickupPoint      `json:"dropLocations,omitempty"`
	Pricing            *Pricing           `json:"pricing,omitempty"`
	Price              *float64           `json:"price,omitempty"` // legacy flat daily price
	SecurityDeposit    *float64           `json:"securityDeposit,omitempty"`
	Availability       *Availability      `json:"availability,omitempty"`
	Condition          Condition          `json:"condition,omitempty"`
	IsFeatured         bool               `json:"isFeatured"`
	IsActive           bool               `json:"isActive"`
	Features           []string           `json:"features,omitempty"`
	Description        string             `json:"description,omitempty"`
	Thumbnail          string             `json:"thumbnail,omitempty"`
	Images             []Image            `json:"images,omitempty"`
	Rating             *Rating            `json:"rating,omitempty"`
	CreatedAt          *time.Time         `json:"createdAt,omitempty"`
}

// Pricing holds the structured rate card of a car.
type Pricing struct {
	PerDay        *float64 `json:"perDay,omitempty"`
	PerHour       *float64 `json:"perHour,omitempty"`
	FreeKmPerDay  *float64 `json:"freeKmPerDay,omitempty"`
	ExtraKmCharge *float64 `json:"extraKmCharge,omitempty"`
}

// Availability is the booking state of a car.
type Availability struct {
	Status      AvailabilityStatus `json:"status,omitempty"`
	IsAvailable bool               `json:"isAvailable"`
	BookedDates []BookedDate       `json:"bookedDates,omitempty"`
}

// BookedDate is a reserved date range referencing the booking that holds it.
type BookedDate struct {
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	BookingID string    `json:"bookingId,omitempty"`
}

// Image is a gallery image stored by the API.
type Image struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
}

// Rating is the cosmetic aggregate rating of a car.
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// CarList is the envelope of GET /cars.
type CarList struct {
	Data  []Car `json:"data"`
	Total int   `json:"total,omitempty"`
}

// DisplayName is "brand model", the key used for name ordering.
func (c *Car) DisplayName() string {
	return c.Brand + " " + c.Model
}

// DailyRate returns pricing.perDay, falling back to the legacy flat price.
// A missing or zero value falls through; the result is 0 when neither is set.
func (c *Car) DailyRate() float64 {
	if c.Pricing != nil && c.Pricing.PerDay != nil && *c.Pricing.PerDay != 0 {
		return *c.Pricing.PerDay
	}
	if c.Price != nil && *c.Price != 0 {
		return *c.Price
	}
	return 0
}

// Available reports the nested availability flag; a car without an
// availability record is not available.
func (c *Car) Available() bool {
	return c.Availability != nil && c.Availability.IsAvailable
}

// IsValidCategory checks if a category is known
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryHatchback, CategorySedan, CategorySUV, CategoryMUV, CategoryLuxury, CategoryElectric:
		return true
	default:
		return false
	}
}

// IsValidFuelType checks if a fuel type is known
func IsValidFuelType(f FuelType) bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelCNG, FuelElectric, FuelHybrid:
		return true
	default:
		return false
	}
}

// IsValidTransmission checks if a transmission is known
func IsValidTransmission(t Transmission) bool {
	return t == TransmissionManual || t == TransmissionAutomatic
}

// IsValidAvailabilityStatus checks if a listing status is known
func IsValidAvailabilityStatus(s AvailabilityStatus) bool {
	switch s {
	case StatusAvailable, StatusBooked, StatusMaintenance, StatusInactive:
		return true
	default:
		return false
	}
}

// IsValidCondition checks if a condition is known
func IsValidCondition(c Condition) bool {
	return c == ConditionExcellent || c == ConditionGood || c == ConditionFair
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 { return &v }

// String returns a pointer to v, for optional text fields.
func String(v string) *string { return &v }
