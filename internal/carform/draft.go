// Package carform holds the editable state of the add-car and edit-car
// flows and turns it into the multipart body the API expects.
package carform

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Defaults applied to a new listing.
const (
	DefaultSeats         = 5
	DefaultFreeKmPerDay  = 200
	DefaultExtraKmCharge = 10
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Draft is the unsaved state of a car listing. Nested groups mirror the
// domain model; the dotted wire names exist only in Set and Fields.
type Draft struct {
	Brand              string
	Model              string
	Variant            string
	Year               int
	RegistrationNumber string
	Category           models.Category
	FuelType           models.FuelType
	Transmission       models.Transmission
	Seats              int
	Color              string
	Mileage            *float64
	KmDriven           int
	City               string
	Area               string
	Pricing            PricingDraft
	SecurityDeposit    *float64
	Availability       AvailabilityDraft
	Condition          models.Condition
	IsFeatured         bool
	Description        string
}

// PricingDraft is the "pricing.*" group.
type PricingDraft struct {
	PerDay        *float64
	PerHour       *float64
	FreeKmPerDay  *float64
	ExtraKmCharge *float64
}

// AvailabilityDraft is the "availability.*" group.
type AvailabilityDraft struct {
	Status models.AvailabilityStatus
}

// Field is one flattened wire field.
type Field struct {
	Name  string
	Value string
}

// NewDraft returns the blank add-car draft.
func NewDraft(now time.Time) *Draft {
	return &Draft{
		Year:  now.Year(),
		Seats: DefaultSeats,
		Pricing: PricingDraft{
			FreeKmPerDay:  models.Float(DefaultFreeKmPerDay),
			ExtraKmCharge: models.Float(DefaultExtraKmCharge),
		},
		Availability: AvailabilityDraft{Status: models.StatusAvailable},
		Condition:    models.ConditionGood,
	}
}

// DraftFromCar prefills an edit draft. Zero values fall back the way the
// listing screen shows them: seats to 5, status to available, condition to
// good, and zero prices to empty.
func DraftFromCar(car *models.Car) *Draft {
	d := &Draft{
		Brand:              car.Brand,
		Model:              car.Model,
		Variant:            car.Variant,
		Year:               car.Year,
		RegistrationNumber: car.RegistrationNumber,
		Category:           car.Category,
		FuelType:           car.FuelType,
		Transmission:       car.Transmission,
		Seats:              car.Seats,
		Mileage:            nonZero(car.Mileage),
		KmDriven:           car.KmDriven,
		City:               car.City,
		Area:               car.Area,
		SecurityDeposit:    nonZero(car.SecurityDeposit),
		Availability:       AvailabilityDraft{Status: models.StatusAvailable},
		Condition:          car.Condition,
		IsFeatured:         car.IsFeatured,
		Description:        car.Description,
	}
	if d.Seats == 0 {
		d.Seats = DefaultSeats
	}
	if car.Color != nil {
		d.Color = *car.Color
	}
	if car.Pricing != nil {
		d.Pricing = PricingDraft{
			PerDay:        nonZero(car.Pricing.PerDay),
			PerHour:       nonZero(car.Pricing.PerHour),
			FreeKmPerDay:  nonZero(car.Pricing.FreeKmPerDay),
			ExtraKmCharge: nonZero(car.Pricing.ExtraKmCharge),
		}
	}
	if car.Availability != nil && car.Availability.Status != "" {
		d.Availability.Status = car.Availability.Status
	}
	if d.Condition == "" {
		d.Condition = models.ConditionGood
	}
	return d
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 {
		return nil
	}
	out := *v
	return &out
}

// Set assigns the field addressed by a flattened path such as
// "pricing.perDay". An empty value clears optional fields.
func (d *Draft) Set(path, value string) error {
	value = strings.TrimSpace(value)
	var err error
	switch path {
	case "brand":
		d.Brand = value
	case "model":
		d.Model = value
	case "variant":
		d.Variant = value
	case "year":
		err = setInt(&d.Year, value)
	case "registrationNumber":
		d.RegistrationNumber = value
	case "category":
		d.Category = models.Category(value)
	case "fuelType":
		d.FuelType = models.FuelType(value)
	case "transmission":
		d.Transmission = models.Transmission(value)
	case "seats":
		err = setInt(&d.Seats, value)
	case "color":
		d.Color = value
	case "mileage":
		err = setFloat(&d.Mileage, value)
	case "kmDriven":
		err = setInt(&d.KmDriven, value)
	case "city":
		d.City = value
	case "area":
		d.Area = value
	case "pricing.perDay":
		err = setFloat(&d.Pricing.PerDay, value)
	case "pricing.perHour":
		err = setFloat(&d.Pricing.PerHour, value)
	case "pricing.freeKmPerDay":
		err = setFloat(&d.Pricing.FreeKmPerDay, value)
	case "pricing.extraKmCharge":
		err = setFloat(&d.Pricing.ExtraKmCharge, value)
	case "securityDeposit":
		err = setFloat(&d.SecurityDeposit, value)
	case "availability.status":
		d.Availability.Status = models.AvailabilityStatus(value)
	case "condition":
		d.Condition = models.Condition(value)
	case "isFeatured":
		err = setBool(&d.IsFeatured, value)
	case "description":
		d.Description = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, path)
	}
	if err != nil {
		return fmt.Errorf("%w for %s: %q", ErrInvalidValue, path, value)
	}
	return nil
}

// Fields flattens the draft into wire fields, in form order. Missing
// optional values are sent empty.
func (d *Draft) Fields() []Field {
	return []Field{
		{"brand", d.Brand},
		{"model", d.Model},
		{"variant", d.Variant},
		{"year", formatInt(d.Year)},
		{"registrationNumber", d.RegistrationNumber},
		{"category", string(d.Category)},
		{"fuelType", string(d.FuelType)},
		{"transmission", string(d.Transmission)},
		{"seats", formatInt(d.Seats)},
		{"color", d.Color},
		{"mileage", formatFloat(d.Mileage)},
		{"kmDriven", strconv.Itoa(d.KmDriven)},
		{"city", d.City},
		{"area", d.Area},
		{"pricing.perDay", formatFloat(d.Pricing.PerDay)},
		{"securityDeposit", formatFloat(d.SecurityDeposit)},
		{"pricing.perHour", formatFloat(d.Pricing.PerHour)},
		{"pricing.freeKmPerDay", formatFloat(d.Pricing.FreeKmPerDay)},
		{"pricing.extraKmCharge", formatFloat(d.Pricing.ExtraKmCharge)},
		{"availability.status", string(d.Availability.Status)},
		{"condition", string(d.Condition)},
		{"isFeatured", strconv.FormatBool(d.IsFeatured)},
		{"description", d.Description},
	}
}

// Get returns the flattened value of path.
func (d *Draft) Get(path string) (string, error) {
	for _, f := range d.Fields() {
		if f.Name == path {
			return f.Value, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownField, path)
}

// Validate checks required fields and enum values locally.
func (d *Draft) Validate() *ValidationError {
	v := &ValidationError{}
	required := []struct {
		name    string
		missing bool
	}{
		{"brand", d.Brand == ""},
		{"model", d.Model == ""},
		{"year", d.Year == 0},
		{"category", d.Category == ""},
		{"fuelType", d.FuelType == ""},
		{"transmission", d.Transmission == ""},
		{"seats", d.Seats == 0},
		{"city", d.City == ""},
		{"area", d.Area == ""},
		{"pricing.perDay", d.Pricing.PerDay == nil},
		{"securityDeposit", d.SecurityDeposit == nil},
	}
	for _, r := range required {
		if r.missing {
			v.Missing = append(v.Missing, r.name)
		}
	}

	if d.Category != "" && !models.IsValidCategory(d.Category) {
		v.Invalid = append(v.Invalid, "category")
	}
	if d.FuelType != "" && !models.IsValidFuelType(d.FuelType) {
		v.Invalid = append(v.Invalid, "fuelType")
	}
	if d.Transmission != "" && !models.IsValidTransmission(d.Transmission) {
		v.Invalid = append(v.Invalid, "transmission")
	}
	if d.Availability.Status != "" && !models.IsValidAvailabilityStatus(d.Availability.Status) {
		v.Invalid = append(v.Invalid, "availability.status")
	}
	if d.Condition != "" && !models.IsValidCondition(d.Condition) {
		v.Invalid = append(v.Invalid, "condition")
	}

	if v.empty() {
		return nil
	}
	return v
}

// setInt, setFloat and setBool leave dst untouched when s does not parse.
func setInt(dst *int, s string) error {
	v, err := parseInt(s)
	if err == nil {
		*dst = v
	}
	return err
}

func setFloat(dst **float64, s string) error {
	v, err := parseFloat(s)
	if err == nil {
		*dst = v
	}
	return err
}

func setBool(dst *bool, s string) error {
	v, err := parseBool(s)
	if err == nil {
		*dst = v
	}
	return err
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	return strconv.ParseBool(s)
}

func formatInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
