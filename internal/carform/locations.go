package carform

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukydev/fleet-admin/internal/models"
)

// Kind selects the pickup or drop list.
type Kind string

const (
	Pickup Kind = "pickup"
	Drop   Kind = "drop"
)

// Locations holds the pickup and drop lists. While the drop list mirrors
// pickup it is a deep copy, refreshed on every pickup change, and rejects
// direct edits.
type Locations struct {
	pickup []models.PickupPoint
	drop   []models.PickupPoint
	mirror bool
}

// NewLocations starts from existing lists (edit) or empty ones (add).
func NewLocations(pickup, drop []models.PickupPoint) *Locations {
	return &Locations{pickup: models.ClonePoints(pickup), drop: models.ClonePoints(drop)}
}

// Pickup returns a copy of the pickup list.
func (l *Locations) Pickup() []models.PickupPoint { return models.ClonePoints(l.pickup) }

// Drop returns a copy of the drop list.
func (l *Locations) Drop() []models.PickupPoint { return models.ClonePoints(l.drop) }

// DropSameAsPickup reports whether drop mirrors pickup.
func (l *Locations) DropSameAsPickup() bool { return l.mirror }

// SetDropSameAsPickup turns mirroring on (copying pickup into drop) or off.
// Turning it off clears the drop list.
func (l *Locations) SetDropSameAsPickup(on bool) {
	if !on && !l.mirror {
		return
	}
	l.mirror = on
	if on {
		l.sync()
		return
	}
	l.drop = []models.PickupPoint{}
}

// Add appends a blank entry.
func (l *Locations) Add(kind Kind) error {
	list, err := l.list(kind)
	if err != nil {
		return err
	}
	*list = append(*list, models.PickupPoint{})
	l.afterChange(kind)
	return nil
}

// Remove deletes entry i; later entries shift down.
func (l *Locations) Remove(kind Kind, i int) error {
	list, err := l.list(kind)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(*list) {
		return fmt.Errorf("%w: %s %d", ErrIndexOutOfRange, kind, i)
	}
	out := make([]models.PickupPoint, 0, len(*list)-1)
	out = append(out, (*list)[:i]...)
	*list = append(out, (*list)[i+1:]...)
	l.afterChange(kind)
	return nil
}

// Update sets one field of entry i: name, address, coordinates.lat or
// coordinates.lng. An empty coordinate clears it.
func (l *Locations) Update(kind Kind, i int, field, value string) error {
	list, err := l.list(kind)
	if err != nil {
		return err
	}
	if i < 0 || i >= len(*list) {
		return fmt.Errorf("%w: %s %d", ErrIndexOutOfRange, kind, i)
	}

	p := &(*list)[i]
	switch field {
	case "name":
		p.Name = value
	case "address":
		p.Address = value
	case "coordinates.lat", "coordinates.lng":
		v, err := parseFloat(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w for %s: %q", ErrInvalidValue, field, value)
		}
		if field == "coordinates.lat" {
			p.Coordinates.Lat = v
		} else {
			p.Coordinates.Lng = v
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	l.afterChange(kind)
	return nil
}

func (l *Locations) list(kind Kind) (*[]models.PickupPoint, error) {
	switch kind {
	case Pickup:
		return &l.pickup, nil
	case Drop:
		if l.mirror {
			return nil, ErrDropLocked
		}
		return &l.drop, nil
	default:
		return nil, fmt.Errorf("unknown location kind %q", kind)
	}
}

func (l *Locations) afterChange(kind Kind) {
	if kind == Pickup && l.mirror {
		l.sync()
	}
}

func (l *Locations) sync() {
	l.drop = models.ClonePoints(l.pickup)
	if l.drop == nil {
		l.drop = []models.PickupPoint{}
	}
}

// Fields encodes both lists as JSON text parts.
func (l *Locations) Fields() ([]Field, error) {
	pickup, err := encodePoints(l.pickup)
	if err != nil {
		return nil, err
	}
	drop, err := encodePoints(l.drop)
	if err != nil {
		return nil, err
	}
	return []Field{{"pickupLocations", pickup}, {"dropLocations", drop}}, nil
}

func encodePoints(points []models.PickupPoint) (string, error) {
	if points == nil {
		points = []models.PickupPoint{}
	}
	data, err := json.Marshal(points)
	if err != nil {
		return "", fmt.Errorf("failed to encode locations: %w", err)
	}
	return string(data), nil
}

// ParseIndex reads a 1-based entry number typed by the user.
func ParseIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", ErrIndexOutOfRange, s)
	}
	return n - 1, nil
}
