// Command seeder fills a development API with a random fleet through the
// same add-car flow the console uses.
package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/auth"
	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/carform"
	"github.com/ukydev/fleet-admin/internal/config"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/middleware"
	"github.com/ukydev/fleet-admin/internal/models"
)

// Location is a handover area with its centre coordinates.
type Location struct {
	City string
	Area string
	Lat  float64
	Lng  float64
}

// Model is a catalogue entry the seeder picks from.
type Model struct {
	Brand        string
	Model        string
	Category     models.Category
	FuelType     models.FuelType
	Transmission models.Transmission
	Seats        int
	DailyRate    float64
}

// Areas for realistic listings
var areas = []Location{
	{City: "Pune", Area: "Baner", Lat: 18.5590, Lng: 73.7868},
	{City: "Pune", Area: "Hinjewadi", Lat: 18.5913, Lng: 73.7389},
	{City: "Mumbai", Area: "Andheri", Lat: 19.1136, Lng: 72.8697},
	{City: "Mumbai", Area: "Powai", Lat: 19.1176, Lng: 72.9060},
	{City: "Bengaluru", Area: "Koramangala", Lat: 12.9352, Lng: 77.6245},
	{City: "Bengaluru", Area: "Whitefield", Lat: 12.9698, Lng: 77.7500},
	{City: "Delhi", Area: "Saket", Lat: 28.5245, Lng: 77.2066},
	{City: "Hyderabad", Area: "Gachibowli", Lat: 17.4401, Lng: 78.3489},
}

var catalogue = []Model{
	{"Maruti", "Swift", models.CategoryHatchback, models.FuelPetrol, models.TransmissionManual, 5, 1400},
	{"Hyundai", "i20", models.CategoryHatchback, models.FuelPetrol, models.TransmissionAutomatic, 5, 1600},
	{"Honda", "City", models.CategorySedan, models.FuelPetrol, models.TransmissionAutomatic, 5, 2400},
	{"Hyundai", "Verna", models.CategorySedan, models.FuelDiesel, models.TransmissionManual, 5, 2200},
	{"Mahindra", "XUV700", models.CategorySUV, models.FuelDiesel, models.TransmissionAutomatic, 7, 3800},
	{"Kia", "Seltos", models.CategorySUV, models.FuelPetrol, models.TransmissionManual, 5, 3000},
	{"Toyota", "Innova Crysta", models.CategoryMUV, models.FuelDiesel, models.TransmissionManual, 7, 3500},
	{"Maruti", "Ertiga", models.CategoryMUV, models.FuelCNG, models.TransmissionManual, 7, 2100},
	{"Mercedes-Benz", "C-Class", models.CategoryLuxury, models.FuelPetrol, models.TransmissionAutomatic, 5, 9000},
	{"Tata", "Nexon EV", models.CategoryElectric, models.FuelElectric, models.TransmissionAutomatic, 5, 2800},
}

var colors = []string{"White", "Silver", "Grey", "Black", "Red", "Blue"}

var states = []string{"MH", "KA", "DL", "TS"}

func jitterLocation(base Location, meters float64, r *rand.Rand) Location {
	latMetersPerDeg := 111320.0
	lngMetersPerDeg := 111320.0 * math.Cos(base.Lat*math.Pi/180)
	dLat := (r.Float64()*2 - 1) * (meters / latMetersPerDeg)
	dLng := (r.Float64()*2 - 1) * (meters / lngMetersPerDeg)
	out := base
	out.Lat = base.Lat + dLat
	out.Lng = base.Lng + dLng
	return out
}

func registrationNumber(r *rand.Rand) string {
	return fmt.Sprintf("%s%02d%c%c%04d", states[r.Intn(len(states))], 1+r.Intn(50),
		'A'+rune(r.Intn(26)), 'A'+rune(r.Intn(26)), r.Intn(10000))
}

// placeholderThumbnail renders a small solid PNG tinted by category.
func placeholderThumbnail(category models.Category) ([]byte, error) {
	tints := map[models.Category]color.RGBA{
		models.CategoryHatchback: {0x4c, 0xaf, 0x50, 0xff},
		models.CategorySedan:     {0x21, 0x96, 0xf3, 0xff},
		models.CategorySUV:       {0x79, 0x55, 0x48, 0xff},
		models.CategoryMUV:       {0xff, 0x98, 0x00, 0xff},
		models.CategoryLuxury:    {0x21, 0x21, 0x21, 0xff},
		models.CategoryElectric:  {0x00, 0xbc, 0xd4, 0xff},
	}
	tint, ok := tints[category]
	if !ok {
		tint = color.RGBA{0x9e, 0x9e, 0x9e, 0xff}
	}
	img := image.NewRGBA(image.Rect(0, 0, 64, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, tint)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// newCarForm fills an add form with a random car.
func newCarForm(r *rand.Rand, previews *carform.Previews) (*carform.Form, error) {
	m := catalogue[r.Intn(len(catalogue))]
	at := areas[r.Intn(len(areas))]
	rate := m.DailyRate + float64(r.Intn(5))*100

	f := carform.NewAddForm(previews)
	fields := []struct{ path, value string }{
		{"brand", m.Brand},
		{"model", m.Model},
		{"year", strconv.Itoa(2018 + r.Intn(7))}, // 2018-2024
		{"registrationNumber", registrationNumber(r)},
		{"category", string(m.Category)},
		{"fuelType", string(m.FuelType)},
		{"transmission", string(m.Transmission)},
		{"seats", strconv.Itoa(m.Seats)},
		{"color", colors[r.Intn(len(colors))]},
		{"kmDriven", strconv.Itoa(5000 + r.Intn(80000))},
		{"city", at.City},
		{"area", at.Area},
		{"pricing.perDay", strconv.FormatFloat(rate, 'f', 0, 64)},
		{"pricing.perHour", strconv.FormatFloat(math.Round(rate/10), 'f', 0, 64)},
		{"securityDeposit", strconv.Itoa(2000 + 1000*r.Intn(4))},
		{"condition", []string{"excellent", "good", "fair"}[r.Intn(3)]},
		{"isFeatured", strconv.FormatBool(r.Intn(5) == 0)},
		{"description", fmt.Sprintf("Well kept %s %s available in %s, %s.", m.Brand, m.Model, at.Area, at.City)},
	}
	for _, fv := range fields {
		if err := f.Draft.Set(fv.path, fv.value); err != nil {
			return nil, fmt.Errorf("set %s: %w", fv.path, err)
		}
	}
	if m.FuelType != models.FuelElectric {
		if err := f.Draft.Set("mileage", strconv.Itoa(12+r.Intn(10))); err != nil {
			return nil, err
		}
	}

	pickup := jitterLocation(at, 800, r)
	if err := f.Locations.Add(carform.Pickup); err != nil {
		return nil, err
	}
	for field, value := range map[string]string{
		"name":            at.Area + " Hub",
		"address":         at.Area + ", " + at.City,
		"coordinates.lat": strconv.FormatFloat(pickup.Lat, 'f', 6, 64),
		"coordinates.lng": strconv.FormatFloat(pickup.Lng, 'f', 6, 64),
	} {
		if err := f.Locations.Update(carform.Pickup, 0, field, value); err != nil {
			return nil, err
		}
	}
	f.Locations.SetDropSameAsPickup(true)

	thumb, err := placeholderThumbnail(m.Category)
	if err != nil {
		return nil, err
	}
	if err := f.Thumbnail.Set(carform.Upload{Name: "thumbnail.png", Data: thumb}); err != nil {
		return nil, err
	}
	return f, nil
}

// seed creates n cars and returns how many the API accepted.
func seed(ctx context.Context, svc carform.Submitter, n int, r *rand.Rand, previews *carform.Previews) int {
	created := 0
	for i := 0; i < n; i++ {
		f, err := newCarForm(r, previews)
		if err != nil {
			log.WithError(err).Error("Failed to build car")
			continue
		}
		car, err := f.Submit(ctx, svc)
		f.Close()
		if err != nil {
			log.WithError(err).Error(gateway.Message(err, handlers.MsgAddFailed))
			continue
		}
		created++
		log.WithFields(log.Fields{
			"car_id": car.ID.Hex(),
			"brand":  car.Brand,
			"model":  car.Model,
			"city":   car.City,
		}).Info("Created car")
	}
	return created
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	session := auth.NewSession(cfg.SessionFile)
	if cfg.SeedEmail != "" {
		// Credentials from the environment never touch the console's stored
		// session.
		session = auth.NewSession("")
	} else if err := session.Load(); err != nil {
		log.WithError(err).Fatal("Failed to load session")
	}

	httpClient := &http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: middleware.NewAuthTransport(nil, session, log.StandardLogger()),
	}
	client := gateway.NewClient(cfg.APIBaseURL, httpClient, cache.New(nil, nil, log.StandardLogger()), log.StandardLogger())
	authHandler := handlers.NewAuthHandler(client, session, log.StandardLogger())

	if cfg.SeedEmail != "" {
		if _, msg, err := authHandler.Login(ctx, cfg.SeedEmail, cfg.SeedPassword); err != nil {
			log.WithError(err).Fatal(msg)
		}
	}
	if _, err := authHandler.Current(); err != nil {
		log.WithError(err).Fatal("Seeding needs an admin: set SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD or run fleetadmin login")
	}

	log.WithFields(log.Fields{
		"fleet_size": cfg.FleetSize,
		"api_url":    cfg.APIBaseURL,
	}).Info("Starting fleet seeding")

	dir, err := os.MkdirTemp("", "fleet-seeder-")
	if err != nil {
		log.WithError(err).Fatal("Failed to create scratch dir")
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := seed(ctx, client, cfg.FleetSize, r, carform.NewPreviews(dir))
	_ = os.RemoveAll(dir)

	log.WithField("created_cars", created).Info("Fleet seeding completed")
	if created == 0 {
		log.Error("No cars created. Ensure the admin credentials are valid and the API is reachable.")
		os.Exit(1)
	}
}
