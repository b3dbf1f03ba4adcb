package carform

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

// Seeded rating sent with every new listing.
const (
	seedRatingAverage  = "4.5"
	seedRatingCountMin = 10
	seedRatingCountMax = 59
)

// Mode tells add from edit.
type Mode int

const (
	ModeAdd Mode = iota
	ModeEdit
)

// Status is the submission state.
type Status int

const (
	StatusEditing Status = iota
	StatusSubmitting
	StatusDone
)

func (s Status) String() string {
	switch s {
	case StatusEditing:
		return "editing"
	case StatusSubmitting:
		return "submitting"
	case StatusDone:
		return "done"
	default:
		return "unknown"
	}
}

// Submitter is the part of the gateway a form submits to.
type Submitter interface {
	CreateCar(ctx context.Context, form *gateway.CarForm) (*models.Car, error)
	UpdateCar(ctx context.Context, id string, form *gateway.CarForm) (*models.Car, error)
}

// Form is one add or edit session: editing, then submitting, then done or
// back to editing with the error.
type Form struct {
	mu     sync.Mutex
	mode   Mode
	carID  string
	status Status
	err    error

	Draft     *Draft
	Locations *Locations
	Thumbnail *Thumbnail
	Gallery   *Gallery

	previews *Previews
	now      func() time.Time
	intn     func(n int) int
}

// NewAddForm starts a blank listing.
func NewAddForm(previews *Previews) *Form {
	f := &Form{mode: ModeAdd, previews: previews, now: time.Now, intn: rand.Intn}
	f.reset()
	return f
}

// NewEditForm starts from a stored listing.
func NewEditForm(car *models.Car, previews *Previews) *Form {
	return &Form{
		mode:      ModeEdit,
		carID:     car.ID.Hex(),
		Draft:     DraftFromCar(car),
		Locations: NewLocations(car.PickupLocations, car.DropLocations),
		Thumbnail: &Thumbnail{previews: previews, existing: car.Thumbnail},
		Gallery:   &Gallery{previews: previews, existing: append([]models.Image(nil), car.Images...)},
		previews:  previews,
		now:       time.Now,
		intn:      rand.Intn,
	}
}

func (f *Form) reset() {
	if f.Thumbnail != nil {
		f.Thumbnail.Clear()
	}
	if f.Gallery != nil {
		f.Gallery.release()
	}
	f.Draft = NewDraft(f.now())
	f.Locations = NewLocations(nil, nil)
	f.Thumbnail = &Thumbnail{previews: f.previews}
	f.Gallery = &Gallery{previews: f.previews}
}

// Mode returns add or edit.
func (f *Form) Mode() Mode { return f.mode }

// CarID is the id of the listing being edited.
func (f *Form) CarID() string { return f.carID }

// Status returns the current state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Err returns the failure of the last submission.
func (f *Form) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Validate runs every local check. Add requires a pending thumbnail.
func (f *Form) Validate() error {
	v := f.Draft.Validate()
	if v == nil {
		v = &ValidationError{}
	}
	if f.mode == ModeAdd && f.Thumbnail.Pending() == nil {
		v.Thumbnail = true
	}
	if v.empty() {
		return nil
	}
	return v
}

// Payload validates the form and builds the multipart body.
func (f *Form) Payload() (*gateway.CarForm, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	locations, err := f.Locations.Fields()
	if err != nil {
		return nil, err
	}

	body := gateway.NewCarForm()
	for _, field := range f.Draft.Fields() {
		body.Add(field.Name, field.Value)
		if field.Name == "area" {
			for _, loc := range locations {
				body.Add(loc.Name, loc.Value)
			}
		}
	}

	if t := f.Thumbnail.Pending(); t != nil {
		body.AddFile(gateway.FormFile{Field: "thumbnail", Filename: t.Name, Data: t.Data})
	}
	for _, img := range f.Gallery.Pending() {
		body.AddFile(gateway.FormFile{Field: "images", Filename: img.Name, Data: img.Data})
	}

	switch f.mode {
	case ModeAdd:
		body.Add("rating[average]", seedRatingAverage)
		count := seedRatingCountMin + f.intn(seedRatingCountMax-seedRatingCountMin+1)
		body.Add("rating[count]", strconv.Itoa(count))
	case ModeEdit:
		for _, id := range f.Gallery.ToDelete() {
			body.Add("imagesToDelete", id)
		}
	}
	return body, nil
}

// Submit sends the form. Validation failures never reach s. On failure the
// form returns to editing with the error kept; a successful add clears the
// draft.
func (f *Form) Submit(ctx context.Context, s Submitter) (*models.Car, error) {
	f.mu.Lock()
	switch f.status {
	case StatusSubmitting:
		f.mu.Unlock()
		return nil, ErrSubmitting
	case StatusDone:
		f.mu.Unlock()
		return nil, ErrFormDone
	}

	body, err := f.Payload()
	if err != nil {
		f.err = err
		f.mu.Unlock()
		return nil, err
	}
	f.status = StatusSubmitting
	f.err = nil
	f.mu.Unlock()

	var car *models.Car
	if f.mode == ModeAdd {
		car, err = s.CreateCar(ctx, body)
	} else {
		car, err = s.UpdateCar(ctx, f.carID, body)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.status = StatusEditing
		f.err = err
		return nil, err
	}
	if f.mode == ModeAdd {
		f.reset()
	}
	f.status = StatusDone
	return car, nil
}

// Close releases every preview held by the form.
func (f *Form) Close() {
	f.Thumbnail.Clear()
	f.Gallery.release()
	f.previews.ReleaseAll()
}

// IsValidation reports whether err was raised locally.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
