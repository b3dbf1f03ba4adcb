package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-admin/internal/carform"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

func editableCar() models.Car {
	return models.Car{
		ID:              primitive.NewObjectID(),
		Brand:           "Maruti",
		Model:           "Swift",
		Year:            2022,
		Category:        models.CategoryHatchback,
		FuelType:        models.FuelPetrol,
		Transmission:    models.TransmissionManual,
		Seats:           5,
		City:            "Pune",
		Area:            "Baner",
		Pricing:         &models.Pricing{PerDay: price(1500)},
		SecurityDeposit: price(3000),
		Thumbnail:       "https://cdn.example.com/t.jpg",
		Images:          []models.Image{{ID: "img1", URL: "https://cdn.example.com/1.jpg"}},
	}
}

func TestOpenCarEditor_NotFound(t *testing.T) {
	svc := newMockGateway()
	svc.On("GetCar", mock.Anything, "missing").Return(models.Car{}, &gateway.Error{StatusCode: http.StatusNotFound, Message: "No car with id missing"})

	e, err := OpenCarEditor(context.Background(), svc, "missing", carform.NewPreviews(""), quietLogger())

	assert.Nil(t, e)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "Car not found", err.Error())
	assert.Equal(t, "Car not found", Notify(err, "Failed to load car"))
}

func TestCarEditor_EditSubmit(t *testing.T) {
	car := editableCar()
	id := car.ID.Hex()
	svc := newMockGateway()
	svc.On("GetCar", mock.Anything, id).Return(car, nil)
	svc.On("UpdateCar", mock.Anything, id, mock.AnythingOfType("*gateway.CarForm")).Return(&car, nil)

	e, err := OpenCarEditor(context.Background(), svc, id, carform.NewPreviews(""), quietLogger())
	require.NoError(t, err)
	defer e.Close()

	require.NoError(t, e.Form().Gallery.MarkForDeletion("img1"))
	saved, msg, err := e.Submit(context.Background())

	require.NoError(t, err)
	assert.Equal(t, MsgCarUpdated, msg)
	assert.Equal(t, car.ID, saved.ID)

	form := svc.Calls[len(svc.Calls)-1].Arguments.Get(2).(*gateway.CarForm)
	assert.Equal(t, []string{"img1"}, form.Values("imagesToDelete"))
}

func TestCarEditor_AddFailures(t *testing.T) {
	t.Run("validation stays local", func(t *testing.T) {
		svc := newMockGateway()
		e := NewCarAdder(svc, carform.NewPreviews(""), quietLogger())
		defer e.Close()

		_, msg, err := e.Submit(context.Background())

		assert.True(t, carform.IsValidation(err))
		assert.Equal(t, err.Error(), msg)
		svc.AssertNotCalled(t, "CreateCar", mock.Anything, mock.Anything)
	})

	t.Run("server message is shown and form stays open", func(t *testing.T) {
		svc := newMockGateway()
		svc.On("CreateCar", mock.Anything, mock.Anything).Return(nil, &gateway.Error{StatusCode: http.StatusBadRequest, Message: "Registration number already exists"})

		e := NewCarAdder(svc, carform.NewPreviews(""), quietLogger())
		defer e.Close()
		fillEditor(t, e)

		_, msg, err := e.Submit(context.Background())

		assert.Error(t, err)
		assert.Equal(t, "Registration number already exists", msg)
		assert.Equal(t, carform.StatusEditing, e.Form().Status())
	})

	t.Run("success", func(t *testing.T) {
		svc := newMockGateway()
		created := editableCar()
		svc.On("CreateCar", mock.Anything, mock.Anything).Return(&created, nil)

		e := NewCarAdder(svc, carform.NewPreviews(""), quietLogger())
		defer e.Close()
		fillEditor(t, e)

		car, msg, err := e.Submit(context.Background())

		require.NoError(t, err)
		assert.Equal(t, MsgCarAdded, msg)
		assert.Equal(t, created.ID, car.ID)
		assert.Equal(t, carform.StatusDone, e.Form().Status())
	})
}

func fillEditor(t *testing.T, e *CarEditor) {
	t.Helper()
	f := e.Form()
	for path, v := range map[string]string{
		"brand":           "Maruti",
		"model":           "Swift",
		"category":        "hatchback",
		"fuelType":        "petrol",
		"transmission":    "manual",
		"city":            "Pune",
		"area":            "Baner",
		"pricing.perDay":  "1500",
		"securityDeposit": "3000",
	} {
		require.NoError(t, f.Draft.Set(path, v))
	}
	require.NoError(t, f.Thumbnail.Set(carform.Upload{Name: "t.jpg", Data: []byte("t")}))
}
