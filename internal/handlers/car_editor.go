package handlers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/carform"
	"github.com/ukydev/fleet-admin/internal/models"
)

// Notification texts of the car forms.
const (
	MsgCarAdded     = "Car added successfully!"
	MsgCarUpdated   = "Car updated successfully!"
	MsgAddFailed    = "Failed to add car"
	MsgUpdateFailed = "Failed to update car"
)

// CarEditor drives the add and edit flows.
type CarEditor struct {
	svc  CarService
	form *carform.Form
	log  logrus.FieldLogger
}

// NewCarAdder opens a blank add form.
func NewCarAdder(svc CarService, previews *carform.Previews, log logrus.FieldLogger) *CarEditor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CarEditor{svc: svc, form: carform.NewAddForm(previews), log: log.WithField("view", "add-car")}
}

// OpenCarEditor loads car id into an edit form. A missing car is reported
// as ErrNotFound.
func OpenCarEditor(ctx context.Context, svc CarService, id string, previews *carform.Previews, log logrus.FieldLogger) (*CarEditor, error) {
	car, err := CarDetail(ctx, svc, id)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &CarEditor{
		svc:  svc,
		form: carform.NewEditForm(&car, previews),
		log:  log.WithFields(logrus.Fields{"view": "edit-car", "car_id": id}),
	}, nil
}

// CarDetail reads one car for the detail screen.
func CarDetail(ctx context.Context, svc CarService, id string) (models.Car, error) {
	car, err := svc.GetCar(ctx, id)
	if err != nil {
		return models.Car{}, notFound(err, "Car")
	}
	return car, nil
}

// Form exposes the editable state.
func (e *CarEditor) Form() *carform.Form { return e.form }

// Submit sends the form and returns the notification to show. The error is
// non-nil whenever the form stays open.
func (e *CarEditor) Submit(ctx context.Context) (*models.Car, string, error) {
	success, fallback := MsgCarAdded, MsgAddFailed
	if e.form.Mode() == carform.ModeEdit {
		success, fallback = MsgCarUpdated, MsgUpdateFailed
	}

	car, err := e.form.Submit(ctx, e.svc)
	if err != nil {
		if carform.IsValidation(err) {
			return nil, err.Error(), err
		}
		e.log.WithError(err).Warn("Car submission failed")
		return nil, Notify(err, fallback), err
	}
	e.log.Info("Car saved")
	return car, success, nil
}

// Close releases the form's previews.
func (e *CarEditor) Close() { e.form.Close() }
