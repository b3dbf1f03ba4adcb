package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/listing"
	"github.com/ukydev/fleet-admin/internal/models"
)

func price(v float64) *float64 { return &v }

func fleet() models.CarList {
	return models.CarList{Data: []models.Car{
		{ID: primitive.NewObjectID(), Brand: "Maruti", Model: "Swift", Category: models.CategoryHatchback,
			Pricing: &models.Pricing{PerDay: price(1500)}, Availability: &models.Availability{IsAvailable: true}},
		{ID: primitive.NewObjectID(), Brand: "Honda", Model: "City", Category: models.CategorySedan,
			Pricing: &models.Pricing{PerDay: price(2500)}, Availability: &models.Availability{IsAvailable: false}},
	}, Total: 2}
}

func TestCarsView_LoadRendersSortedAndStats(t *testing.T) {
	svc := newMockGateway()
	svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(fleet(), nil)

	v := NewCarsView(svc, time.Millisecond, quietLogger())
	defer v.Close()
	require.NoError(t, v.Load(context.Background()))

	cars := v.Cars()
	require.Len(t, cars, 2)
	assert.Equal(t, "Honda", cars[0].Brand)

	stats := v.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Available)
	assert.Equal(t, 2000, stats.AvgPrice)

	f := listing.DefaultFilters()
	f.Category = string(models.CategoryHatchback)
	v.SetFilters(f)
	require.Len(t, v.Cars(), 1)
	assert.Equal(t, "Maruti", v.Cars()[0].Brand)

	v.ResetFilters()
	assert.Len(t, v.Cars(), 2)
}

func TestCarsView_RefetchesOnInvalidation(t *testing.T) {
	svc := newMockGateway()
	svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(fleet(), nil)

	v := NewCarsView(svc, time.Millisecond, quietLogger())
	require.NoError(t, v.Load(context.Background()))
	svc.bus.Publish(context.Background(), cache.TypeTag(cache.TypeCar))
	svc.AssertNumberOfCalls(t, "ListCars", 2)

	v.Close()
	svc.bus.Publish(context.Background(), cache.TypeTag(cache.TypeCar))
	svc.AssertNumberOfCalls(t, "ListCars", 2)
}

func TestCarsView_LoadFailureKeepsView(t *testing.T) {
	svc := newMockGateway()
	svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(models.CarList{}, &gateway.Error{StatusCode: http.StatusInternalServerError})

	v := NewCarsView(svc, time.Millisecond, quietLogger())
	defer v.Close()

	err := v.Load(context.Background())
	assert.Error(t, err)
	assert.Equal(t, MsgLoadCarsFailed, Notify(err, MsgLoadCarsFailed))
	assert.Empty(t, v.Cars())
	assert.Equal(t, 0, v.Stats().Total)
}

func TestCarsView_SearchIsDebounced(t *testing.T) {
	svc := newMockGateway()
	svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(fleet(), nil)
	svc.On("ListCars", mock.Anything, gateway.PageQuery{Search: "swift"}).Return(models.CarList{Data: fleet().Data[:1]}, nil)

	v := NewCarsView(svc, 20*time.Millisecond, quietLogger())
	defer v.Close()
	require.NoError(t, v.Load(context.Background()))

	v.Type("s")
	v.Type("sw")
	v.Type("swift")

	assert.Eventually(t, func() bool { return v.SearchTerm() == "swift" && len(v.Cars()) == 1 }, time.Second, 5*time.Millisecond)
	svc.AssertNotCalled(t, "ListCars", mock.Anything, gateway.PageQuery{Search: "s"})
	svc.AssertNotCalled(t, "ListCars", mock.Anything, gateway.PageQuery{Search: "sw"})
}

func TestCarsView_Selection(t *testing.T) {
	svc := newMockGateway()
	list := fleet()
	svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(list, nil)

	v := NewCarsView(svc, time.Millisecond, quietLogger())
	defer v.Close()
	require.NoError(t, v.Load(context.Background()))

	a := list.Data[0].ID.Hex()
	v.Toggle(a)
	assert.Equal(t, []string{a}, v.Selected())
	v.Toggle(a)
	assert.Empty(t, v.Selected())

	v.ToggleAll()
	assert.Len(t, v.Selected(), 2)
	v.ToggleAll()
	assert.Empty(t, v.Selected())
}

func TestCarsView_BulkDelete(t *testing.T) {
	list := fleet()
	a, b := list.Data[0].ID.Hex(), list.Data[1].ID.Hex()

	t.Run("all succeed", func(t *testing.T) {
		svc := newMockGateway()
		svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(list, nil)
		svc.On("DeleteCar", mock.Anything, a).Return(nil)
		svc.On("DeleteCar", mock.Anything, b).Return(nil)

		v := NewCarsView(svc, time.Millisecond, quietLogger())
		defer v.Close()
		require.NoError(t, v.Load(context.Background()))
		v.ToggleAll()

		n, err := v.BulkDelete(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Empty(t, v.Selected())
	})

	t.Run("partial failure keeps failed ids selected", func(t *testing.T) {
		svc := newMockGateway()
		svc.On("ListCars", mock.Anything, gateway.PageQuery{}).Return(list, nil)
		svc.On("DeleteCar", mock.Anything, a).Return(nil)
		svc.On("DeleteCar", mock.Anything, b).Return(&gateway.Error{StatusCode: http.StatusConflict, Message: "Car has active bookings"})

		v := NewCarsView(svc, time.Millisecond, quietLogger())
		defer v.Close()
		require.NoError(t, v.Load(context.Background()))
		v.ToggleAll()

		n, err := v.BulkDelete(context.Background())
		assert.Equal(t, 1, n)

		var bulk *BulkDeleteError
		require.True(t, errors.As(err, &bulk))
		assert.Equal(t, 2, bulk.Requested)
		require.Len(t, bulk.Failed, 1)
		assert.Equal(t, b, bulk.Failed[0].ID)
		assert.Contains(t, err.Error(), MsgBulkDeleteFailed)
		assert.Contains(t, err.Error(), "Car has active bookings")
		assert.Equal(t, []string{b}, v.Selected())
	})

	t.Run("empty selection is a no-op", func(t *testing.T) {
		svc := newMockGateway()
		v := NewCarsView(svc, time.Millisecond, quietLogger())
		defer v.Close()

		n, err := v.BulkDelete(context.Background())
		assert.NoError(t, err)
		assert.Zero(t, n)
		svc.AssertNotCalled(t, "DeleteCar", mock.Anything, mock.Anything)
	})
}

// fleetAPI serves a mutable fleet with slow reads so refetches overlap.
type fleetAPI struct {
	mu   sync.Mutex
	cars []models.Car
}

func (f *fleetAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/cars":
		f.mu.Lock()
		list := models.CarList{Data: append([]models.Car{}, f.cars...), Total: len(f.cars)}
		f.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/cars/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/cars/")
		f.mu.Lock()
		for i, c := range f.cars {
			if c.ID.Hex() == id {
				f.cars = append(f.cars[:i], f.cars[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]string{"message": "Car deleted successfully"})
	default:
		http.NotFound(w, r)
	}
}

func TestCarsView_BulkDeleteRemovesCarsFromNextRender(t *testing.T) {
	api := &fleetAPI{}
	for i := 0; i < 6; i++ {
		api.cars = append(api.cars, models.Car{
			ID: primitive.NewObjectID(), Brand: "Maruti", Model: fmt.Sprintf("Swift %d", i),
			Pricing: &models.Pricing{PerDay: price(1500)},
		})
	}
	keep := api.cars[5].ID.Hex()
	srv := httptest.NewServer(api)
	defer srv.Close()

	client := gateway.NewClient(srv.URL+"/api", srv.Client(), cache.New(nil, nil, quietLogger()), quietLogger())
	v := NewCarsView(client, time.Millisecond, quietLogger())
	defer v.Close()
	ctx := context.Background()
	require.NoError(t, v.Load(ctx))
	require.Len(t, v.Cars(), 6)

	v.ToggleAll()
	v.Toggle(keep)
	deleted := v.Selected()
	require.Len(t, deleted, 5)

	n, err := v.BulkDelete(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Empty(t, v.Selected())

	rendered := v.Cars()
	require.Len(t, rendered, 1)
	assert.Equal(t, keep, rendered[0].ID.Hex())
	assert.Equal(t, 1, v.Stats().Total)

	// A fresh read is not served a pre-delete list from the cache.
	list, err := client.ListCars(ctx, gateway.PageQuery{})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, keep, list.Data[0].ID.Hex())
}

func TestCarsView_DeleteDropsFromSelection(t *testing.T) {
	svc := newMockGateway()
	svc.On("DeleteCar", mock.Anything, "c1").Return(nil)
	svc.On("DeleteCar", mock.Anything, "c2").Return(errors.New("boom"))

	v := NewCarsView(svc, time.Millisecond, quietLogger())
	defer v.Close()
	v.Toggle("c1")
	v.Toggle("c2")

	require.NoError(t, v.Delete(context.Background(), "c1"))
	assert.Error(t, v.Delete(context.Background(), "c2"))
	assert.Equal(t, []string{"c2"}, v.Selected())
}

func TestNotify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"nil", nil, "x", ""},
		{"server message", &gateway.Error{StatusCode: 400, Message: "Brand is required"}, "Failed", "Brand is required"},
		{"api error without message", &gateway.Error{StatusCode: 500}, "Failed", "Failed"},
		{"not found", &NotFoundError{What: "Car"}, "Failed", "Car not found"},
		{"not found wrapping 404", notFound(&gateway.Error{StatusCode: 404, Message: "No car with that id"}, "Car"), "Failed to load car", "Car not found"},
		{"wrapped not found", fmt.Errorf("open editor: %w", &NotFoundError{What: "User"}), "Failed", "User not found"},
		{"local error", errors.New("boom"), "Failed", "Failed: boom"},
		{"local error without fallback", errors.New("boom"), "", "boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Notify(tt.err, tt.fallback))
		})
	}
}
