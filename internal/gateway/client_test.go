package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api", srv.Client(), cache.New(nil, nil, nil), nil), srv
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestClient_ListCarsIsCachedUntilInvalidated(t *testing.T) {
	var hits int32
	id := primitive.NewObjectID()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/cars":
			atomic.AddInt32(&hits, 1)
			assert.Equal(t, "swift", r.URL.Query().Get("search"))
			writeJSON(w, http.StatusOK, models.CarList{Data: []models.Car{{ID: id, Brand: "Maruti", Model: "Swift"}}})
		case r.Method == http.MethodDelete && r.URL.Path == "/api/cars/"+id.Hex():
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	list, err := client.ListCars(ctx, PageQuery{Search: "swift"})
	require.NoError(t, err)
	require.Len(t, list.Data, 1)
	assert.Equal(t, id, list.Data[0].ID)

	_, err = client.ListCars(ctx, PageQuery{Search: "swift"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	require.NoError(t, client.DeleteCar(ctx, id.Hex()))

	_, err = client.ListCars(ctx, PageQuery{Search: "swift"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestClient_InFlightReadDoesNotOutliveDelete(t *testing.T) {
	id := primitive.NewObjectID()
	var (
		mu      sync.Mutex
		deleted bool
		calls   int32
	)
	started := make(chan struct{})
	release := make(chan struct{})
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/cars":
			mu.Lock()
			list := models.CarList{Data: []models.Car{}}
			if !deleted {
				list = models.CarList{Data: []models.Car{{ID: id, Brand: "Maruti", Model: "Swift"}}, Total: 1}
			}
			mu.Unlock()
			if atomic.AddInt32(&calls, 1) == 1 {
				close(started)
				<-release
			}
			writeJSON(w, http.StatusOK, list)
		case r.Method == http.MethodDelete && r.URL.Path == "/api/cars/"+id.Hex():
			mu.Lock()
			deleted = true
			mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	slow := make(chan models.CarList, 1)
	go func() {
		list, err := client.ListCars(ctx, PageQuery{})
		assert.NoError(t, err)
		slow <- list
	}()
	<-started

	require.NoError(t, client.DeleteCar(ctx, id.Hex()))
	fresh, err := client.ListCars(ctx, PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, fresh.Data)

	close(release)
	assert.Len(t, (<-slow).Data, 1)

	next, err := client.ListCars(ctx, PageQuery{})
	require.NoError(t, err)
	assert.Empty(t, next.Data)
}

func TestClient_GetCarUnwrapsEnvelope(t *testing.T) {
	id := primitive.NewObjectID()
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/cars/"+id.Hex(), r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"_id": id.Hex(), "brand": "Honda", "model": "City",
				"pricing": map[string]interface{}{"perDay": 2200},
			},
		})
	})

	car, err := client.GetCar(context.Background(), id.Hex())
	require.NoError(t, err)
	assert.Equal(t, "Honda City", car.DisplayName())
	assert.Equal(t, 2200.0, car.DailyRate())
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		message  string
		notFound bool
	}{
		{"error field", http.StatusBadRequest, `{"error":"Registration number exists"}`, "Registration number exists", false},
		{"message field", http.StatusNotFound, `{"message":"Car not found"}`, "Car not found", true},
		{"error wins over message", http.StatusConflict, `{"error":"a","message":"b"}`, "a", false},
		{"plain text", http.StatusBadGateway, `upstream down`, "fallback", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			_, err := client.GetCar(context.Background(), "abc")
			require.Error(t, err)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.message, Message(err, "fallback"))
			assert.Equal(t, tt.notFound, IsNotFound(err))
		})
	}
}

func TestClient_MalformedBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"data": [`)
	})

	_, err := client.ListUsers(context.Background(), PageQuery{Page: 1, Limit: 10})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusOK, apiErr.StatusCode)
	assert.Error(t, apiErr.Unwrap())
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := NewClient(srv.URL, &http.Client{Timeout: time.Second}, nil, nil)

	_, err := client.ListBookings(context.Background(), PageQuery{})
	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, "Failed to load", Message(err, "Failed to load"))
}

func TestClient_Login(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/users/login", r.URL.Path)

		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "admin@example.com", req.Email)

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"data": map[string]interface{}{
				"token": "tok",
				"user":  map[string]interface{}{"_id": primitive.NewObjectID().Hex(), "name": "Asha", "role": "admin"},
			},
		})
	})

	res, err := client.Login(context.Background(), models.LoginRequest{Email: "admin@example.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Equal(t, models.RoleAdmin, res.User.Role)
}

func TestClient_UserMutationsInvalidateDetailAndList(t *testing.T) {
	id := primitive.NewObjectID().Hex()
	var listHits, detailHits int32
	var bodies []map[string]interface{}

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/users":
			atomic.AddInt32(&listHits, 1)
			writeJSON(w, http.StatusOK, models.UserPage{Total: 0, TotalPages: 1})
		case r.Method == http.MethodGet && r.URL.Path == "/api/users/"+id:
			atomic.AddInt32(&detailHits, 1)
			writeJSON(w, http.StatusOK, map[string]interface{}{"data": map[string]interface{}{"_id": id, "name": "Ravi"}})
		case r.Method == http.MethodPut:
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			body["path"] = r.URL.Path
			bodies = append(bodies, body)
			writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	load := func() {
		_, err := client.ListUsers(ctx, PageQuery{Page: 1, Limit: 10})
		require.NoError(t, err)
		_, err = client.GetUser(ctx, id)
		require.NoError(t, err)
	}

	load()
	load()
	assert.Equal(t, int32(1), listHits)
	assert.Equal(t, int32(1), detailHits)

	require.NoError(t, client.UpdateUserStatus(ctx, id, false))
	load()
	assert.Equal(t, int32(2), listHits)
	assert.Equal(t, int32(2), detailHits)

	require.NoError(t, client.VerifyUserDocument(ctx, id, DocumentVerification{
		Type: models.DocumentAadhaar, Status: models.VerificationRejected, RejectionReason: "blurry",
	}))
	require.NoError(t, client.SetGlobalVerification(ctx, id, true))

	require.Len(t, bodies, 3)
	assert.Equal(t, "/api/users/"+id+"/status", bodies[0]["path"])
	assert.Equal(t, false, bodies[0]["isActive"])
	assert.Equal(t, "/api/users/"+id+"/verify-document", bodies[1]["path"])
	assert.Equal(t, "aadhaar", bodies[1]["type"])
	assert.Equal(t, "rejected", bodies[1]["status"])
	assert.Equal(t, "blurry", bodies[1]["rejectionReason"])
	assert.Equal(t, "global", bodies[2]["type"])
	assert.Equal(t, true, bodies[2]["status"])
}

func TestClient_CreateCarPostsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/cars/add-with-images", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))

		assert.Equal(t, "Maruti", r.FormValue("brand"))
		assert.Equal(t, "1500", r.FormValue("pricing.perDay"))
		assert.Len(t, r.MultipartForm.File["images"], 2)
		require.Len(t, r.MultipartForm.File["thumbnail"], 1)
		assert.Equal(t, "thumb.jpg", r.MultipartForm.File["thumbnail"][0].Filename)

		writeJSON(w, http.StatusCreated, map[string]interface{}{"data": map[string]interface{}{"brand": "Maruti"}})
	})

	form := NewCarForm()
	form.Add("brand", "Maruti")
	form.Add("pricing.perDay", "1500")
	form.AddFile(FormFile{Field: "thumbnail", Filename: "thumb.jpg", Data: []byte("jpg")})
	form.AddFile(FormFile{Field: "images", Filename: "a.jpg", Data: []byte("a")})
	form.AddFile(FormFile{Field: "images", Filename: "b.jpg", Data: []byte("b")})

	car, err := client.CreateCar(context.Background(), form)
	require.NoError(t, err)
	require.NotNil(t, car)
	assert.Equal(t, "Maruti", car.Brand)
}

func TestClient_DashboardStatsSendsRange(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/admin/stats", r.URL.Path)
		assert.Equal(t, "2025-03-01T00:00:00.000Z", r.URL.Query().Get("startDate"))
		assert.Equal(t, "2025-03-31T23:59:59.999Z", r.URL.Query().Get("endDate"))
		writeJSON(w, http.StatusOK, map[string]interface{}{"data": models.DashboardStats{TotalUsers: 12, TotalRevenue: 4500}})
	})

	stats, err := client.DashboardStats(context.Background(), DateRange{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 31, 23, 59, 59, 999_000_000, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalUsers)
	assert.Equal(t, 4500.0, stats.TotalRevenue)
}
