package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ukydev/fleet-admin/internal/cache"
	"github.com/ukydev/fleet-admin/internal/models"
)

// CarTags are the tags provided by the car list.
func CarTags() []cache.Tag { return []cache.Tag{cache.TypeTag(cache.TypeCar)} }

// CarDetailTags are the tags provided by a single car.
func CarDetailTags(id string) []cache.Tag { return []cache.Tag{cache.IDTag(cache.TypeCar, id)} }

// ListCars returns the fleet matching the free-text search.
func (c *Client) ListCars(ctx context.Context, q PageQuery) (models.CarList, error) {
	key := cache.QueryKey("cars", q.params())
	return cached(ctx, c, key, CarTags(), func(ctx context.Context) (models.CarList, error) {
		var out models.CarList
		err := c.do(ctx, request{method: http.MethodGet, path: "/cars", query: q.values()}, &out)
		return out, err
	})
}

// GetCar returns one car.
func (c *Client) GetCar(ctx context.Context, id string) (models.Car, error) {
	return cached(ctx, c, "car:"+id, CarDetailTags(id), func(ctx context.Context) (models.Car, error) {
		var out envelope[models.Car]
		err := c.do(ctx, request{method: http.MethodGet, path: "/cars/" + url.PathEscape(id)}, &out)
		return out.Data, err
	})
}

// CreateCar posts a new listing with its images. The returned car is nil
// when the API answers without a body.
func (c *Client) CreateCar(ctx context.Context, form *CarForm) (*models.Car, error) {
	return c.sendCar(ctx, http.MethodPost, "/cars/add-with-images", form)
}

// UpdateCar replaces the listing's fields, adding and removing gallery images.
func (c *Client) UpdateCar(ctx context.Context, id string, form *CarForm) (*models.Car, error) {
	return c.sendCar(ctx, http.MethodPut, "/cars/"+url.PathEscape(id), form)
}

// DeleteCar removes a listing.
func (c *Client) DeleteCar(ctx context.Context, id string) error {
	if err := c.do(ctx, request{method: http.MethodDelete, path: "/cars/" + url.PathEscape(id)}, nil); err != nil {
		return err
	}
	c.cache.Invalidate(ctx, cache.TypeTag(cache.TypeCar))
	return nil
}

func (c *Client) sendCar(ctx context.Context, method, path string, form *CarForm) (*models.Car, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, &Error{Err: err}
	}

	var out envelope[*models.Car]
	if err := c.do(ctx, request{method: method, path: path, body: body, contentType: contentType}, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, cache.TypeTag(cache.TypeCar))
	return out.Data, nil
}
