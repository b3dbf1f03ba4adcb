package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ukydev/fleet-admin/internal/debounce"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/listing"
	"github.com/ukydev/fleet-admin/internal/models"
)

// Notification texts of the fleet screen.
const (
	MsgLoadCarsFailed   = "Failed to load cars"
	MsgCarDeleted       = "Car deleted successfully"
	MsgDeleteCarFailed  = "Failed to delete car"
	MsgBulkDeleteFailed = "Failed to delete some cars"
)

const bulkDeleteConcurrency = 8

// CarsView is the fleet screen: server search, then local filters, sort,
// statistics and a selection for bulk actions.
type CarsView struct {
	svc      CarService
	query    *gateway.Query[models.CarList]
	debounce *debounce.Debouncer
	log      logrus.FieldLogger

	mu       sync.Mutex
	search   string
	filters  listing.Filters
	sortKey  listing.SortKey
	selected []string
}

// NewCarsView creates the view; Load starts it.
func NewCarsView(svc CarService, searchDelay time.Duration, log logrus.FieldLogger) *CarsView {
	if log == nil {
		log = logrus.StandardLogger()
	}
	v := &CarsView{
		svc:      svc,
		debounce: debounce.New(searchDelay),
		log:      log.WithField("view", "cars"),
		filters:  listing.DefaultFilters(),
		sortKey:  listing.SortNameAsc,
	}
	v.query = gateway.NewQuery(svc.Bus(), gateway.CarTags(), v.fetcher(""))
	return v
}

func (v *CarsView) fetcher(search string) gateway.Fetcher[models.CarList] {
	return func(ctx context.Context) (models.CarList, error) {
		return v.svc.ListCars(ctx, gateway.PageQuery{Search: search})
	}
}

// Load fetches the fleet and keeps it fresh on invalidation.
func (v *CarsView) Load(ctx context.Context) error {
	state := v.query.Start(ctx)
	if state.Err != nil {
		v.log.WithError(state.Err).Warn("Failed to load cars")
	}
	return state.Err
}

// Close stops the view's live query and any pending search.
func (v *CarsView) Close() {
	v.debounce.Stop()
	v.query.Close()
}

// Type records a keystroke in the search box. The query runs once typing
// pauses.
func (v *CarsView) Type(term string) {
	v.debounce.Call(func() {
		if err := v.Search(context.Background(), term); err != nil {
			v.log.WithError(err).Warn("Search failed")
		}
	})
}

// Search runs the server-side search immediately.
func (v *CarsView) Search(ctx context.Context, term string) error {
	v.mu.Lock()
	v.search = term
	v.mu.Unlock()

	v.query.Reset(gateway.CarTags(), v.fetcher(term))
	return v.query.Refetch(ctx).Err
}

// SearchTerm is the term of the current query.
func (v *CarsView) SearchTerm() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.search
}

// OnChange calls fn whenever a fetch of the list completes.
func (v *CarsView) OnChange(fn func(gateway.State[models.CarList])) {
	v.query.Observe(func(s gateway.State[models.CarList]) {
		if !s.Loading {
			fn(s)
		}
	})
}

// State is the raw query state.
func (v *CarsView) State() gateway.State[models.CarList] { return v.query.State() }

// SetFilters replaces the filter set.
func (v *CarsView) SetFilters(f listing.Filters) {
	v.mu.Lock()
	v.filters = f
	v.mu.Unlock()
}

// SetSort replaces the sort key.
func (v *CarsView) SetSort(k listing.SortKey) {
	v.mu.Lock()
	v.sortKey = k
	v.mu.Unlock()
}

// ResetFilters restores every filter and the default sort.
func (v *CarsView) ResetFilters() {
	v.mu.Lock()
	v.filters = listing.DefaultFilters()
	v.sortKey = listing.SortNameAsc
	v.mu.Unlock()
}

func (v *CarsView) raw() []models.Car { return v.query.State().Data.Data }

// Cars is the rendered list.
func (v *CarsView) Cars() []models.Car {
	v.mu.Lock()
	f, k := v.filters, v.sortKey
	v.mu.Unlock()
	return listing.Apply(v.raw(), f, k)
}

// Stats summarises the fetched fleet.
func (v *CarsView) Stats() listing.Stats { return listing.ComputeStats(v.raw()) }

// Options lists the values each filter can take.
func (v *CarsView) Options() listing.FilterOptions { return listing.Options(v.raw()) }

// Toggle adds or removes id from the selection.
func (v *CarsView) Toggle(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i, s := range v.selected {
		if s == id {
			v.selected = append(v.selected[:i:i], v.selected[i+1:]...)
			return
		}
	}
	v.selected = append(v.selected, id)
}

// ToggleAll selects every rendered car, or clears the selection when it
// already covers them all.
func (v *CarsView) ToggleAll() {
	cars := v.Cars()
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.selected) == len(cars) {
		v.selected = nil
		return
	}
	v.selected = make([]string, len(cars))
	for i := range cars {
		v.selected[i] = cars[i].ID.Hex()
	}
}

// ClearSelection empties the selection.
func (v *CarsView) ClearSelection() {
	v.mu.Lock()
	v.selected = nil
	v.mu.Unlock()
}

// Selected returns the selected ids in selection order.
func (v *CarsView) Selected() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.selected...)
}

// Delete removes one car and drops it from the selection.
func (v *CarsView) Delete(ctx context.Context, id string) error {
	if err := v.svc.DeleteCar(ctx, id); err != nil {
		v.log.WithError(err).WithField("car_id", id).Warn("Failed to delete car")
		return err
	}
	v.mu.Lock()
	v.selected = without(v.selected, map[string]bool{id: true})
	v.mu.Unlock()
	return nil
}

// ItemError is the failure of one delete in a bulk operation.
type ItemError struct {
	ID  string
	Err error
}

// BulkDeleteError reports the deletes that failed; the rest succeeded.
type BulkDeleteError struct {
	Requested int
	Failed    []ItemError
}

func (e *BulkDeleteError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = fmt.Sprintf("%s: %s", f.ID, gateway.Message(f.Err, f.Err.Error()))
	}
	return fmt.Sprintf("%s (%d of %d): %s", MsgBulkDeleteFailed, len(e.Failed), e.Requested, strings.Join(parts, "; "))
}

// BulkDelete deletes every selected car concurrently and waits for all of
// them. Deleted ids leave the selection; failed ids stay selected and are
// reported in a *BulkDeleteError.
func (v *CarsView) BulkDelete(ctx context.Context) (int, error) {
	ids := v.Selected()
	if len(ids) == 0 {
		return 0, nil
	}

	errs := make([]error, len(ids))
	var g errgroup.Group
	g.SetLimit(bulkDeleteConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			errs[i] = v.svc.DeleteCar(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	done := make(map[string]bool)
	var failed []ItemError
	for i, id := range ids {
		if errs[i] != nil {
			failed = append(failed, ItemError{ID: id, Err: errs[i]})
			continue
		}
		done[id] = true
	}

	v.mu.Lock()
	v.selected = without(v.selected, done)
	v.mu.Unlock()

	v.log.WithFields(logrus.Fields{
		"requested": len(ids),
		"failed":    len(failed),
	}).Info("Bulk delete finished")

	if len(failed) > 0 {
		sort.SliceStable(failed, func(a, b int) bool { return failed[a].ID < failed[b].ID })
		return len(done), &BulkDeleteError{Requested: len(ids), Failed: failed}
	}
	return len(done), nil
}

// BulkDeleted is the notification for n deleted cars.
func BulkDeleted(n int) string { return fmt.Sprintf("%d cars deleted successfully", n) }

func without(ids []string, drop map[string]bool) []string {
	var out []string
	for _, id := range ids {
		if !drop[id] {
			out = append(out, id)
		}
	}
	return out
}
