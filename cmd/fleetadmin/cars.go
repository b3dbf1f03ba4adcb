package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ukydev/fleet-admin/internal/carform"
	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/handlers"
	"github.com/ukydev/fleet-admin/internal/listing"
	"github.com/ukydev/fleet-admin/internal/models"
)

func carsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "cars",
		Short:             "Manage the fleet",
		PersistentPreRunE: adminOnly(a),
	}
	cmd.AddCommand(carsListCmd(a), carsGetCmd(a), carsAddCmd(a), carsEditCmd(a), carsDeleteCmd(a))
	return cmd
}

func carsListCmd(a *app) *cobra.Command {
	var (
		search  string
		sortKey string
		filters = listing.DefaultFilters()
		watch   bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cars with local filters and statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := listing.ParseSortKey(sortKey)
			if err != nil {
				return err
			}

			v := handlers.NewCarsView(a.client, a.cfg.SearchDebounce, a.log)
			defer v.Close()
			v.SetFilters(filters)
			v.SetSort(key)

			if search != "" {
				err = v.Search(cmd.Context(), search)
			} else {
				err = v.Load(cmd.Context())
			}
			if err != nil {
				return errors.New(handlers.Notify(err, handlers.MsgLoadCarsFailed))
			}

			out := cmd.OutOrStdout()
			printCars(out, v)
			if !watch {
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			v.OnChange(func(s gateway.State[models.CarList]) {
				if s.Err != nil {
					fmt.Fprintln(out, handlers.Notify(s.Err, handlers.MsgLoadCarsFailed))
					return
				}
				fmt.Fprintln(out)
				printCars(out, v)
			})
			<-ctx.Done()
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&search, "search", "s", "", "server-side search term")
	f.StringVar(&sortKey, "sort", string(listing.SortNameAsc), "sort key: name-asc, name-desc, price-asc, price-desc, year-new, year-old")
	f.StringVar(&filters.Category, "category", listing.All, "category filter")
	f.StringVar(&filters.Availability, "availability", listing.All, "availability filter: all, available, unavailable")
	f.StringVar(&filters.City, "city", listing.All, "city filter")
	f.StringVar(&filters.FuelType, "fuel", listing.All, "fuel type filter")
	f.StringVar(&filters.Transmission, "transmission", listing.All, "transmission filter")
	f.BoolVarP(&watch, "watch", "w", false, "keep running and reprint on every change")
	return cmd
}

func printCars(out io.Writer, v *handlers.CarsView) {
	cars := v.Cars()
	stats := v.Stats()

	tw := newTable(out, "ID", "CAR", "YEAR", "CATEGORY", "CITY", "PER DAY", "STATUS")
	for i := range cars {
		c := &cars[i]
		status := "unavailable"
		if c.Available() {
			status = "available"
		}
		row(tw, c.ID.Hex(), c.DisplayName(), c.Year, c.Category, c.City, money(c.DailyRate()), status)
	}
	_ = tw.Flush()

	fmt.Fprintf(out, "\nShowing %d of %d cars  |  available %d  unavailable %d  |  avg %s/day\n",
		len(cars), stats.Total, stats.Available, stats.Unavailable, money(float64(stats.AvgPrice)))
	if len(stats.Categories) > 0 {
		parts := make([]string, 0, len(stats.Categories))
		for _, c := range v.Options().Categories {
			parts = append(parts, fmt.Sprintf("%s %d", c, stats.Categories[models.Category(c)]))
		}
		fmt.Fprintf(out, "Categories: %s\n", strings.Join(parts, ", "))
	}
}

func carsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			car, err := handlers.CarDetail(cmd.Context(), a.client, args[0])
			if err != nil {
				return errors.New(handlers.Notify(err, "Failed to load car"))
			}
			printCar(cmd.OutOrStdout(), &car)
			return nil
		},
	}
}

func printCar(out io.Writer, c *models.Car) {
	tw := newTable(out, "FIELD", "VALUE")
	field(tw, "ID", c.ID.Hex())
	field(tw, "Name", c.DisplayName())
	field(tw, "Variant", c.Variant)
	field(tw, "Year", c.Year)
	field(tw, "Registration", c.RegistrationNumber)
	field(tw, "Category", c.Category)
	field(tw, "Fuel", c.FuelType)
	field(tw, "Transmission", c.Transmission)
	field(tw, "Seats", c.Seats)
	field(tw, "Location", strings.Trim(c.Area+", "+c.City, ", "))
	field(tw, "Per day", money(c.DailyRate()))
	if c.Pricing != nil {
		field(tw, "Per hour", optMoney(c.Pricing.PerHour))
	}
	field(tw, "Deposit", optMoney(c.SecurityDeposit))
	field(tw, "Available", yesNo(c.Available()))
	field(tw, "Condition", c.Condition)
	field(tw, "Featured", yesNo(c.IsFeatured))
	field(tw, "Features", strings.Join(c.Features, ", "))
	field(tw, "Thumbnail", c.Thumbnail)
	for _, img := range c.Images {
		field(tw, "Image "+img.ID, img.URL)
	}
	for i, p := range c.PickupLocations {
		field(tw, fmt.Sprintf("Pickup %d", i+1), pointLabel(p))
	}
	for i, p := range c.DropLocations {
		field(tw, fmt.Sprintf("Drop %d", i+1), pointLabel(p))
	}
	_ = tw.Flush()
}

func pointLabel(p models.PickupPoint) string {
	return strings.Trim(p.Name+" - "+p.Address, " -")
}

// carFlags are the edits shared by add and edit.
type carFlags struct {
	sets          []string
	thumbnail     string
	images        []string
	deleteImages  []string
	pickups       []string
	drops         []string
	removePickups []string
	removeDrops   []string
	sameDrop      bool
}

func (cf *carFlags) register(cmd *cobra.Command, edit bool) {
	f := cmd.Flags()
	f.StringArrayVar(&cf.sets, "set", nil, "field=value, e.g. brand=Maruti or pricing.perDay=1500 (repeatable)")
	f.StringVar(&cf.thumbnail, "thumbnail", "", "thumbnail image file")
	f.StringArrayVar(&cf.images, "image", nil, "gallery image file (repeatable)")
	f.StringArrayVar(&cf.pickups, "pickup", nil, "pickup point as name|address[|lat|lng] (repeatable)")
	f.StringArrayVar(&cf.drops, "drop", nil, "drop point as name|address[|lat|lng] (repeatable)")
	f.BoolVar(&cf.sameDrop, "same-drop", false, "drop points mirror pickup points")
	if edit {
		f.StringArrayVar(&cf.deleteImages, "delete-image", nil, "id of a gallery image to delete (repeatable)")
		f.StringArrayVar(&cf.removePickups, "remove-pickup", nil, "number of a pickup point to remove (repeatable)")
		f.StringArrayVar(&cf.removeDrops, "remove-drop", nil, "number of a drop point to remove (repeatable)")
	}
}

func (cf *carFlags) apply(f *carform.Form) error {
	for _, s := range cf.sets {
		path, value, ok := strings.Cut(s, "=")
		if !ok {
			return fmt.Errorf("--set %q: expected field=value", s)
		}
		if err := f.Draft.Set(strings.TrimSpace(path), value); err != nil {
			return err
		}
	}

	if cf.thumbnail != "" {
		u, err := readUpload(cf.thumbnail)
		if err != nil {
			return err
		}
		if err := f.Thumbnail.Set(u); err != nil {
			return err
		}
	}
	if len(cf.images) > 0 {
		uploads := make([]carform.Upload, 0, len(cf.images))
		for _, path := range cf.images {
			u, err := readUpload(path)
			if err != nil {
				return err
			}
			uploads = append(uploads, u)
		}
		if err := f.Gallery.Add(uploads...); err != nil {
			return err
		}
	}
	for _, id := range cf.deleteImages {
		if err := f.Gallery.MarkForDeletion(id); err != nil {
			return err
		}
	}

	if err := removePoints(f.Locations, carform.Pickup, cf.removePickups); err != nil {
		return err
	}
	if err := addPoints(f.Locations, carform.Pickup, cf.pickups); err != nil {
		return err
	}
	if cf.sameDrop {
		f.Locations.SetDropSameAsPickup(true)
		if len(cf.drops) > 0 || len(cf.removeDrops) > 0 {
			return carform.ErrDropLocked
		}
		return nil
	}
	if err := removePoints(f.Locations, carform.Drop, cf.removeDrops); err != nil {
		return err
	}
	return addPoints(f.Locations, carform.Drop, cf.drops)
}

func readUpload(path string) (carform.Upload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return carform.Upload{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return carform.Upload{Name: filepath.Base(path), Data: data}, nil
}

// removePoints removes entries by 1-based number, highest first so earlier
// numbers stay valid.
func removePoints(l *carform.Locations, kind carform.Kind, numbers []string) error {
	idx := make([]int, 0, len(numbers))
	for _, n := range numbers {
		i, err := carform.ParseIndex(n)
		if err != nil {
			return err
		}
		idx = append(idx, i)
	}
	for len(idx) > 0 {
		maxAt := 0
		for j := range idx {
			if idx[j] > idx[maxAt] {
				maxAt = j
			}
		}
		if err := l.Remove(kind, idx[maxAt]); err != nil {
			return err
		}
		idx = append(idx[:maxAt], idx[maxAt+1:]...)
	}
	return nil
}

func addPoints(l *carform.Locations, kind carform.Kind, values []string) error {
	for _, v := range values {
		parts := strings.Split(v, "|")
		if len(parts) != 2 && len(parts) != 4 {
			return fmt.Errorf("location %q: expected name|address[|lat|lng]", v)
		}
		if err := l.Add(kind); err != nil {
			return err
		}
		i := len(l.Pickup()) - 1
		if kind == carform.Drop {
			i = len(l.Drop()) - 1
		}
		keys := []string{"name", "address", "coordinates.lat", "coordinates.lng"}
		for j, value := range parts {
			if err := l.Update(kind, i, keys[j], strings.TrimSpace(value)); err != nil {
				return err
			}
		}
	}
	return nil
}

func carsAddCmd(a *app) *cobra.Command {
	var cf carFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a car",
		RunE: func(cmd *cobra.Command, args []string) error {
			previews, err := a.previews()
			if err != nil {
				return err
			}
			e := handlers.NewCarAdder(a.client, previews, a.log)
			defer e.Close()
			return submitCar(cmd.Context(), cmd.OutOrStdout(), e, &cf)
		},
	}
	cf.register(cmd, false)
	return cmd
}

func carsEditCmd(a *app) *cobra.Command {
	var cf carFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			previews, err := a.previews()
			if err != nil {
				return err
			}
			e, err := handlers.OpenCarEditor(cmd.Context(), a.client, args[0], previews, a.log)
			if err != nil {
				return errors.New(handlers.Notify(err, "Failed to load car"))
			}
			defer e.Close()
			return submitCar(cmd.Context(), cmd.OutOrStdout(), e, &cf)
		},
	}
	cf.register(cmd, true)
	return cmd
}

func submitCar(ctx context.Context, out io.Writer, e *handlers.CarEditor, cf *carFlags) error {
	if err := cf.apply(e.Form()); err != nil {
		return err
	}
	car, msg, err := e.Submit(ctx)
	if err != nil {
		return errors.New(msg)
	}
	fmt.Fprintln(out, msg)
	if car != nil && !car.ID.IsZero() {
		fmt.Fprintf(out, "ID: %s\n", car.ID.Hex())
	}
	return nil
}

func carsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete one or more cars",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := handlers.NewCarsView(a.client, a.cfg.SearchDebounce, a.log)
			defer v.Close()

			if len(args) == 1 {
				if err := v.Delete(cmd.Context(), args[0]); err != nil {
					return errors.New(handlers.Notify(err, handlers.MsgDeleteCarFailed))
				}
				fmt.Fprintln(cmd.OutOrStdout(), handlers.MsgCarDeleted)
				return nil
			}

			for _, id := range args {
				v.Toggle(id)
			}
			n, err := v.BulkDelete(cmd.Context())
			if n > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), handlers.BulkDeleted(n))
			}
			return err
		},
	}
}
