package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-admin/internal/gateway"
	"github.com/ukydev/fleet-admin/internal/models"
)

// MsgLoadStatsFailed is shown when the dashboard cannot load.
const MsgLoadStatsFailed = "Failed to load dashboard stats"

// Preset names a dashboard date range.
type Preset string

const (
	PresetToday     Preset = "today"
	PresetYesterday Preset = "yesterday"
	PresetLast7     Preset = "last7"
	PresetLast30    Preset = "last30"
	PresetThisMonth Preset = "thisMonth"
	PresetLastMonth Preset = "lastMonth"
	PresetCustom    Preset = "custom"
)

// Presets lists every preset in display order.
var Presets = []Preset{PresetToday, PresetYesterday, PresetLast7, PresetLast30, PresetThisMonth, PresetLastMonth, PresetCustom}

// ParsePreset validates a user-supplied preset.
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown range %q", s)
}

// Range resolves p against now in now's location. Custom has no range of
// its own; ok is false for it.
func (p Preset) Range(now time.Time) (r gateway.DateRange, ok bool) {
	y, m, d := now.Date()
	loc := now.Location()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch p {
	case PresetToday:
		return gateway.DateRange{Start: startOfDay, End: now}, true
	case PresetYesterday:
		start := startOfDay.AddDate(0, 0, -1)
		return gateway.DateRange{Start: start, End: startOfDay.Add(-time.Millisecond)}, true
	case PresetLast7:
		return gateway.DateRange{Start: now.AddDate(0, 0, -7), End: now}, true
	case PresetThisMonth:
		return gateway.DateRange{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: now}, true
	case PresetLastMonth:
		thisMonth := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return gateway.DateRange{Start: thisMonth.AddDate(0, -1, 0), End: thisMonth.Add(-time.Millisecond)}, true
	case PresetCustom:
		return gateway.DateRange{}, false
	default:
		return gateway.DateRange{Start: now.AddDate(0, 0, -30), End: now}, true
	}
}

// Dashboard is the aggregate screen.
type Dashboard struct {
	svc    StatsService
	log    logrus.FieldLogger
	now    func() time.Time
	preset Preset
	rng    gateway.DateRange
}

// NewDashboard starts on the last 30 days.
func NewDashboard(svc StatsService, log logrus.FieldLogger) *Dashboard {
	if log == nil {
		log = logrus.StandardLogger()
	}
	d := &Dashboard{svc: svc, log: log.WithField("view", "dashboard"), now: time.Now}
	d.SelectPreset(PresetLast30)
	return d
}

// Preset is the selected preset.
func (d *Dashboard) Preset() Preset { return d.preset }

// Range is the selected range.
func (d *Dashboard) Range() gateway.DateRange { return d.rng }

// SelectPreset switches the range. Choosing custom keeps the current range
// until SetCustomRange is called.
func (d *Dashboard) SelectPreset(p Preset) {
	d.preset = p
	if r, ok := p.Range(d.now()); ok {
		d.rng = r
	}
}

// SetCustomRange selects an explicit range.
func (d *Dashboard) SetCustomRange(start, end time.Time) error {
	if end.Before(start) {
		return fmt.Errorf("end date %s is before start date %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	d.preset = PresetCustom
	d.rng = gateway.DateRange{Start: start, End: end}
	return nil
}

// Load reads the aggregate for the selected range.
func (d *Dashboard) Load(ctx context.Context) (models.DashboardStats, error) {
	stats, err := d.svc.DashboardStats(ctx, d.rng)
	if err != nil {
		d.log.WithError(err).Warn("Failed to load dashboard stats")
		return models.DashboardStats{}, err
	}
	return stats, nil
}
