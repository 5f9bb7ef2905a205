package models

import (
	"sort"
	"strings"
	"time"

	"SecuroHub/pkg/constant"
	"SecuroHub/pkg/errors"
	"SecuroHub/pkg/geo"
	"SecuroHub/pkg/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const SigAlertCreate = "alert.create"

// Alert is a reported incident placed on the hotspot map.
type Alert struct {
	ID           string    `json:"id" gorm:"primaryKey;size:36"`
	Description  string    `json:"description" gorm:"type:text"`
	Location     string    `json:"location" gorm:"size:255"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	Status       string    `json:"status" gorm:"size:16;index"`
	OriginReport string    `json:"originReport,omitempty" gorm:"type:text"`
	Shared       bool      `json:"shared" gorm:"index"`
	Reporter     string    `json:"reporter" gorm:"size:32;index"`
	CreatedAt    time.Time `json:"createdAt" gorm:"index"`

	DistanceKm float64 `json:"distanceKm,omitempty" gorm:"-"`
}

type AlertForm struct {
	Description  string  `json:"description" binding:"required"`
	Location     string  `json:"location"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Status       string  `json:"status"`
	Shared       bool    `json:"shared"`
	OriginReport string  `json:"originReport"`
}

func (a *Alert) Point() geo.Point {
	return geo.Point{Lat: a.Latitude, Lng: a.Longitude}
}

// VisibleTo reports whether viewer may see the alert.
func (a *Alert) VisibleTo(viewer string) bool {
	return a.Shared || a.Reporter == viewer
}

// NormalizeStatus maps status input onto its stored lowercase form; empty
// input means active.
func NormalizeStatus(status string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", constant.AlertStatusActive:
		return constant.AlertStatusActive, nil
	case constant.AlertStatusResolved:
		return constant.AlertStatusResolved, nil
	}
	return "", errors.ErrInvalidStatus
}

// CreateAlert validates the form and stores a new alert reported by reporter.
func CreateAlert(db *gorm.DB, reporter string, form AlertForm) (*Alert, error) {
	description := strings.TrimSpace(form.Description)
	if description == "" {
		return nil, errors.ErrEmptyDescription
	}
	status, err := NormalizeStatus(form.Status)
	if err != nil {
		return nil, err
	}
	p := geo.Point{Lat: form.Latitude, Lng: form.Longitude}
	if !geo.ValidCoordinates(p.Lat, p.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	alert := &Alert{
		ID:           uuid.NewString(),
		Description:  description,
		Location:     strings.TrimSpace(form.Location),
		Latitude:     p.Lat,
		Longitude:    p.Lng,
		Status:       status,
		OriginReport: strings.TrimSpace(form.OriginReport),
		Shared:       form.Shared,
		Reporter:     reporter,
		CreatedAt:    time.Now(),
	}
	if err := db.Create(alert).Error; err != nil {
		return nil, errors.Wrap(err, "create alert")
	}
	util.Sig().Emit(SigAlertCreate, alert)
	return alert, nil
}

// VisibleAlerts returns shared alerts plus the viewer's own, newest first.
func VisibleAlerts(db *gorm.DB, viewer string) ([]Alert, error) {
	var alerts []Alert
	err := db.Where("shared = ? OR reporter = ?", true, viewer).
		Order("created_at DESC").Order("id DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, errors.Wrap(err, "query alerts")
	}
	return alerts, nil
}

// NearbyAlerts returns the visible alerts within radiusKm of center, nearest first.
func NearbyAlerts(db *gorm.DB, viewer string, center geo.Point, radiusKm float64) ([]Alert, error) {
	if !geo.ValidCoordinates(center.Lat, center.Lng) {
		return nil, errors.ErrInvalidCoordinates
	}
	alerts, err := VisibleAlerts(db, viewer)
	if err != nil {
		return nil, err
	}
	nearby := make([]Alert, 0, len(alerts))
	for _, a := range alerts {
		d := geo.HaversineKm(center.Lat, center.Lng, a.Latitude, a.Longitude)
		if d <= radiusKm {
			a.DistanceKm = d
			nearby = append(nearby, a)
		}
	}
	sort.SliceStable(nearby, func(i, j int) bool {
		return nearby[i].DistanceKm < nearby[j].DistanceKm
	})
	return nearby, nil
}

// GetAlertsByIDs loads the given alerts keeping the order of ids and
// dropping the ones viewer cannot see.
func GetAlertsByIDs(db *gorm.DB, viewer string, ids []string) ([]Alert, error) {
	if len(ids) == 0 {
		return []Alert{}, nil
	}
	var found []Alert
	if err := db.Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, errors.Wrap(err, "query alerts")
	}
	byID := make(map[string]Alert, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	alerts := make([]Alert, 0, len(ids))
	for _, id := range ids {
		if a, ok := byID[id]; ok && a.VisibleTo(viewer) {
			alerts = append(alerts, a)
		}
	}
	return alerts, nil
}

func CountAlertsByStatus(db *gorm.DB) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := db.Model(&Alert{}).Select("status, count(*) as total").Group("status").Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := map[string]int64{constant.AlertStatusActive: 0, constant.AlertStatusResolved: 0}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

func AllAlerts(db *gorm.DB) ([]Alert, error) {
	var alerts []Alert
	err := db.Order("created_at ASC").Find(&alerts).Error
	return alerts, err
}
