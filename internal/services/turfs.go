// This file covers turfs (bookable venues) and the hourly bookings made against them.
//
// A turf is booked one slot at a time: a (turf, date, slot) triple is held by at most
// one confirmed booking. Cancelling keeps the row for history but frees the slot, so
// the same hour can be booked again.

package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
)

const defaultTurfEmoji = "⚽" // Used when an admin adds a turf without picking an emoji

// TurfService manages venues and their hourly bookings.
type TurfService struct {
	db *gorm.DB
}

// NewTurfService returns a TurfService backed by db.
func NewTurfService(db *gorm.DB) *TurfService {
	return &TurfService{db: db}
}

// ListTurfs returns every turf in id order.
func (s *TurfService) ListTurfs(ctx context.Context) ([]models.Turf, error) {
	turfs := []models.Turf{}
	if err := s.db.WithContext(ctx).Order("id").Find(&turfs).Error; err != nil {
		return nil, internal("list turfs", err)
	}
	return turfs, nil
}

// GetTurf returns one turf by id.
func (s *TurfService) GetTurf(ctx context.Context, id int64) (*models.Turf, error) {
	return loadTurf(s.db.WithContext(ctx), id)
}

// loadTurf fetches a turf by primary key. db may be a transaction, which is how
// CreateBooking checks the turf inside its own transaction.
func loadTurf(db *gorm.DB, id int64) (*models.Turf, error) {
	var turf models.Turf
	if err := db.First(&turf, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("Turf not found")
		}
		return nil, internal("load turf", err)
	}
	return &turf, nil
}

// TurfInput is the JSON body of POST /api/turfs.
type TurfInput struct {
	Name         string `json:"name"`           // Required
	Location     string `json:"location"`       // Required
	PricePerHour int    `json:"price_per_hour"` // Required, > 0
	Formats      string `json:"formats"`        // Optional, defaults to "5v5"
	Emoji        string `json:"emoji"`          // Optional, defaults to a football
	Description  string `json:"description"`
}

// CreateTurf adds a venue. Admin only (enforced by the route).
func (s *TurfService) CreateTurf(ctx context.Context, in TurfInput) (*models.Turf, error) {
	// Validate required fields first; a zero price counts as missing.
	name, location := strings.TrimSpace(in.Name), strings.TrimSpace(in.Location)
	if name == "" || location == "" || in.PricePerHour == 0 {
		return nil, validation("name, location, price_per_hour required")
	}
	if in.PricePerHour < 0 {
		return nil, validation("price_per_hour must be positive")
	}

	// Fill in the optional fields' defaults before inserting
	turf := models.Turf{
		Name:         name,
		Location:     location,
		PricePerHour: in.PricePerHour,
		Formats:      orDefault(in.Formats, "5v5"),
		Emoji:        orDefault(in.Emoji, defaultTurfEmoji),
		Description:  in.Description,
	}
	if err := s.db.WithContext(ctx).Create(&turf).Error; err != nil {
		return nil, internal("create turf", err)
	}
	return &turf, nil
}

// TurfPatch is the JSON body of PUT /api/turfs/:id. Nil or empty fields are left unchanged.
type TurfPatch struct {
	Name         *string `json:"name"`
	Location     *string `json:"location"`
	PricePerHour *int    `json:"price_per_hour"`
	Formats      *string `json:"formats"`
	Emoji        *string `json:"emoji"`
	Description  *string `json:"description"`
}

// UpdateTurf edits a venue. Admin only (enforced by the route).
func (s *TurfService) UpdateTurf(ctx context.Context, id int64, in TurfPatch) (*models.Turf, error) {
	// 404 before anything else, so a bad patch on a missing turf reports the missing turf
	db := s.db.WithContext(ctx)
	if _, err := loadTurf(db, id); err != nil {
		return nil, err
	}

	// Collect only the columns the client actually sent. A map (rather than a struct)
	// makes GORM write exactly these columns.
	updates := map[string]any{}
	for column, v := range map[string]*string{
		"name":        in.Name,
		"location":    in.Location,
		"formats":     in.Formats,
		"emoji":       in.Emoji,
		"description": in.Description,
	} {
		if v != nil && *v != "" {
			updates[column] = *v
		}
	}
	if in.PricePerHour != nil {
		if *in.PricePerHour <= 0 {
			return nil, validation("price_per_hour must be positive")
		}
		updates["price_per_hour"] = *in.PricePerHour
	}

	if len(updates) > 0 {
		if err := db.Model(&models.Turf{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, internal("update turf", err)
		}
	}
	return loadTurf(db, id)
}

// DeleteTurf removes a venue. Existing bookings keep their turf_id.
// Admin only (enforced by the route).
func (s *TurfService) DeleteTurf(ctx context.Context, id int64) error {
	res := s.db.WithContext(ctx).Delete(&models.Turf{}, id)
	if res.Error != nil {
		return internal("delete turf", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Turf not found")
	}
	return nil
}

// SlotAvailability is one hourly label and whether it can still be booked.
type SlotAvailability struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// TurfSlots is the response of GET /api/turfs/:id/slots.
type TurfSlots struct {
	Turf  models.Turf        `json:"turf"`
	Date  string             `json:"date"`
	Slots []SlotAvailability `json:"slots"`
}

// Slots lists the bookable hours of a turf on date. A slot is unavailable while a
// confirmed booking holds it.
func (s *TurfService) Slots(ctx context.Context, turfID int64, date string) (*TurfSlots, error) {
	db := s.db.WithContext(ctx)
	turf, err := loadTurf(db, turfID)
	if err != nil {
		return nil, err
	}
	if date == "" {
		return nil, validation("date query param required")
	}
	if !validDate(date) {
		return nil, validation("date must be in YYYY-MM-DD format")
	}

	// Pluck fetches just the slot labels of the confirmed bookings that day
	var booked []string
	err = db.Model(&models.Booking{}).
		Where("turf_id = ? AND date = ? AND status = ?", turfID, date, models.BookingStatusConfirmed).
		Pluck("slot", &booked).Error
	if err != nil {
		return nil, internal("load booked slots", err)
	}
	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	// Walk the fixed slot list so the response always has every hour, in order
	slots := make([]SlotAvailability, 0, len(models.Slots))
	for _, slot := range models.Slots {
		slots = append(slots, SlotAvailability{Time: slot, Available: !taken[slot]})
	}
	return &TurfSlots{Turf: *turf, Date: date, Slots: slots}, nil
}

// BookingInput is the JSON body of POST /api/bookings.
type BookingInput struct {
	TurfID int64  `json:"turf_id"`
	Date   string `json:"date"` // "YYYY-MM-DD"
	Slot   string `json:"slot"` // One of models.Slots
}

// BookingView is a booking joined with the names the client displays.
// Which optional fields are filled depends on the listing.
type BookingView struct {
	models.Booking
	TurfName     string `json:"turf_name"`
	TurfLocation string `json:"turf_location,omitempty"`
	TurfEmoji    string `json:"turf_emoji,omitempty"`
	PlayerName   string `json:"player_name,omitempty"`
	PlayerPhone  string `json:"player_phone,omitempty"`
}

// errSlotTaken is returned both by the availability check and when the unique index
// catches a booking that slipped past it.
var errSlotTaken = conflict("This slot is already booked")

// CreateBooking books a slot for playerID. The availability check and the insert share
// one transaction; if a concurrent request wins anyway, the partial unique index on
// confirmed bookings rejects the insert and the caller still gets a conflict.
func (s *TurfService) CreateBooking(ctx context.Context, playerID int64, in BookingInput) (*BookingView, error) {
	// Validate the request shape before touching the database
	if in.TurfID == 0 || in.Date == "" || in.Slot == "" {
		return nil, validation("turf_id, date, and slot are required")
	}
	if !validDate(in.Date) {
		return nil, validation("date must be in YYYY-MM-DD format")
	}
	if !models.IsValidSlot(in.Slot) {
		return nil, validation("slot must be one of: " + strings.Join(models.Slots, ", "))
	}

	booking := models.Booking{
		PlayerID: playerID,
		TurfID:   in.TurfID,
		Date:     in.Date,
		Slot:     in.Slot,
		Status:   models.BookingStatusConfirmed,
	}
	// db.Transaction commits if the callback returns nil and rolls back otherwise.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := loadTurf(tx, in.TurfID); err != nil {
			return err
		}

		// Is a confirmed booking already holding this slot?
		var taken int64
		err := tx.Model(&models.Booking{}).
			Where("turf_id = ? AND date = ? AND slot = ? AND status = ?", in.TurfID, in.Date, in.Slot, models.BookingStatusConfirmed).
			Count(&taken).Error
		if err != nil {
			return err
		}
		if taken > 0 {
			return errSlotTaken
		}
		return tx.Create(&booking).Error
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, errSlotTaken
		}
		return nil, fail("create booking", err)
	}

	// Re-read the booking joined with its turf so the response matches the listings
	var view BookingView
	err = s.db.WithContext(ctx).Raw(`
		SELECT b.*, t.name AS turf_name, t.location AS turf_location, t.emoji AS turf_emoji
		FROM bookings b JOIN turfs t ON b.turf_id = t.id
		WHERE b.id = ?`, booking.ID).Scan(&view).Error
	if err != nil {
		return nil, internal("load booking", err)
	}
	return &view, nil
}

// CancelBooking frees a booked slot. The row is kept with status "cancelled".
// Only the player who booked it or an admin may cancel.
func (s *TurfService) CancelBooking(ctx context.Context, caller Caller, bookingID int64) error {
	db := s.db.WithContext(ctx)

	var booking models.Booking
	if err := db.First(&booking, bookingID).Error; err != nil {
		if isNotFound(err) {
			return notFound("Booking not found")
		}
		return internal("load booking", err)
	}
	if !caller.CanActFor(booking.PlayerID) {
		return forbidden("Not authorized")
	}

	// Soft cancel: the partial unique index only covers confirmed rows, so this frees the slot
	err := db.Model(&models.Booking{}).Where("id = ?", bookingID).
		Update("status", models.BookingStatusCancelled).Error
	if err != nil {
		return internal("cancel booking", err)
	}
	return nil
}

// ListMyBookings returns a player's bookings, latest date first.
func (s *TurfService) ListMyBookings(ctx context.Context, playerID int64) ([]BookingView, error) {
	views := []BookingView{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT b.*, t.name AS turf_name, t.location AS turf_location, t.emoji AS turf_emoji
		FROM bookings b JOIN turfs t ON b.turf_id = t.id
		WHERE b.player_id = ?
		ORDER BY b.date DESC, b.slot DESC, b.id DESC`, playerID).Scan(&views).Error
	if err != nil {
		return nil, internal("list my bookings", err)
	}
	return views, nil
}

// ListAllBookings returns every booking with turf and player details, newest first.
// Admin only (enforced by the route).
func (s *TurfService) ListAllBookings(ctx context.Context) ([]BookingView, error) {
	views := []BookingView{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT b.*, t.name AS turf_name, p.name AS player_name, p.phone AS player_phone
		FROM bookings b
		JOIN turfs t ON b.turf_id = t.id
		JOIN players p ON b.player_id = p.id
		ORDER BY b.created_at DESC, b.id DESC`).Scan(&views).Error
	if err != nil {
		return nil, internal("list all bookings", err)
	}
	return views, nil
}

// orDefault returns def when v is blank.
func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
