package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
)

// AdminService computes dashboard figures.
type AdminService struct {
	db *gorm.DB
}

// NewAdminService returns an AdminService backed by db.
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// Stats is the response of GET /api/admin/stats.
type Stats struct {
	TotalPlayers       int64 `json:"totalPlayers"`  // Admins excluded
	TotalBookings      int64 `json:"totalBookings"` // Confirmed only
	TotalConnections   int64 `json:"totalConnections"`
	PendingConnections int64 `json:"pendingConnections"`
	TotalTurfs         int64 `json:"totalTurfs"`
	TotalEvents        int64 `json:"totalEvents"`
	OpenEvents         int64 `json:"openEvents"`
}

// Stats counts the platform's rows for the admin dashboard. Admin only (enforced by the route).
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	db := s.db.WithContext(ctx)
	var st Stats

	// One COUNT(*) per figure: where each result goes, which table, and an optional
	// condition given as a query string followed by its arguments.
	counts := []struct {
		dst   *int64
		model any
		where []any
	}{
		{&st.TotalPlayers, &models.Player{}, []any{"is_admin = ?", false}},
		{&st.TotalBookings, &models.Booking{}, []any{"status = ?", models.BookingStatusConfirmed}},
		{&st.TotalConnections, &models.Connection{}, nil},
		{&st.PendingConnections, &models.Connection{}, []any{"status = ?", models.ConnectionStatusPending}},
		{&st.TotalTurfs, &models.Turf{}, nil},
		{&st.TotalEvents, &models.Event{}, nil},
		{&st.OpenEvents, &models.Event{}, []any{"status = ?", models.EventStatusOpen}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if len(c.where) > 0 {
			q = q.Where(c.where[0], c.where[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, internal("count stats", err)
		}
	}
	return &st, nil
}
