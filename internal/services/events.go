// This file handles events: pickup games a player hosts and others join.
//
// An event has a fixed number of slots. The host fills the first one on create, so
// filled_slots starts at 1. Status follows the fill level:
//
//	open ──last slot taken──> full ──someone leaves──> open
//	open | full ──host or admin cancels──> cancelled (terminal)
//
// filled_slots always equals the number of event_players rows for the event. Every
// join and leave changes both inside one transaction.

package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
)

// EventService manages pickup games and their rosters.
type EventService struct {
	db  *gorm.DB
	now func() time.Time // Clock used to hide past events; replaced in tests
}

// NewEventService returns an EventService backed by db.
func NewEventService(db *gorm.DB) *EventService {
	return &EventService{db: db, now: time.Now}
}

// EventInput is the JSON body of POST /api/events.
type EventInput struct {
	TurfID      *int64 `json:"turf_id"`     // Optional venue
	Title       string `json:"title"`       // Required
	Format      string `json:"format"`      // Optional, defaults to "5v5"
	Date        string `json:"date"`        // Required, "YYYY-MM-DD"
	Time        string `json:"time"`        // Required, "HH:MM"
	TotalSlots  int    `json:"total_slots"` // Required, 2..22
	Description string `json:"description"`
}

// RosterEntry is one participant of an event.
type RosterEntry struct {
	models.EventPlayer
	Name       string `json:"name"`
	Position   string `json:"position"`
	SkillLevel int    `json:"skill_level"`
}

// EventView is an event joined with host and turf details, its roster and the
// number of open spots. Listings fill the fields they need.
type EventView struct {
	models.Event
	HostName     string        `json:"host_name,omitempty"`
	HostZone     string        `json:"host_zone,omitempty"`
	HostSkill    int           `json:"host_skill,omitempty"`
	TurfName     *string       `json:"turf_name"`
	TurfLocation *string       `json:"turf_location,omitempty"`
	TurfEmoji    *string       `json:"turf_emoji,omitempty"`
	Role         string        `json:"role,omitempty"` // Caller's role, in "joined" listings
	SpotsLeft    int           `json:"spots_left" gorm:"-"`
	Players      []RosterEntry `json:"players,omitempty" gorm:"-"`
}

// MyEvents is the response of GET /api/events/my/list.
type MyEvents struct {
	Hosted []EventView `json:"hosted"`
	Joined []EventView `json:"joined"`
}

// Capacity reports an event's fill level after a join or leave.
type Capacity struct {
	FilledSlots int                `json:"filled_slots"`
	TotalSlots  int                `json:"total_slots"`
	Status      models.EventStatus `json:"status"`
}

// eventDetailSelect is the base query of the detailed event views. The turf is a LEFT
// JOIN because events may not have one; callers append their WHERE and ORDER BY.
const eventDetailSelect = `
	SELECT e.*,
		p.name AS host_name, p.zone AS host_zone, p.skill_level AS host_skill,
		t.name AS turf_name, t.location AS turf_location, t.emoji AS turf_emoji
	FROM events e
	JOIN players p ON e.host_id = p.id
	LEFT JOIN turfs t ON e.turf_id = t.id`

// Create hosts a new event. The host is enrolled as the first participant.
func (s *EventService) Create(ctx context.Context, hostID int64, in EventInput) (*EventView, error) {
	// Validate required fields, then ranges and formats
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Date == "" || in.Time == "" || in.TotalSlots == 0 {
		return nil, validation("title, date, time, total_slots required")
	}
	if in.TotalSlots < models.MinEventSlots || in.TotalSlots > models.MaxEventSlots {
		return nil, validation("total_slots must be 2-22")
	}
	if !validDate(in.Date) {
		return nil, validation("date must be in YYYY-MM-DD format")
	}
	if !validTime(in.Time) {
		return nil, validation("time must be in HH:MM format")
	}

	event := models.Event{
		HostID:      hostID,
		TurfID:      in.TurfID,
		Title:       title,
		Format:      orDefault(in.Format, "5v5"),
		Date:        in.Date,
		Time:        in.Time,
		TotalSlots:  in.TotalSlots,
		FilledSlots: 1,
		Status:      models.EventStatusOpen,
		Description: in.Description,
	}
	// Create the event and enrol the host together, so an event never exists without
	// the participant row its filled_slots of 1 counts.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.TurfID != nil {
			if _, err := loadTurf(tx, *in.TurfID); err != nil {
				return err
			}
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		// event.ID was filled in by the insert above
		host := models.EventPlayer{EventID: event.ID, PlayerID: hostID, Role: models.EventPlayerRoleHost}
		return tx.Create(&host).Error
	})
	if err != nil {
		return nil, fail("create event", err)
	}
	return s.Get(ctx, event.ID)
}

// Get returns one event with its roster.
func (s *EventService) Get(ctx context.Context, id int64) (*EventView, error) {
	db := s.db.WithContext(ctx)

	// Raw + Scan doesn't report "no rows" as an error, so scan into a slice and check its length
	var views []EventView
	if err := db.Raw(eventDetailSelect+` WHERE e.id = ?`, id).Scan(&views).Error; err != nil {
		return nil, internal("load event", err)
	}
	if len(views) == 0 {
		return nil, notFound("Event not found")
	}
	if err := attachRosters(db, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListOpen returns open events that haven't started yet, soonest first.
func (s *EventService) ListOpen(ctx context.Context) ([]EventView, error) {
	db := s.db.WithContext(ctx)
	// Dates and times are stored as "YYYY-MM-DD" and "HH:MM" strings, which sort the
	// same way as the values they represent, so plain string comparison finds upcoming events.
	now := s.now()
	today, clock := now.Format(dateLayout), now.Format(timeLayout)

	views := []EventView{}
	err := db.Raw(eventDetailSelect+`
		WHERE e.status = ? AND (e.date > ? OR (e.date = ? AND e.time >= ?))
		ORDER BY e.date ASC, e.time ASC, e.id ASC`,
		models.EventStatusOpen, today, today, clock).Scan(&views).Error
	if err != nil {
		return nil, internal("list open events", err)
	}
	if err := attachRosters(db, views); err != nil {
		return nil, err
	}
	return views, nil
}

// ListMine returns the events a player hosts and the ones they joined.
func (s *EventService) ListMine(ctx context.Context, playerID int64) (*MyEvents, error) {
	db := s.db.WithContext(ctx)
	out := &MyEvents{Hosted: []EventView{}, Joined: []EventView{}}

	// Hosted events
	err := db.Raw(`
		SELECT e.*, t.name AS turf_name, t.emoji AS turf_emoji
		FROM events e LEFT JOIN turfs t ON e.turf_id = t.id
		WHERE e.host_id = ?
		ORDER BY e.date DESC, e.time DESC, e.id DESC`, playerID).Scan(&out.Hosted).Error
	if err != nil {
		return nil, internal("list hosted events", err)
	}

	// Joined events come through event_players; the host's own row is excluded so an
	// event never appears in both lists.
	err = db.Raw(`
		SELECT e.*, t.name AS turf_name, t.emoji AS turf_emoji, ep.role
		FROM event_players ep
		JOIN events e ON ep.event_id = e.id
		LEFT JOIN turfs t ON e.turf_id = t.id
		WHERE ep.player_id = ? AND e.host_id <> ?
		ORDER BY e.date DESC, e.time DESC, e.id DESC`, playerID, playerID).Scan(&out.Joined).Error
	if err != nil {
		return nil, internal("list joined events", err)
	}

	fillSpots(out.Hosted)
	fillSpots(out.Joined)
	return out, nil
}

// ListAll returns every event with host and turf names. Admin only (enforced by the route).
func (s *EventService) ListAll(ctx context.Context) ([]EventView, error) {
	views := []EventView{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT e.*, p.name AS host_name, t.name AS turf_name
		FROM events e
		JOIN players p ON e.host_id = p.id
		LEFT JOIN turfs t ON e.turf_id = t.id
		ORDER BY e.created_at DESC, e.id DESC`).Scan(&views).Error
	if err != nil {
		return nil, internal("list all events", err)
	}
	fillSpots(views)
	return views, nil
}

// Join adds playerID to an open event. The participant insert and the capacity update
// run in one transaction, and the update only matches while the event is still open
// and below capacity, so two players racing for the last spot can't both get it.
func (s *EventService) Join(ctx context.Context, eventID, playerID int64) (*Capacity, error) {
	var out Capacity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, eventID)
		if err != nil {
			return err
		}
		if event.Status != models.EventStatusOpen {
			return validation("Event is not open")
		}
		if event.FilledSlots >= event.TotalSlots {
			return validation("Event is full!")
		}

		// Already on the roster? The unique index on (event_id, player_id) backs this up.
		var joined int64
		if err := tx.Model(&models.EventPlayer{}).Where("event_id = ? AND player_id = ?", eventID, playerID).Count(&joined).Error; err != nil {
			return err
		}
		if joined > 0 {
			return conflict("Already joined this event")
		}

		entry := models.EventPlayer{EventID: eventID, PlayerID: playerID, Role: models.EventPlayerRolePlayer}
		if err := tx.Create(&entry).Error; err != nil {
			if isUniqueViolation(err) {
				return conflict("Already joined this event")
			}
			return err
		}

		// Claim the slot. The WHERE clause repeats the checks above, so if the event filled
		// up since it was read, no row matches and the whole join (roster row included)
		// is rolled back. The status flips to "full" in the same statement.
		res := tx.Model(&models.Event{}).
			Where("id = ? AND status = ? AND filled_slots < total_slots", eventID, models.EventStatusOpen).
			Updates(map[string]any{
				"filled_slots": gorm.Expr("filled_slots + 1"),
				"status":       gorm.Expr("CASE WHEN filled_slots + 1 >= total_slots THEN ? ELSE ? END", models.EventStatusFull, models.EventStatusOpen),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return validation("Event is full!")
		}

		// Re-read inside the transaction to report the counts this join produced
		event, err = loadEvent(tx, eventID)
		if err != nil {
			return err
		}
		out = Capacity{FilledSlots: event.FilledSlots, TotalSlots: event.TotalSlots, Status: event.Status}
		return nil
	})
	if err != nil {
		return nil, fail("join event", err)
	}
	return &out, nil
}

// Leave removes playerID from an event. The host can't leave; they cancel instead.
// The status is recomputed from the new count: an event that was full reopens, and a
// cancelled event stays cancelled.
func (s *EventService) Leave(ctx context.Context, eventID, playerID int64) (*Capacity, error) {
	var out Capacity
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		event, err := loadEvent(tx, eventID)
		if err != nil {
			return err
		}
		if event.HostID == playerID {
			return validation("Host cannot leave — cancel the event instead")
		}

		// Deleting the roster row doubles as the membership check
		res := tx.Where("event_id = ? AND player_id = ?", eventID, playerID).Delete(&models.EventPlayer{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("You are not in this event")
		}

		// Free the slot and recompute the status from the new count
		err = tx.Model(&models.Event{}).Where("id = ? AND filled_slots > 0", eventID).
			Updates(map[string]any{
				"filled_slots": gorm.Expr("filled_slots - 1"),
				"status": gorm.Expr("CASE WHEN status = ? THEN ? WHEN filled_slots - 1 >= total_slots THEN ? ELSE ? END",
					models.EventStatusCancelled, models.EventStatusCancelled, models.EventStatusFull, models.EventStatusOpen),
			}).Error
		if err != nil {
			return err
		}

		event, err = loadEvent(tx, eventID)
		if err != nil {
			return err
		}
		out = Capacity{FilledSlots: event.FilledSlots, TotalSlots: event.TotalSlots, Status: event.Status}
		return nil
	})
	if err != nil {
		return nil, fail("leave event", err)
	}
	return &out, nil
}

// Cancel ends an event for good. Only the host or an admin may cancel.
func (s *EventService) Cancel(ctx context.Context, caller Caller, eventID int64) error {
	db := s.db.WithContext(ctx)
	event, err := loadEvent(db, eventID)
	if err != nil {
		return err
	}
	if !caller.CanActFor(event.HostID) {
		return forbidden("Only host or admin can cancel")
	}
	// Cancelling twice is harmless; the roster is kept so players can see what was cancelled
	err = db.Model(&models.Event{}).Where("id = ?", eventID).Update("status", models.EventStatusCancelled).Error
	if err != nil {
		return internal("cancel event", err)
	}
	return nil
}

// loadEvent fetches the bare event row. Errors other than "not found" are returned
// unwrapped because every caller runs inside a transaction and wraps them via fail.
func loadEvent(db *gorm.DB, id int64) (*models.Event, error) {
	var event models.Event
	if err := db.First(&event, id).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("Event not found")
		}
		return nil, err
	}
	return &event, nil
}

// attachRosters loads the participants of every event in views with one query
// and fills Players and SpotsLeft.
func attachRosters(db *gorm.DB, views []EventView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]int64, len(views))
	for i, v := range views {
		ids[i] = v.ID
	}

	var entries []RosterEntry
	err := db.Raw(`
		SELECT ep.*, p.name, p.position, p.skill_level
		FROM event_players ep JOIN players p ON ep.player_id = p.id
		WHERE ep.event_id IN ?
		ORDER BY ep.joined_at ASC, ep.id ASC`, ids).Scan(&entries).Error
	if err != nil {
		return internal("load rosters", err)
	}

	// Group the rows by event; the query already ordered them by join time
	byEvent := make(map[int64][]RosterEntry, len(views))
	for _, e := range entries {
		byEvent[e.EventID] = append(byEvent[e.EventID], e)
	}
	for i := range views {
		views[i].Players = byEvent[views[i].ID]
		if views[i].Players == nil {
			views[i].Players = []RosterEntry{}
		}
	}
	fillSpots(views)
	return nil
}

// fillSpots computes SpotsLeft, which isn't stored.
func fillSpots(views []EventView) {
	for i := range views {
		views[i].SpotsLeft = views[i].TotalSlots - views[i].FilledSlots
	}
}
