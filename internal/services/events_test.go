package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/services"
)

func newEvent(t *testing.T, f *fixture, hostID int64, slots int) *services.EventView {
	t.Helper()
	ev, err := f.events.Create(context.Background(), hostID, services.EventInput{
		Title: "Sunday 5s", Date: "2026-11-01", Time: "18:30", TotalSlots: slots,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return ev
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.register(t, "Host", "Patia", 7)
	turf := f.turf(t)

	ev, err := f.events.Create(ctx, host.ID, services.EventInput{
		TurfID: &turf.ID, Title: "  Friday night  ", Date: "2026-11-06", Time: "20:00", TotalSlots: 10,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ev.Title != "Friday night" || ev.Format != "5v5" || ev.Status != models.EventStatusOpen {
		t.Errorf("event = %+v", ev.Event)
	}
	if ev.FilledSlots != 1 || ev.SpotsLeft != 9 {
		t.Errorf("filled = %d, spots left = %d, want 1 and 9", ev.FilledSlots, ev.SpotsLeft)
	}
	if ev.TurfName == nil || *ev.TurfName != "Kick Off" || ev.HostName != "Host" {
		t.Errorf("joined names = turf %v, host %q", ev.TurfName, ev.HostName)
	}
	if len(ev.Players) != 1 || ev.Players[0].PlayerID != host.ID || ev.Players[0].Role != models.EventPlayerRoleHost {
		t.Errorf("roster = %+v, want host only", ev.Players)
	}

	missing := int64(9999)
	tests := []struct {
		name string
		in   services.EventInput
		kind services.Kind
	}{
		{"missing title", services.EventInput{Date: "2026-11-06", Time: "20:00", TotalSlots: 10}, services.KindValidation},
		{"too few slots", services.EventInput{Title: "x", Date: "2026-11-06", Time: "20:00", TotalSlots: 1}, services.KindValidation},
		{"too many slots", services.EventInput{Title: "x", Date: "2026-11-06", Time: "20:00", TotalSlots: 23}, services.KindValidation},
		{"bad time", services.EventInput{Title: "x", Date: "2026-11-06", Time: "8pm", TotalSlots: 10}, services.KindValidation},
		{"unknown turf", services.EventInput{TurfID: &missing, Title: "x", Date: "2026-11-06", Time: "20:00", TotalSlots: 10}, services.KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.events.Create(ctx, host.ID, tt.in)
			wantKind(t, err, tt.kind)
		})
	}
}

func TestJoinAndLeaveTrackCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.register(t, "Host", "Patia", 7)
	p1 := f.register(t, "P1", "Patia", 5)
	p2 := f.register(t, "P2", "Patia", 5)
	ev := newEvent(t, f, host.ID, 2)

	_, err := f.events.Join(ctx, ev.ID, host.ID)
	wantKind(t, err, services.KindConflict)

	got, err := f.events.Join(ctx, ev.ID, p1.ID)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if got.FilledSlots != 2 || got.Status != models.EventStatusFull {
		t.Fatalf("after join = %+v, want 2/2 full", got)
	}

	_, err = f.events.Join(ctx, ev.ID, p2.ID)
	wantKind(t, err, services.KindValidation)

	se := wantKind(t, func() error { _, err := f.events.Leave(ctx, ev.ID, host.ID); return err }(), services.KindValidation)
	if se.Message != "Host cannot leave — cancel the event instead" {
		t.Errorf("host leave message = %q", se.Message)
	}
	_, err = f.events.Leave(ctx, ev.ID, p2.ID)
	wantKind(t, err, services.KindNotFound)

	got, err = f.events.Leave(ctx, ev.ID, p1.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got.FilledSlots != 1 || got.Status != models.EventStatusOpen {
		t.Fatalf("after leave = %+v, want 1/2 open", got)
	}

	if _, err := f.events.Join(ctx, ev.ID, p2.ID); err != nil {
		t.Fatalf("join after reopen: %v", err)
	}
	_, err = f.events.Join(ctx, 9999, p2.ID)
	wantKind(t, err, services.KindNotFound)
}

// SQLite runs these one transaction at a time; the guarded increment itself is
// exercised by TestJoinRollsBackWhenEventFillsMidJoin.
func TestConcurrentJoinsNeverOverfill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.register(t, "Host", "Patia", 7)
	ev := newEvent(t, f, host.ID, 3)

	var joiners []models.Player
	for i := 0; i < 6; i++ {
		joiners = append(joiners, f.register(t, "P", "Patia", 5))
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	joined := 0
	for _, p := range joiners {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			if _, err := f.events.Join(ctx, ev.ID, id); err == nil {
				mu.Lock()
				joined++
				mu.Unlock()
			}
		}(p.ID)
	}
	wg.Wait()

	if joined != 2 {
		t.Errorf("%d joins succeeded, want 2", joined)
	}
	final, err := f.events.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if final.FilledSlots != 3 || len(final.Players) != 3 || final.Status != models.EventStatusFull {
		t.Errorf("final = %d filled, %d players, %s; want 3, 3, full", final.FilledSlots, len(final.Players), final.Status)
	}
}

// The capacity check and the guarded increment are separate statements. When the event
// fills between them, the increment matches no row and the whole join rolls back.
func TestJoinRollsBackWhenEventFillsMidJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.register(t, "Host", "Patia", 7)
	late := f.register(t, "Late", "Patia", 5)
	ev := newEvent(t, f, host.ID, 4)

	// Runs inside Join's transaction, after the status read and before the roster insert.
	fired := false
	err := f.db.Callback().Create().Before("gorm:create").Register("test:fill_event", func(tx *gorm.DB) {
		if fired || tx.Statement.Table != "event_players" {
			return
		}
		fired = true
		if err := tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE events SET filled_slots = total_slots WHERE id = ?", ev.ID).Error; err != nil {
			t.Errorf("fill event: %v", err)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = f.events.Join(ctx, ev.ID, late.ID)
	if se := wantKind(t, err, services.KindValidation); se.Message != "Event is full!" {
		t.Fatalf("join error = %q, want Event is full!", se.Message)
	}
	if !fired {
		t.Fatal("fill callback never ran")
	}

	// The roster row and the concurrent fill were both in the rolled-back transaction.
	got, err := f.events.Get(ctx, ev.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.FilledSlots != 1 || got.Status != models.EventStatusOpen {
		t.Errorf("after failed join = %d filled, %s; want 1, open", got.FilledSlots, got.Status)
	}
	for _, p := range got.Players {
		if p.PlayerID == late.ID {
			t.Error("rolled-back join left a roster row")
		}
	}
}

func TestCancelEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.register(t, "Host", "Patia", 7)
	p1 := f.register(t, "P1", "Patia", 5)
	ev := newEvent(t, f, host.ID, 4)
	if _, err := f.events.Join(ctx, ev.ID, p1.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	wantKind(t, f.events.Cancel(ctx, services.Caller{ID: p1.ID}, ev.ID), services.KindForbidden)
	if err := f.events.Cancel(ctx, services.Caller{ID: host.ID}, ev.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	_, err := f.events.Join(ctx, ev.ID, f.register(t, "Late", "Patia", 5).ID)
	se := wantKind(t, err, services.KindValidation)
	if se.Message != "Event is not open" {
		t.Errorf("message = %q", se.Message)
	}

	// Leaving a cancelled event keeps it cancelled.
	got, err := f.events.Leave(ctx, ev.ID, p1.ID)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got.Status != models.EventStatusCancelled {
		t.Errorf("status after leave = %s, want cancelled", got.Status)
	}

	admin := services.Caller{ID: p1.ID, IsAdmin: true}
	if err := f.events.Cancel(ctx, admin, ev.ID); err != nil {
		t.Fatalf("admin cancel again: %v", err)
	}
	wantKind(t, f.events.Cancel(ctx, admin, 9999), services.KindNotFound)
}

func TestListOpenHidesPastAndClosed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	host := f.register(t, "Host", "Patia", 7)
	f.events.SetClock(func() time.Time { return time.Date(2026, 10, 19, 18, 0, 0, 0, time.Local) })

	create := func(title, date, clock string, slots int) int64 {
		ev, err := f.events.Create(ctx, host.ID, services.EventInput{Title: title, Date: date, Time: clock, TotalSlots: slots})
		if err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
		return ev.ID
	}
	create("yesterday", "2026-10-18", "20:00", 10)
	create("earlier today", "2026-10-19", "17:00", 10)
	later := create("later today", "2026-10-19", "19:00", 10)
	next := create("next week", "2026-10-26", "09:00", 10)
	cancelled := create("cancelled", "2026-10-27", "09:00", 10)
	if err := f.events.Cancel(ctx, services.Caller{ID: host.ID}, cancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	open, err := f.events.ListOpen(ctx)
	if err != nil {
		t.Fatalf("list open: %v", err)
	}
	if len(open) != 2 || open[0].ID != later || open[1].ID != next {
		t.Fatalf("open = %+v, want [later today, next week]", open)
	}
	if len(open[0].Players) != 1 || open[0].HostName != "Host" {
		t.Errorf("open[0] roster = %+v, host %q", open[0].Players, open[0].HostName)
	}

	all, err := f.events.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("list all = %d events, want 5", len(all))
	}
}

func TestListMyEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "A", "Patia", 7)
	b := f.register(t, "B", "Patia", 5)
	mine := newEvent(t, f, a.ID, 4)
	theirs := newEvent(t, f, b.ID, 4)
	if _, err := f.events.Join(ctx, theirs.ID, a.ID); err != nil {
		t.Fatalf("join: %v", err)
	}

	got, err := f.events.ListMine(ctx, a.ID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(got.Hosted) != 1 || got.Hosted[0].ID != mine.ID || got.Hosted[0].SpotsLeft != 3 {
		t.Errorf("hosted = %+v", got.Hosted)
	}
	if len(got.Joined) != 1 || got.Joined[0].ID != theirs.ID || got.Joined[0].Role != string(models.EventPlayerRolePlayer) {
		t.Errorf("joined = %+v", got.Joined)
	}
}
