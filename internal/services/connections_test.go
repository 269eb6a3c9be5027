package services_test

import (
	"context"
	"testing"

	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/notify"
	"github.com/trentd187/playmate/internal/services"
)

func TestConnectionLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "A", "Patia", 5)
	b := f.register(t, "B", "Patia", 6)
	c := f.register(t, "C", "Patia", 6)

	_, err := f.connections.Request(ctx, a.ID, services.ConnectionInput{ToPlayerID: a.ID})
	wantKind(t, err, services.KindValidation)
	_, err = f.connections.Request(ctx, a.ID, services.ConnectionInput{})
	wantKind(t, err, services.KindValidation)
	_, err = f.connections.Request(ctx, a.ID, services.ConnectionInput{ToPlayerID: 9999})
	wantKind(t, err, services.KindNotFound)

	conn, err := f.connections.Request(ctx, a.ID, services.ConnectionInput{ToPlayerID: b.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if conn.Status != models.ConnectionStatusPending {
		t.Errorf("status = %s, want pending", conn.Status)
	}

	// A duplicate in either direction is a conflict carrying the existing row.
	for _, dup := range [][2]int64{{a.ID, b.ID}, {b.ID, a.ID}} {
		_, err := f.connections.Request(ctx, dup[0], services.ConnectionInput{ToPlayerID: dup[1]})
		se := wantKind(t, err, services.KindConflict)
		existing, ok := se.Detail.(models.Connection)
		if !ok || existing.ID != conn.ID {
			t.Errorf("detail = %#v, want existing connection %d", se.Detail, conn.ID)
		}
	}

	mine, err := f.connections.ListMine(ctx, b.ID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine.Incoming) != 1 || mine.Incoming[0].FromName != "A" || len(mine.Outgoing) != 0 {
		t.Errorf("B's connections = %+v", mine)
	}

	// Only the recipient may answer.
	_, err = f.connections.Accept(ctx, a.ID, conn.ID)
	wantKind(t, err, services.KindForbidden)
	_, err = f.connections.Accept(ctx, c.ID, conn.ID)
	wantKind(t, err, services.KindForbidden)
	_, err = f.connections.Accept(ctx, b.ID, 9999)
	wantKind(t, err, services.KindNotFound)

	accepted, err := f.connections.Accept(ctx, b.ID, conn.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != models.ConnectionStatusAccepted {
		t.Errorf("status = %s, want accepted", accepted.Status)
	}

	// Answered connections can't be answered again.
	_, err = f.connections.Reject(ctx, b.ID, conn.ID)
	wantKind(t, err, services.KindConflict)
	_, err = f.connections.Accept(ctx, b.ID, conn.ID)
	wantKind(t, err, services.KindConflict)

	want := []note{
		{b.ID, notify.TypeConnectionRequest},
		{a.ID, notify.TypeConnectionAccepted},
	}
	if len(f.notes.notes) != len(want) {
		t.Fatalf("notifications = %+v, want %+v", f.notes.notes, want)
	}
	for i := range want {
		if f.notes.notes[i] != want[i] {
			t.Errorf("notification[%d] = %+v, want %+v", i, f.notes.notes[i], want[i])
		}
	}

	all, err := f.connections.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 1 || all[0].FromPhone != a.Phone || all[0].ToPhone != b.Phone {
		t.Errorf("all = %+v", all)
	}
}
