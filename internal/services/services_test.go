package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/database/dbtest"
	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/services"
	"github.com/trentd187/playmate/internal/session"
)

// fixture bundles every service over one fresh database.
type fixture struct {
	db          *gorm.DB
	sessions    *session.MemoryStore
	players     *services.PlayerService
	turfs       *services.TurfService
	connections *services.ConnectionService
	events      *services.EventService
	chat        *services.ChatService
	admin       *services.AdminService
	notes       *recorder
	phones      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	sessions := session.NewMemoryStore()
	notes := &recorder{}
	return &fixture{
		db:          db,
		sessions:    sessions,
		players:     services.NewPlayerService(db, sessions, bcrypt.MinCost),
		turfs:       services.NewTurfService(db),
		connections: services.NewConnectionService(db, notes),
		events:      services.NewEventService(db),
		chat:        services.NewChatService(db, notes),
		admin:       services.NewAdminService(db),
		notes:       notes,
	}
}

// register creates a player with a unique phone number.
func (f *fixture) register(t *testing.T, name, zone string, skill int) models.Player {
	t.Helper()
	f.phones++
	res, err := f.players.Register(context.Background(), services.RegisterInput{
		Name:       name,
		Phone:      fmt.Sprintf("98%08d", f.phones),
		Password:   "secret",
		Zone:       zone,
		SkillLevel: &skill,
	})
	if err != nil {
		t.Fatalf("register %s: %v", name, err)
	}
	return res.Player
}

func (f *fixture) turf(t *testing.T) models.Turf {
	t.Helper()
	turf, err := f.turfs.CreateTurf(context.Background(), services.TurfInput{Name: "Kick Off", Location: "Patia", PricePerHour: 1200})
	if err != nil {
		t.Fatalf("create turf: %v", err)
	}
	return *turf
}

// connect creates an accepted connection between a and b.
func (f *fixture) connect(t *testing.T, a, b models.Player) {
	t.Helper()
	ctx := context.Background()
	conn, err := f.connections.Request(ctx, a.ID, services.ConnectionInput{ToPlayerID: b.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.connections.Accept(ctx, b.ID, conn.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

type note struct {
	playerID int64
	kind     string
}

type recorder struct{ notes []note }

func (r *recorder) Notify(playerID int64, kind string, _ any) {
	r.notes = append(r.notes, note{playerID, kind})
}

// wantKind fails the test unless err is a service error of kind want.
func wantKind(t *testing.T, err error, want services.Kind) *services.Error {
	t.Helper()
	if err == nil {
		t.Fatalf("err = nil, want %s", want)
	}
	var se *services.Error
	if !errors.As(err, &se) {
		t.Fatalf("err = %v (%T), want *services.Error", err, err)
	}
	if se.Kind != want {
		t.Fatalf("kind = %s (%q), want %s", se.Kind, se.Message, want)
	}
	return se
}
