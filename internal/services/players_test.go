package services_test

import (
	"context"
	"testing"

	"github.com/trentd187/playmate/internal/services"
	"github.com/trentd187/playmate/internal/session"
)

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	skill, badSkill := 5, 11

	tests := []struct {
		name string
		in   services.RegisterInput
		msg  string
	}{
		{"missing fields", services.RegisterInput{Name: "A", Phone: "9876543210"}, "Missing required fields: name, phone, password, zone, skill_level"},
		{"short password", services.RegisterInput{Name: "A", Phone: "9876543210", Password: "abc", Zone: "Patia", SkillLevel: &skill}, "Password must be at least 4 characters"},
		{"bad phone", services.RegisterInput{Name: "A", Phone: "98765", Password: "abcd", Zone: "Patia", SkillLevel: &skill}, "Phone must be 10 digits"},
		{"skill out of range", services.RegisterInput{Name: "A", Phone: "9876543210", Password: "abcd", Zone: "Patia", SkillLevel: &badSkill}, "skill_level must be between 1 and 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.players.Register(ctx, tt.in)
			se := wantKind(t, err, services.KindValidation)
			if se.Message != tt.msg {
				t.Errorf("message = %q, want %q", se.Message, tt.msg)
			}
		})
	}
}

func TestRegisterLoginLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	skill := 6

	in := services.RegisterInput{Name: "Asha", Phone: " 9876543210 ", Password: "pass1234", Zone: "Patia", SkillLevel: &skill}
	reg, err := f.players.Register(ctx, in)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Player.Position != "Any" {
		t.Errorf("position = %q, want default Any", reg.Player.Position)
	}
	if reg.Player.Phone != "9876543210" {
		t.Errorf("phone = %q, want trimmed", reg.Player.Phone)
	}
	if len(reg.Token) != 2*session.TokenBytes {
		t.Errorf("token length = %d, want %d", len(reg.Token), 2*session.TokenBytes)
	}

	_, err = f.players.Register(ctx, in)
	se := wantKind(t, err, services.KindConflict)
	if se.Message != "Phone number already registered. Try logging in." {
		t.Errorf("duplicate message = %q", se.Message)
	}

	_, err = f.players.Login(ctx, services.LoginInput{Phone: "9876543210", Password: "wrong"})
	wantKind(t, err, services.KindUnauthorized)
	_, err = f.players.Login(ctx, services.LoginInput{Phone: "1111111111", Password: "pass1234"})
	wantKind(t, err, services.KindUnauthorized)

	login, err := f.players.Login(ctx, services.LoginInput{Phone: "9876543210", Password: "pass1234"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if login.Token == reg.Token {
		t.Error("login reused the registration token")
	}

	// Both tokens resolve until revoked.
	for _, tok := range []string{reg.Token, login.Token} {
		id, ok, err := f.sessions.Resolve(ctx, tok)
		if err != nil || !ok || id != reg.Player.ID {
			t.Fatalf("Resolve = (%d, %v, %v), want (%d, true, nil)", id, ok, err, reg.Player.ID)
		}
	}
	if err := f.players.Logout(ctx, login.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok, _ := f.sessions.Resolve(ctx, login.Token); ok {
		t.Error("token still valid after logout")
	}
	if _, ok, _ := f.sessions.Resolve(ctx, reg.Token); !ok {
		t.Error("logout revoked the other token")
	}
}

func TestUpdatePlayerAuthorization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "A", "Patia", 5)
	b := f.register(t, "B", "Patia", 5)

	name := "Someone Else"
	_, err := f.players.Update(ctx, services.Caller{ID: b.ID}, a.ID, services.UpdatePlayerInput{Name: &name})
	wantKind(t, err, services.KindForbidden)

	skill := 0
	_, err = f.players.Update(ctx, services.Caller{ID: a.ID}, a.ID, services.UpdatePlayerInput{SkillLevel: &skill})
	wantKind(t, err, services.KindValidation)

	bio := "Left back"
	got, err := f.players.Update(ctx, services.Caller{ID: b.ID, IsAdmin: true}, a.ID, services.UpdatePlayerInput{Name: &name, Bio: &bio})
	if err != nil {
		t.Fatalf("admin update: %v", err)
	}
	if got.Name != name || got.Bio != bio || got.Zone != "Patia" {
		t.Errorf("updated = %+v, want name and bio changed, zone kept", got)
	}
}

func TestListHidesAdminsAndDeleteIsHard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.register(t, "A", "Patia", 5)
	f.register(t, "B", "Jaydev Vihar", 5)
	if err := f.db.Model(&a).Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	list, err := f.players.List(ctx, services.PlayerFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "B" {
		t.Fatalf("list = %+v, want only B", list)
	}
	filtered, err := f.players.List(ctx, services.PlayerFilter{Zone: "Patia"})
	if err != nil {
		t.Fatalf("filtered list: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("zone filter returned %d players, want 0", len(filtered))
	}
	all, err := f.players.ListAll(ctx)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("list all = %d players, want 2", len(all))
	}

	if err := f.players.Delete(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	_, err = f.players.Get(ctx, a.ID)
	wantKind(t, err, services.KindNotFound)
	wantKind(t, f.players.Delete(ctx, a.ID), services.KindNotFound)
}
