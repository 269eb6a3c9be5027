package services_test

import (
	"context"
	"testing"

	"github.com/trentd187/playmate/internal/services"
)

func TestMatchPercent(t *testing.T) {
	tests := []struct {
		a, b     int
		sameZone bool
		want     int
	}{
		{5, 5, true, 100},
		{5, 6, true, 93},  // 92.5 rounds up
		{5, 6, false, 63}, // 62.5 rounds up
		{5, 5, false, 70},
		{1, 10, true, 50}, // skill score floors at 0
		{1, 10, false, 20},
		{3, 7, true, 70},
	}
	for _, tt := range tests {
		if got := services.MatchPercent(tt.a, tt.b, tt.sameZone); got != tt.want {
			t.Errorf("MatchPercent(%d, %d, %v) = %d, want %d", tt.a, tt.b, tt.sameZone, got, tt.want)
		}
		if got := services.MatchPercent(tt.b, tt.a, tt.sameZone); got != tt.want {
			t.Errorf("MatchPercent(%d, %d, %v) = %d, want %d (symmetry)", tt.b, tt.a, tt.sameZone, got, tt.want)
		}
	}
}

func TestMatchRanksAndFlagsConnections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target := f.register(t, "Target", "Patia", 5)
	near := f.register(t, "Near", "Patia", 6)     // 93
	away := f.register(t, "Away", "Jaydev", 5)    // 70
	mismatch := f.register(t, "Far", "Patia", 10) // 63
	admin := f.register(t, "Admin", "Patia", 5)
	if err := f.db.Model(&admin).Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	// The viewer has a pending request with Away; a rejected one with Far doesn't count.
	viewer := f.register(t, "Viewer", "Nowhere", 1)
	if _, err := f.connections.Request(ctx, viewer.ID, services.ConnectionInput{ToPlayerID: away.ID}); err != nil {
		t.Fatalf("request: %v", err)
	}
	rejected, err := f.connections.Request(ctx, mismatch.ID, services.ConnectionInput{ToPlayerID: viewer.ID})
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if _, err := f.connections.Reject(ctx, viewer.ID, rejected.ID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	res, err := f.players.Match(ctx, target.ID, viewer.ID)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if res.Player.ID != target.ID || res.Player.Zone != "Patia" {
		t.Errorf("player = %+v, want target", res.Player)
	}

	want := []struct {
		id        int64
		percent   int
		connected bool
	}{
		{near.ID, 93, false},
		{away.ID, 70, true},
		{mismatch.ID, 63, false},
	}
	// Viewer is a candidate too (skill 1 vs 5 in another zone: 40/2 + 40/2 = 40).
	if len(res.Matches) != len(want)+1 {
		t.Fatalf("got %d matches, want %d: %+v", len(res.Matches), len(want)+1, res.Matches)
	}
	for i, w := range want {
		m := res.Matches[i]
		if m.ID != w.id || m.MatchPercent != w.percent {
			t.Errorf("match[%d] = (id %d, %d%%), want (id %d, %d%%)", i, m.ID, m.MatchPercent, w.id, w.percent)
		}
		if got := m.ConnectionStatus != nil; got != w.connected {
			t.Errorf("match[%d] connected = %v, want %v", i, got, w.connected)
		}
	}
	for _, m := range res.Matches {
		if m.ID == admin.ID || m.ID == target.ID {
			t.Errorf("match list includes player %d", m.ID)
		}
	}

	anon, err := f.players.Match(ctx, target.ID, 0)
	if err != nil {
		t.Fatalf("anonymous match: %v", err)
	}
	for _, m := range anon.Matches {
		if m.ConnectionStatus != nil {
			t.Errorf("anonymous match %d flagged connected", m.ID)
		}
	}

	_, err = f.players.Match(ctx, 9999, 0)
	wantKind(t, err, services.KindNotFound)
}

// The candidate cap applies zone first, before scoring, so a better-scoring player from
// another zone is dropped once the target's zone fills it.
func TestMatchCapsCandidatesZoneFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	target := f.register(t, "Target", "Patia", 1)
	for i := 0; i < 20; i++ {
		f.register(t, "Local", "Patia", 10) // 9 apart: 0/2 + 100/2 = 50
	}
	outsider := f.register(t, "Outsider", "Jaydev", 1) // 100/2 + 40/2 = 70

	res, err := f.players.Match(ctx, target.ID, 0)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if len(res.Matches) != 20 {
		t.Fatalf("got %d matches, want 20", len(res.Matches))
	}
	for _, m := range res.Matches {
		if m.ID == outsider.ID {
			t.Fatal("other-zone player scored despite a full same-zone candidate list")
		}
		if m.Zone != "Patia" || m.MatchPercent != 50 {
			t.Errorf("match %d = (%s, %d%%), want (Patia, 50%%)", m.ID, m.Zone, m.MatchPercent)
		}
	}
}
