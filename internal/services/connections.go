// This file handles connections between players.
//
// A connection starts as a request from one player to another and stays "pending" until
// the recipient accepts or rejects it:
//
//	pending ──accept──> accepted   (the two players may now message each other)
//	pending ──reject──> rejected
//
// There is at most one connection per pair of players, in either direction, so a
// rejected request can't be re-sent. Both transitions are one-way.

package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/notify"
)

// ConnectionService manages connection requests between players.
type ConnectionService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewConnectionService returns a ConnectionService. notifier may be nil.
func NewConnectionService(db *gorm.DB, notifier Notifier) *ConnectionService {
	return &ConnectionService{db: db, notifier: orNop(notifier)}
}

// ConnectionInput is the JSON body of POST /api/connections.
type ConnectionInput struct {
	ToPlayerID int64 `json:"to_player_id"`
}

// IncomingConnection is a request someone sent to the caller.
type IncomingConnection struct {
	models.Connection
	FromName     string `json:"from_name"`
	FromZone     string `json:"from_zone"`
	FromSkill    int    `json:"from_skill"`
	FromPosition string `json:"from_position"`
}

// OutgoingConnection is a request the caller sent.
type OutgoingConnection struct {
	models.Connection
	ToName     string `json:"to_name"`
	ToZone     string `json:"to_zone"`
	ToSkill    int    `json:"to_skill"`
	ToPosition string `json:"to_position"`
}

// MyConnections is the response of GET /api/connections/my.
type MyConnections struct {
	Incoming []IncomingConnection `json:"incoming"`
	Outgoing []OutgoingConnection `json:"outgoing"`
}

// ConnectionDetail is a connection with both players' names and phones (admin view).
type ConnectionDetail struct {
	models.Connection
	FromName  string `json:"from_name"`
	FromPhone string `json:"from_phone"`
	ToName    string `json:"to_name"`
	ToPhone   string `json:"to_phone"`
}

// ConnectionRequestNotice is pushed to the recipient of a new request.
type ConnectionRequestNotice struct {
	Connection models.Connection `json:"connection"`
	FromName   string            `json:"from_name"`
}

// Request sends a pending connection request from fromID to toID. Only one connection
// may exist per pair of players, whichever direction it was sent in; on a duplicate the
// returned *Error carries the existing connection in Detail.
func (s *ConnectionService) Request(ctx context.Context, fromID int64, in ConnectionInput) (*models.Connection, error) {
	if in.ToPlayerID == 0 {
		return nil, validation("to_player_id required")
	}
	if in.ToPlayerID == fromID {
		return nil, validation("Cannot connect to yourself")
	}

	var conn models.Connection
	var fromName string // Sender's name, for the notification
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Load both players in one query: the recipient must exist, and the sender's
		// name goes into the notification.
		var players []models.Player
		if err := tx.Select("id", "name").Where("id IN ?", []int64{fromID, in.ToPlayerID}).Find(&players).Error; err != nil {
			return err
		}
		found := false
		for _, p := range players {
			if p.ID == in.ToPlayerID {
				found = true
			}
			if p.ID == fromID {
				fromName = p.Name
			}
		}
		if !found {
			return notFound("Player not found")
		}

		// Look for a connection between the pair in either direction
		var existing models.Connection
		err := tx.Where("(from_player_id = ? AND to_player_id = ?) OR (from_player_id = ? AND to_player_id = ?)",
			fromID, in.ToPlayerID, in.ToPlayerID, fromID).First(&existing).Error
		if err == nil {
			return &Error{Kind: KindConflict, Message: "Connection already exists", Detail: existing}
		}
		if !isNotFound(err) {
			return err
		}

		conn = models.Connection{FromPlayerID: fromID, ToPlayerID: in.ToPlayerID, Status: models.ConnectionStatusPending}
		return tx.Create(&conn).Error
	})
	if err != nil {
		return nil, fail("create connection", err)
	}

	// Notify only after the transaction committed
	s.notifier.Notify(conn.ToPlayerID, notify.TypeConnectionRequest, ConnectionRequestNotice{Connection: conn, FromName: fromName})
	return &conn, nil
}

// ListMine returns the caller's incoming and outgoing connections, newest first.
func (s *ConnectionService) ListMine(ctx context.Context, playerID int64) (*MyConnections, error) {
	db := s.db.WithContext(ctx)
	// Start from empty slices so the JSON has [] rather than null
	out := &MyConnections{Incoming: []IncomingConnection{}, Outgoing: []OutgoingConnection{}}

	// Incoming: join the sender's profile
	err := db.Raw(`
		SELECT c.*, p.name AS from_name, p.zone AS from_zone, p.skill_level AS from_skill, p.position AS from_position
		FROM connections c JOIN players p ON c.from_player_id = p.id
		WHERE c.to_player_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, playerID).Scan(&out.Incoming).Error
	if err != nil {
		return nil, internal("list incoming connections", err)
	}

	// Outgoing: join the recipient's profile
	err = db.Raw(`
		SELECT c.*, p.name AS to_name, p.zone AS to_zone, p.skill_level AS to_skill, p.position AS to_position
		FROM connections c JOIN players p ON c.to_player_id = p.id
		WHERE c.from_player_id = ?
		ORDER BY c.created_at DESC, c.id DESC`, playerID).Scan(&out.Outgoing).Error
	if err != nil {
		return nil, internal("list outgoing connections", err)
	}
	return out, nil
}

// Accept marks a pending request as accepted. Only the recipient may respond.
func (s *ConnectionService) Accept(ctx context.Context, callerID, connectionID int64) (*models.Connection, error) {
	conn, err := s.respond(ctx, callerID, connectionID, models.ConnectionStatusAccepted)
	if err != nil {
		return nil, err
	}
	s.notifier.Notify(conn.FromPlayerID, notify.TypeConnectionAccepted, conn)
	return conn, nil
}

// Reject marks a pending request as rejected. Only the recipient may respond.
func (s *ConnectionService) Reject(ctx context.Context, callerID, connectionID int64) (*models.Connection, error) {
	return s.respond(ctx, callerID, connectionID, models.ConnectionStatusRejected)
}

// respond moves a connection out of "pending". Connections that were already answered
// can't be answered again.
func (s *ConnectionService) respond(ctx context.Context, callerID, connectionID int64, to models.ConnectionStatus) (*models.Connection, error) {
	db := s.db.WithContext(ctx)

	var conn models.Connection
	if err := db.First(&conn, connectionID).Error; err != nil {
		if isNotFound(err) {
			return nil, notFound("Connection not found")
		}
		return nil, internal("load connection", err)
	}
	// Only the recipient answers; the sender can't accept their own request, and
	// admins don't answer on anyone's behalf.
	if conn.ToPlayerID != callerID {
		return nil, forbidden("Not authorized")
	}
	if conn.Status != models.ConnectionStatusPending {
		return nil, conflict("Connection is already " + string(conn.Status))
	}

	// The status guard in the WHERE clause loses cleanly to a concurrent response.
	res := db.Model(&models.Connection{}).
		Where("id = ? AND status = ?", connectionID, models.ConnectionStatusPending).
		Update("status", to)
	if res.Error != nil {
		return nil, internal("update connection", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, conflict("Connection was already answered")
	}
	conn.Status = to
	return &conn, nil
}

// ListAll returns every connection with both players' details. Admin only (enforced by the route).
func (s *ConnectionService) ListAll(ctx context.Context) ([]ConnectionDetail, error) {
	out := []ConnectionDetail{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT c.*,
			pf.name AS from_name, pf.phone AS from_phone,
			pt.name AS to_name, pt.phone AS to_phone
		FROM connections c
		JOIN players pf ON c.from_player_id = pf.id
		JOIN players pt ON c.to_player_id = pt.id
		ORDER BY c.created_at DESC, c.id DESC`).Scan(&out).Error
	if err != nil {
		return nil, internal("list all connections", err)
	}
	return out, nil
}
