// This file handles direct messages. Two players may message each other only once one
// of them has accepted the other's connection request. Messages are never edited or
// deleted; the only thing that changes is the recipient's is_read flag.

package services

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/trentd187/playmate/internal/models"
	"github.com/trentd187/playmate/internal/notify"
)

// ChatService stores direct messages between connected players.
type ChatService struct {
	db       *gorm.DB
	notifier Notifier
}

// NewChatService returns a ChatService. notifier may be nil.
func NewChatService(db *gorm.DB, notifier Notifier) *ChatService {
	return &ChatService{db: db, notifier: orNop(notifier)}
}

// SendInput is the JSON body of POST /api/chat/send.
type SendInput struct {
	ToID    int64  `json:"to_id"`
	Content string `json:"content"`
}

// MessageView is a message with the sender's name.
type MessageView struct {
	models.Message
	FromName string `json:"from_name"`
}

// Conversation summarises the caller's exchange with one partner.
type Conversation struct {
	PartnerID       int64     `json:"partner_id"`
	PartnerName     string    `json:"partner_name"`
	PartnerZone     string    `json:"partner_zone"`
	PartnerPosition string    `json:"partner_position"`
	LastMessage     string    `json:"last_message"`
	LastMessageAt   time.Time `json:"last_message_at"`
	UnreadCount     int       `json:"unread_count"`
}

// Partner is the other side of a thread.
type Partner struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Zone       string `json:"zone"`
	Position   string `json:"position"`
	SkillLevel int    `json:"skill_level"`
}

// Thread is the response of GET /api/chat/messages/:playerId.
type Thread struct {
	Partner  Partner       `json:"partner"`
	Messages []MessageView `json:"messages"`
}

// Send stores a message from fromID. The two players must have an accepted connection.
func (s *ChatService) Send(ctx context.Context, fromID int64, in SendInput) (*MessageView, error) {
	// Whitespace-only messages count as empty
	content := strings.TrimSpace(in.Content)
	if in.ToID == 0 || content == "" {
		return nil, validation("to_id and content required")
	}
	if in.ToID == fromID {
		return nil, validation("Cannot message yourself")
	}

	// The pair must share an accepted connection, in either direction
	db := s.db.WithContext(ctx)
	var accepted int64
	err := db.Model(&models.Connection{}).
		Where("((from_player_id = ? AND to_player_id = ?) OR (from_player_id = ? AND to_player_id = ?)) AND status = ?",
			fromID, in.ToID, in.ToID, fromID, models.ConnectionStatusAccepted).
		Count(&accepted).Error
	if err != nil {
		return nil, internal("check connection", err)
	}
	if accepted == 0 {
		return nil, forbidden("You can only message connected players")
	}

	msg := models.Message{FromID: fromID, ToID: in.ToID, Content: content}
	if err := db.Create(&msg).Error; err != nil {
		return nil, internal("create message", err)
	}

	// The sender's name goes into the response and the notification. A sender deleted
	// mid-request just leaves it blank.
	var sender models.Player
	if err := db.Select("name").First(&sender, fromID).Error; err != nil && !isNotFound(err) {
		return nil, internal("load sender", err)
	}
	view := &MessageView{Message: msg, FromName: sender.Name}

	s.notifier.Notify(in.ToID, notify.TypeMessage, view)
	return view, nil
}

// Conversations lists one entry per partner the player has exchanged messages with,
// most recent first.
func (s *ChatService) Conversations(ctx context.Context, playerID int64) ([]Conversation, error) {
	db := s.db.WithContext(ctx)

	// Every message the player sent or received, newest first. Grouping happens in Go:
	// "latest message per partner" isn't portable SQL across SQLite and Postgres.
	var msgs []models.Message
	err := db.Where("from_id = ? OR to_id = ?", playerID, playerID).
		Order("created_at DESC").Order("id DESC").
		Find(&msgs).Error
	if err != nil {
		return nil, internal("load messages", err)
	}

	out := []Conversation{}
	index := make(map[int64]int)
	for _, m := range msgs {
		partner := m.FromID
		if partner == playerID {
			partner = m.ToID
		}
		i, ok := index[partner]
		if !ok {
			// Messages arrive newest first, so the first one seen is the latest.
			i = len(out)
			index[partner] = i
			out = append(out, Conversation{PartnerID: partner, LastMessage: m.Content, LastMessageAt: m.CreatedAt})
		}
		if m.ToID == playerID && !m.IsRead {
			out[i].UnreadCount++
		}
	}
	if len(out) == 0 {
		return out, nil
	}

	// Load all partners' profiles in one query
	ids := make([]int64, 0, len(out))
	for _, c := range out {
		ids = append(ids, c.PartnerID)
	}
	var partners []models.Player
	if err := db.Select("id", "name", "zone", "position").Where("id IN ?", ids).Find(&partners).Error; err != nil {
		return nil, internal("load partners", err)
	}

	// Conversations with deleted players are dropped.
	known := make(map[int64]models.Player, len(partners))
	for _, p := range partners {
		known[p.ID] = p
	}
	kept := out[:0]
	for _, c := range out {
		p, ok := known[c.PartnerID]
		if !ok {
			continue
		}
		c.PartnerName, c.PartnerZone, c.PartnerPosition = p.Name, p.Zone, p.Position
		kept = append(kept, c)
	}
	return kept, nil
}

// Thread returns the messages between playerID and partnerID, oldest first, and marks
// the partner's messages to playerID as read.
func (s *ChatService) Thread(ctx context.Context, playerID, partnerID int64) (*Thread, error) {
	// Reading and marking read share a transaction, so a message that arrives in between
	// isn't marked read before it was returned.
	out := &Thread{Messages: []MessageView{}}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var partner models.Player
		if err := tx.First(&partner, partnerID).Error; err != nil {
			if isNotFound(err) {
				return notFound("Player not found")
			}
			return err
		}
		out.Partner = Partner{ID: partner.ID, Name: partner.Name, Zone: partner.Zone, Position: partner.Position, SkillLevel: partner.SkillLevel}

		err := tx.Raw(`
			SELECT m.*, pf.name AS from_name
			FROM messages m JOIN players pf ON m.from_id = pf.id
			WHERE (m.from_id = ? AND m.to_id = ?) OR (m.from_id = ? AND m.to_id = ?)
			ORDER BY m.created_at ASC, m.id ASC`,
			playerID, partnerID, partnerID, playerID).Scan(&out.Messages).Error
		if err != nil {
			return err
		}
		return markRead(tx, playerID, partnerID)
	})
	if err != nil {
		return nil, fail("load thread", err)
	}
	return out, nil
}

// MarkRead marks every message from fromID to playerID as read.
func (s *ChatService) MarkRead(ctx context.Context, playerID, fromID int64) error {
	if err := markRead(s.db.WithContext(ctx), playerID, fromID); err != nil {
		return internal("mark read", err)
	}
	return nil
}

// UnreadCount returns how many messages to playerID are unread.
func (s *ChatService) UnreadCount(ctx context.Context, playerID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("to_id = ? AND is_read = ?", playerID, false).
		Count(&n).Error
	if err != nil {
		return 0, internal("count unread", err)
	}
	return n, nil
}

// markRead flips is_read on fromID's unread messages to playerID. db may be a transaction.
func markRead(db *gorm.DB, playerID, fromID int64) error {
	return db.Model(&models.Message{}).
		Where("from_id = ? AND to_id = ? AND is_read = ?", fromID, playerID, false).
		Update("is_read", true).Error
}
