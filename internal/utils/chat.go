package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/database"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/scanner"
)

// CreateChatRoom crée une room; le créateur en est toujours membre
func CreateChatRoom(ctx context.Context, actorID int64, name string, memberUsernames []string) (*model.ChatRoom, error) {
	var roomID int64
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		members, err := ResolveUsernames(ctx, tx, memberUsernames)
		if err != nil {
			return err
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO chat_rooms (uuid, name, created_by) VALUES ($1, $2, $3) RETURNING id`,
			uuid.NewString(), SanitizeText(name), actorID,
		).Scan(&roomID)
		if err != nil {
			return fmt.Errorf("insert chat room: %w", err)
		}

		for _, id := range append(members, actorID) {
			if _, err := tx.Exec(ctx,
				`INSERT INTO chat_members (room_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
				roomID, id,
			); err != nil {
				return fmt.Errorf("add member: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return GetChatRoom(ctx, actorID, roomID)
}

func requireMember(ctx context.Context, q database.Querier, roomID, userID int64) error {
	var exists, member bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM chat_rooms WHERE id = $1),
		        EXISTS(SELECT 1 FROM chat_members WHERE room_id = $1 AND user_id = $2)`,
		roomID, userID,
	).Scan(&exists, &member)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if !exists {
		return game.NotFound(fmt.Sprintf("chat room %d not found", roomID))
	}
	if !member {
		return game.Unauthorized("you must be part of the chat room")
	}
	return nil
}

// RequireChatMember échoue si userID ne fait pas partie de la room
func RequireChatMember(ctx context.Context, userID, roomID int64) error {
	return requireMember(ctx, database.DB, roomID, userID)
}

// GetChatRoom renvoie la room avec ses membres (membres uniquement)
func GetChatRoom(ctx context.Context, actorID, roomID int64) (*model.ChatRoom, error) {
	if err := requireMember(ctx, database.DB, roomID, actorID); err != nil {
		return nil, err
	}
	room, err := scanner.ScanChatRoom(database.DB.QueryRow(ctx, scanner.ChatRoomSelect+` WHERE r.id = $1`, roomID))
	if err != nil {
		return nil, database.MapError(err, fmt.Sprintf("chat room %d", roomID))
	}

	rows, err := database.DB.Query(ctx,
		`SELECT u.id, u.username, u.image FROM chat_members m
		 JOIN users u ON u.id = m.user_id
		 WHERE m.room_id = $1 ORDER BY u.username`,
		roomID,
	)
	if err != nil {
		return nil, fmt.Errorf("room members: %w", err)
	}
	defer rows.Close()

	room.Members = []model.UserSummary{}
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Image); err != nil {
			return nil, err
		}
		room.Members = append(room.Members, u)
	}
	return room, rows.Err()
}

// ListChatRooms liste les rooms de l'utilisateur, dernier message en premier
func ListChatRooms(ctx context.Context, userID int64) ([]model.ChatRoom, error) {
	rows, err := database.DB.Query(ctx,
		scanner.ChatRoomSelect+`
		JOIN chat_members m ON m.room_id = r.id
		WHERE m.user_id = $1
		ORDER BY r.last_messaged_at DESC NULLS LAST, r.created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list chat rooms: %w", err)
	}
	defer rows.Close()

	rooms := []model.ChatRoom{}
	for rows.Next() {
		r, err := scanner.ScanChatRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *r)
	}
	return rooms, rows.Err()
}

// NewMessage porte exactement un contenu: texte, post partagé ou image
type NewMessage struct {
	Text     *string
	PostID   *int64
	ImageURL *string
}

// Validate vérifie qu'un et un seul contenu est fourni
func (m NewMessage) Validate() error {
	n := 0
	if m.Text != nil && strings.TrimSpace(*m.Text) != "" {
		n++
	}
	if m.PostID != nil {
		n++
	}
	if m.ImageURL != nil && *m.ImageURL != "" {
		n++
	}
	if n != 1 {
		return game.InvalidArgument("a message carries exactly one of text, post or image")
	}
	return nil
}

// SendMessage enregistre le message et met à jour last_messaged_at dans la même transaction
func SendMessage(ctx context.Context, actorID, roomID int64, msg NewMessage) (*model.Message, error) {
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	if msg.Text != nil {
		text := SanitizeText(*msg.Text)
		msg.Text = &text
	}

	var messageID int64
	err := database.WithTx(ctx, func(tx pgx.Tx) error {
		if err := requireMember(ctx, tx, roomID, actorID); err != nil {
			return err
		}
		if msg.PostID != nil {
			if _, err := checkPostAccess(ctx, tx, actorID, *msg.PostID); err != nil {
				return err
			}
		}

		var ts time.Time
		err := tx.QueryRow(ctx,
			`INSERT INTO messages (uuid, room_id, author_id, text, post_id, image)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 RETURNING id, timestamp`,
			uuid.NewString(), roomID, actorID,
			scanner.StringPointerToNull(msg.Text), scanner.Int64PointerToNull(msg.PostID), scanner.StringPointerToNull(msg.ImageURL),
		).Scan(&messageID, &ts)
		if err != nil {
			return fmt.Errorf("insert message: %w", err)
		}

		_, err = tx.Exec(ctx, `UPDATE chat_rooms SET last_messaged_at = $2 WHERE id = $1`, roomID, ts)
		return err
	})
	if err != nil {
		return nil, err
	}

	m, err := scanner.ScanMessage(database.DB.QueryRow(ctx, scanner.MessageSelect+` WHERE m.id = $1`, messageID))
	if err != nil {
		return nil, database.MapError(err, "message")
	}
	return m, nil
}

// ListMessages liste les messages d'une room, les plus anciens d'abord
func ListMessages(ctx context.Context, actorID, roomID int64) ([]model.Message, error) {
	if err := requireMember(ctx, database.DB, roomID, actorID); err != nil {
		return nil, err
	}
	rows, err := database.DB.Query(ctx,
		scanner.MessageSelect+` WHERE m.room_id = $1 ORDER BY m.timestamp, m.id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanner.ScanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}
