package scanner

import (
	"database/sql"

	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// Row est satisfait par pgx.Row et pgx.Rows.
// Les colonnes text[] se scannent directement dans un []string (codec natif pgx)
type Row interface {
	Scan(dest ...interface{}) error
}

// Colonnes attendues par ScanUserProfile (alias de table: u)
const UserColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.bio,
	u.visibility, u.points, u.image, u.cover_image, u.is_active, u.date_joined, u.updated_at,
	(SELECT COUNT(*) FROM user_follows f WHERE f.followee_id = u.id),
	(SELECT COUNT(*) FROM user_follows f WHERE f.follower_id = u.id)`

// ScanUserProfile scanne une ligne SQL vers un UserProfile
func ScanUserProfile(row Row) (*model.UserProfile, error) {
	var user model.UserProfile
	var visibility int

	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &user.Bio,
		&visibility, &user.Points, &user.Image, &user.CoverImage, &user.IsActive,
		&user.DateJoined, &user.UpdatedAt,
		&user.Followers, &user.Following,
	)
	if err != nil {
		return nil, err
	}

	user.Visibility = model.ProfileVisibility(visibility)
	return &user, nil
}

// PostSelect sélectionne les posts vus par l'utilisateur $1 (0 si anonyme)
const PostSelect = `SELECT p.id, p.author_id, a.username, a.image,
	p.caption, p.gps_tag, p.image_url,
	(SELECT COUNT(*) FROM post_upvotes v WHERE v.post_id = p.id),
	p.views, p.visibility, p.channel_id,
	ARRAY(SELECT t.name FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = p.id ORDER BY t.name),
	ARRAY(SELECT tu.username FROM post_tagged_users ptu JOIN users tu ON tu.id = ptu.user_id WHERE ptu.post_id = p.id ORDER BY tu.username),
	EXISTS(SELECT 1 FROM post_upvotes v WHERE v.post_id = p.id AND v.user_id = $1),
	p.date_created
FROM posts p
JOIN users a ON a.id = p.author_id`

// ScanPost scanne une ligne de PostSelect vers un Post
func ScanPost(row Row) (*model.Post, error) {
	var p model.Post
	var author model.UserSummary
	var visibility int
	var channelID sql.NullInt64
	var tags, tagged []string

	err := row.Scan(
		&p.ID, &p.AuthorID, &author.Username, &author.Image,
		&p.Caption, &p.GPSTag, &p.ImageURL,
		&p.Upvotes, &p.Views, &visibility, &channelID,
		&tags, &tagged,
		&p.UserUpvoted, &p.DateCreated,
	)
	if err != nil {
		return nil, err
	}

	author.ID = p.AuthorID
	p.Author = &author
	p.Visibility = model.PostVisibility(visibility)
	p.ChannelID = NullInt64ToPointer(channelID)
	p.Tags = nonNil(tags)
	p.TaggedUsers = nonNil(tagged)

	return &p, nil
}

const GameSelect = `SELECT g.id, g.name, g.description, g.creator_id, g.channel_id, c.name, l.id,
	g.image, g.pin_color,
	(SELECT COUNT(*) FROM game_subscribers s WHERE s.game_id = g.id),
	(SELECT COUNT(*) FROM game_posts gp WHERE gp.game_id = g.id),
	ARRAY(SELECT t.name FROM game_tags gt JOIN tags t ON t.id = gt.tag_id WHERE gt.game_id = g.id ORDER BY t.name),
	g.created_at
FROM games g
JOIN channels c ON c.id = g.channel_id
LEFT JOIN leaderboards l ON l.game_id = g.id`

// ScanGame scanne une ligne de GameSelect vers un Game
func ScanGame(row Row) (*model.Game, error) {
	var g model.Game
	var leaderboardID sql.NullInt64
	var tags []string

	err := row.Scan(
		&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.ChannelID, &g.ChannelName, &leaderboardID,
		&g.Image, &g.PinColorHex,
		&g.Subscribers, &g.Posts, &tags,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	g.LeaderboardID = NullInt64ToPointer(leaderboardID)
	g.Tags = nonNil(tags)
	return &g, nil
}

const ChannelSelect = `SELECT c.id, c.name, c.description, c.cover_image, c.avatar,
	(SELECT COUNT(*) FROM channel_subscribers s WHERE s.channel_id = c.id),
	ARRAY(SELECT t.name FROM channel_tags ct JOIN tags t ON t.id = ct.tag_id WHERE ct.channel_id = c.id ORDER BY t.name),
	c.created_at
FROM channels c`

func ScanChannel(row Row) (*model.Channel, error) {
	var c model.Channel
	var tags []string

	err := row.Scan(
		&c.ID, &c.Name, &c.Description, &c.CoverImage, &c.Avatar,
		&c.Subscribers, &tags, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Tags = nonNil(tags)
	return &c, nil
}

const CommentSelect = `SELECT cm.id, cm.post_id, cm.author_id, a.username, a.image,
	cm.content, cm.reply_to, cm.date_created
FROM comments cm
JOIN users a ON a.id = cm.author_id`

func ScanComment(row Row) (*model.Comment, error) {
	var c model.Comment
	var author model.UserSummary
	var replyTo sql.NullInt64

	err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &author.Username, &author.Image,
		&c.Content, &replyTo, &c.DateCreated,
	)
	if err != nil {
		return nil, err
	}

	author.ID = c.AuthorID
	c.Author = &author
	c.ReplyTo = NullInt64ToPointer(replyTo)
	return &c, nil
}

const TagSelect = `SELECT id, name, description, created_on FROM tags`

func ScanTag(row Row) (*model.Tag, error) {
	var t model.Tag
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedOn); err != nil {
		return nil, err
	}
	return &t, nil
}

const ChatRoomSelect = `SELECT r.id, r.uuid::text, r.name, r.created_by, r.created_at, r.last_messaged_at
FROM chat_rooms r`

func ScanChatRoom(row Row) (*model.ChatRoom, error) {
	var r model.ChatRoom
	var last sql.NullTime

	if err := row.Scan(&r.ID, &r.UUID, &r.Name, &r.CreatedBy, &r.CreatedAt, &last); err != nil {
		return nil, err
	}

	r.LastMessagedAt = NullTimeToPointer(last)
	return &r, nil
}

const MessageSelect = `SELECT m.id, m.uuid::text, m.room_id, m.author_id, a.username, a.image,
	m.text, m.post_id, m.image, m.timestamp
FROM messages m
JOIN users a ON a.id = m.author_id`

func ScanMessage(row Row) (*model.Message, error) {
	var m model.Message
	var author model.UserSummary
	var text, image sql.NullString
	var postID sql.NullInt64

	err := row.Scan(
		&m.ID, &m.UUID, &m.RoomID, &m.AuthorID, &author.Username, &author.Image,
		&text, &postID, &image, &m.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	author.ID = m.AuthorID
	m.Author = &author
	m.Text = NullStringToPointer(text)
	m.PostID = NullInt64ToPointer(postID)
	m.Image = NullStringToPointer(image)
	return &m, nil
}

// ScanLeaderboardRow scanne (id, leaderboard_id, user_id, username, points, timestamp)
func ScanLeaderboardRow(row Row) (*model.LeaderboardRow, error) {
	var r model.LeaderboardRow
	if err := row.Scan(&r.ID, &r.LeaderboardID, &r.UserID, &r.Username, &r.Points, &r.Timestamp); err != nil {
		return nil, err
	}
	return &r, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
