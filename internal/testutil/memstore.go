// Package testutil fournit des fixtures en mémoire pour les tests du workflow et des handlers
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
)

// MemStore est un game.Store en mémoire. InGame garde un mutex par game pendant
// toute la transaction; une transaction en échec rejoue son journal d'annulation.
type MemStore struct {
	mu        sync.Mutex
	gameLocks map[int64]*sync.Mutex
	nextID    int64

	users        map[int64]*model.UserProfile
	channels     map[int64]*model.Channel
	channelSubs  map[int64]map[int64]bool
	posts        map[int64]*model.Post
	games        map[int64]*model.Game
	gameSubs     map[int64]map[int64]bool
	gamePosts    map[int64]map[int64]bool
	leaderboards map[int64]int64
	rows         map[int64][]model.LeaderboardRow
	pending      map[int64]*model.PendingSubmission
}

var _ game.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		gameLocks:    map[int64]*sync.Mutex{},
		users:        map[int64]*model.UserProfile{},
		channels:     map[int64]*model.Channel{},
		channelSubs:  map[int64]map[int64]bool{},
		posts:        map[int64]*model.Post{},
		games:        map[int64]*model.Game{},
		gameSubs:     map[int64]map[int64]bool{},
		gamePosts:    map[int64]map[int64]bool{},
		leaderboards: map[int64]int64{},
		rows:         map[int64][]model.LeaderboardRow{},
		pending:      map[int64]*model.PendingSubmission{},
	}
}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

// Fixtures

func (s *MemStore) AddUser(username string) *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.UserProfile{
		ID:         s.id(),
		Username:   username,
		Email:      username + "@example.com",
		IsActive:   true,
		DateJoined: time.Now().UTC(),
	}
	s.users[u.ID] = u
	return u
}

// AddChannel crée un channel avec ces utilisateurs abonnés
func (s *MemStore) AddChannel(name string, subscribers ...int64) *model.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Channel{ID: s.id(), Name: name, Tags: []string{}, CreatedAt: time.Now().UTC()}
	s.channels[c.ID] = c
	s.channelSubs[c.ID] = map[int64]bool{}
	for _, u := range subscribers {
		s.channelSubs[c.ID][u] = true
	}
	return c
}

func (s *MemStore) SubscribeChannel(channelID, userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.channelSubs[channelID] == nil {
		s.channelSubs[channelID] = map[int64]bool{}
	}
	s.channelSubs[channelID][userID] = true
}

func (s *MemStore) AddPost(authorID int64) *model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Post{ID: s.id(), AuthorID: authorID, Tags: []string{}, TaggedUsers: []string{}, DateCreated: time.Now().UTC()}
	s.posts[p.ID] = p
	return p
}

// Points renvoie les points courants d'un utilisateur
func (s *MemStore) Points(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		return u.Points
	}
	return 0
}

// Rows renvoie une copie des lignes du leaderboard d'un game
func (s *MemStore) Rows(gameID int64) []model.LeaderboardRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.LeaderboardID == nil {
		return nil
	}
	return append([]model.LeaderboardRow(nil), s.rows[*g.LeaderboardID]...)
}

func (s *MemStore) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *MemStore) GamePostCount(gameID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.gamePosts[gameID])
}

// DropLeaderboard détache le leaderboard du game, comme une suppression hors workflow
func (s *MemStore) DropLeaderboard(gameID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok || g.LeaderboardID == nil {
		return
	}
	delete(s.rows, *g.LeaderboardID)
	delete(s.leaderboards, *g.LeaderboardID)
	g.LeaderboardID = nil
}

// game.Store

func (s *MemStore) InGame(ctx context.Context, gameID int64, fn func(tx game.Tx) error) error {
	s.mu.Lock()
	if _, ok := s.games[gameID]; !ok {
		s.mu.Unlock()
		return game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}
	lock, ok := s.gameLocks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.gameLocks[gameID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	defer lock.Unlock()

	// le game a pu être supprimé pendant l'attente du verrou
	s.mu.Lock()
	_, ok = s.games[gameID]
	s.mu.Unlock()
	if !ok {
		return game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}

	return s.InTx(ctx, fn)
}

func (s *MemStore) InTx(ctx context.Context, fn func(tx game.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := &memTx{s: s}
	if err := fn(tx); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *MemStore) PendingSubmissionGame(ctx context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[id]
	if !ok {
		return 0, game.NotFound(fmt.Sprintf("pending submission %d not found", id))
	}
	return p.GameID, nil
}

type memTx struct {
	s    *MemStore
	undo []func()
}

func (t *memTx) onRollback(fn func()) {
	t.undo = append(t.undo, fn)
}

func (t *memTx) rollback() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
}

func (t *memTx) lock() func() {
	t.s.mu.Lock()
	return t.s.mu.Unlock
}

func (t *memTx) GetUser(ctx context.Context, userID int64) (*model.UserProfile, error) {
	defer t.lock()()
	u, ok := t.s.users[userID]
	if !ok {
		return nil, game.NotFound(fmt.Sprintf("user %d not found", userID))
	}
	cp := *u
	return &cp, nil
}

func (t *memTx) GetChannel(ctx context.Context, channelID int64) (*model.Channel, error) {
	defer t.lock()()
	c, ok := t.s.channels[channelID]
	if !ok {
		return nil, game.NotFound(fmt.Sprintf("channel %d not found", channelID))
	}
	cp := *c
	return &cp, nil
}

func (t *memTx) GetChannelByName(ctx context.Context, name string) (*model.Channel, error) {
	defer t.lock()()
	for _, c := range t.s.channels {
		if c.Name == name {
			cp := *c
			return &cp, nil
		}
	}
	return nil, game.NotFound(fmt.Sprintf("channel %q not found", name))
}

func (t *memTx) GetGame(ctx context.Context, gameID int64) (*model.Game, error) {
	defer t.lock()()
	g, ok := t.s.games[gameID]
	if !ok {
		return nil, game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}
	cp := *g
	cp.Subscribers = len(t.s.gameSubs[gameID])
	cp.Posts = len(t.s.gamePosts[gameID])
	return &cp, nil
}

func (t *memTx) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	defer t.lock()()
	p, ok := t.s.posts[postID]
	if !ok {
		return nil, game.NotFound(fmt.Sprintf("post %d not found", postID))
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) IsChannelSubscriber(ctx context.Context, channelID, userID int64) (bool, error) {
	defer t.lock()()
	return t.s.channelSubs[channelID][userID], nil
}

func (t *memTx) IsGameSubscriber(ctx context.Context, gameID, userID int64) (bool, error) {
	defer t.lock()()
	return t.s.gameSubs[gameID][userID], nil
}

func (t *memTx) AddGameSubscriber(ctx context.Context, gameID, userID int64) error {
	defer t.lock()()
	if t.s.gameSubs[gameID] == nil {
		t.s.gameSubs[gameID] = map[int64]bool{}
	}
	if t.s.gameSubs[gameID][userID] {
		return nil
	}
	t.s.gameSubs[gameID][userID] = true
	t.onRollback(func() { delete(t.s.gameSubs[gameID], userID) })
	return nil
}

func (t *memTx) RemoveGameSubscriber(ctx context.Context, gameID, userID int64) error {
	defer t.lock()()
	if !t.s.gameSubs[gameID][userID] {
		return nil
	}
	delete(t.s.gameSubs[gameID], userID)
	t.onRollback(func() { t.s.gameSubs[gameID][userID] = true })
	return nil
}

func (t *memTx) PinColorTaken(ctx context.Context, hex string) (bool, error) {
	defer t.lock()()
	for _, g := range t.s.games {
		if g.PinColorHex == hex {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertGame(ctx context.Context, g *model.Game) error {
	defer t.lock()()
	for _, other := range t.s.games {
		if other.ChannelID == g.ChannelID && other.Name == g.Name {
			return fmt.Errorf("insert game: %w", game.ErrConflict)
		}
		if other.PinColorHex == g.PinColorHex {
			return fmt.Errorf("insert game: %w", game.ErrPinColorTaken)
		}
	}
	g.ID = t.s.id()
	cp := *g
	t.s.games[g.ID] = &cp
	t.onRollback(func() { delete(t.s.games, g.ID) })
	return nil
}

func (t *memTx) InsertLeaderboard(ctx context.Context, gameID int64) (int64, error) {
	defer t.lock()()
	g, ok := t.s.games[gameID]
	if !ok {
		return 0, game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}
	if g.LeaderboardID != nil {
		return 0, fmt.Errorf("insert leaderboard: %w", game.ErrConflict)
	}
	id := t.s.id()
	t.s.leaderboards[id] = gameID
	g.LeaderboardID = &id
	t.onRollback(func() {
		delete(t.s.leaderboards, id)
		g.LeaderboardID = nil
	})
	return id, nil
}

func (t *memTx) DeleteGame(ctx context.Context, gameID int64) error {
	defer t.lock()()
	g, ok := t.s.games[gameID]
	if !ok {
		return game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}
	subs, posts := t.s.gameSubs[gameID], t.s.gamePosts[gameID]
	var rows []model.LeaderboardRow
	if g.LeaderboardID != nil {
		rows = t.s.rows[*g.LeaderboardID]
		delete(t.s.rows, *g.LeaderboardID)
		delete(t.s.leaderboards, *g.LeaderboardID)
	}
	removed := map[int64]*model.PendingSubmission{}
	for id, p := range t.s.pending {
		if p.GameID == gameID {
			removed[id] = p
			delete(t.s.pending, id)
		}
	}
	delete(t.s.games, gameID)
	delete(t.s.gameSubs, gameID)
	delete(t.s.gamePosts, gameID)

	t.onRollback(func() {
		t.s.games[gameID] = g
		t.s.gameSubs[gameID] = subs
		t.s.gamePosts[gameID] = posts
		if g.LeaderboardID != nil {
			t.s.leaderboards[*g.LeaderboardID] = gameID
			t.s.rows[*g.LeaderboardID] = rows
		}
		for id, p := range removed {
			t.s.pending[id] = p
		}
	})
	return nil
}

func (t *memTx) SetGameDescription(ctx context.Context, gameID int64, description string) error {
	defer t.lock()()
	g, ok := t.s.games[gameID]
	if !ok {
		return game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}
	old := g.Description
	g.Description = description
	t.onRollback(func() { g.Description = old })
	return nil
}

func (t *memTx) SetGameImage(ctx context.Context, gameID int64, imageURL string) error {
	defer t.lock()()
	g, ok := t.s.games[gameID]
	if !ok {
		return game.NotFound(fmt.Sprintf("game %d not found", gameID))
	}
	old := g.Image
	g.Image = imageURL
	t.onRollback(func() { g.Image = old })
	return nil
}

func (t *memTx) InsertPendingSubmission(ctx context.Context, p *model.PendingSubmission) error {
	defer t.lock()()
	for _, other := range t.s.pending {
		if other.GameID == p.GameID && other.PostID == p.PostID {
			return fmt.Errorf("insert pending submission: %w", game.ErrConflict)
		}
	}
	p.ID = t.s.id()
	cp := *p
	t.s.pending[p.ID] = &cp
	t.onRollback(func() { delete(t.s.pending, p.ID) })
	return nil
}

func (t *memTx) GetPendingSubmission(ctx context.Context, id int64) (*model.PendingSubmission, error) {
	defer t.lock()()
	p, ok := t.s.pending[id]
	if !ok {
		return nil, game.NotFound(fmt.Sprintf("pending submission %d not found", id))
	}
	cp := *p
	return &cp, nil
}

func (t *memTx) DeletePendingSubmission(ctx context.Context, id int64) error {
	defer t.lock()()
	p, ok := t.s.pending[id]
	if !ok {
		return game.NotFound(fmt.Sprintf("pending submission %d not found", id))
	}
	delete(t.s.pending, id)
	t.onRollback(func() { t.s.pending[id] = p })
	return nil
}

func (t *memTx) ListPendingSubmissions(ctx context.Context, gameID int64) ([]model.PendingSubmission, error) {
	defer t.lock()()
	out := []model.PendingSubmission{}
	for _, p := range t.s.pending {
		if p.GameID == gameID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (t *memTx) AddGamePost(ctx context.Context, gameID, postID int64) error {
	defer t.lock()()
	if t.s.gamePosts[gameID] == nil {
		t.s.gamePosts[gameID] = map[int64]bool{}
	}
	if t.s.gamePosts[gameID][postID] {
		return nil
	}
	t.s.gamePosts[gameID][postID] = true
	t.onRollback(func() { delete(t.s.gamePosts[gameID], postID) })
	return nil
}

func (t *memTx) CountAcceptedPosts(ctx context.Context, gameID, authorID int64) (int, error) {
	defer t.lock()()
	n := 0
	for postID := range t.s.gamePosts[gameID] {
		if p, ok := t.s.posts[postID]; ok && p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CountLeaderboardRows(ctx context.Context, leaderboardID int64) (int, error) {
	defer t.lock()()
	return len(t.s.rows[leaderboardID]), nil
}

func (t *memTx) InsertLeaderboardRow(ctx context.Context, row *model.LeaderboardRow) error {
	defer t.lock()()
	if _, ok := t.s.leaderboards[row.LeaderboardID]; !ok {
		return game.ErrLeaderboardMissing
	}
	row.ID = t.s.id()
	t.s.rows[row.LeaderboardID] = append(t.s.rows[row.LeaderboardID], *row)
	lbID := row.LeaderboardID
	t.onRollback(func() {
		rows := t.s.rows[lbID]
		t.s.rows[lbID] = rows[:len(rows)-1]
	})
	return nil
}

func (t *memTx) ListLeaderboardRows(ctx context.Context, leaderboardID int64) ([]model.LeaderboardRow, error) {
	defer t.lock()()
	return append([]model.LeaderboardRow{}, t.s.rows[leaderboardID]...), nil
}

func (t *memTx) IncrementUserPoints(ctx context.Context, userID int64, delta int) error {
	defer t.lock()()
	u, ok := t.s.users[userID]
	if !ok {
		return game.NotFound(fmt.Sprintf("user %d not found", userID))
	}
	u.Points += delta
	t.onRollback(func() { u.Points -= delta })
	return nil
}
