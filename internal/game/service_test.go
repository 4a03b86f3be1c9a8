package game_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/testutil"
)

type recordingCache struct {
	mu    sync.Mutex
	games []int64
}

func (c *recordingCache) InvalidateGame(_ context.Context, gameID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.games = append(c.games, gameID)
}

type fixture struct {
	ctx         context.Context
	store       *testutil.MemStore
	svc         *game.Service
	cache       *recordingCache
	creator     *model.UserProfile
	mod         *model.UserProfile
	channel     *model.Channel
	game        *model.Game
	creatorPost *model.Post
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		store: testutil.NewMemStore(),
		cache: &recordingCache{},
	}
	f.svc = game.NewService(f.store, game.WithInvalidator(f.cache))
	f.creator = f.store.AddUser("creator")
	f.mod = f.store.AddUser("mod")
	f.channel = f.store.AddChannel("streetart", f.creator.ID, f.mod.ID)

	g, err := f.svc.CreateGame(f.ctx, f.channel.ID, "murals", "find the murals", f.creator.ID)
	require.NoError(t, err)
	f.game = g
	f.creatorPost = f.store.AddPost(f.creator.ID)
	return f
}

// player ajoute un utilisateur abonné au channel et au game
func (f *fixture) player(t *testing.T, name string) *model.UserProfile {
	t.Helper()
	u := f.store.AddUser(name)
	f.store.SubscribeChannel(f.channel.ID, u.ID)
	require.NoError(t, f.svc.Subscription(f.ctx, f.game.ID, model.ModifierAdd, u.ID))
	return u
}

// propose crée un post pour u et le soumet au game de la fixture
func (f *fixture) propose(t *testing.T, u *model.UserProfile) *model.PendingSubmission {
	t.Helper()
	post := f.store.AddPost(u.ID)
	p, err := f.svc.ProposeSubmission(f.ctx, f.game.ID, post.ID, f.creatorPost.ID, u.ID)
	require.NoError(t, err)
	return p
}

func (f *fixture) accept(t *testing.T, p *model.PendingSubmission) *game.DecisionResult {
	t.Helper()
	res, err := f.svc.Decide(f.ctx, p.ID, model.DecisionAccept, f.mod.ID)
	require.NoError(t, err)
	return res
}

func TestCreateGame(t *testing.T) {
	f := newFixture(t)

	require.NotNil(t, f.game.LeaderboardID)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, f.game.PinColorHex)
	assert.Equal(t, f.creator.ID, f.game.CreatorID)

	got, err := f.svc.GetGame(f.ctx, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Subscribers)

	board, err := f.svc.Leaderboard(f.ctx, f.game.ID)
	require.NoError(t, err)
	assert.Empty(t, board.Rows)

	t.Run("duplicate name in channel", func(t *testing.T) {
		_, err := f.svc.CreateGame(f.ctx, f.channel.ID, "murals", "", f.mod.ID)
		assert.ErrorIs(t, err, game.ErrConflict)
	})

	t.Run("same name in another channel", func(t *testing.T) {
		other := f.store.AddChannel("sculptures", f.mod.ID)
		_, err := f.svc.CreateGame(f.ctx, other.ID, "murals", "", f.mod.ID)
		assert.NoError(t, err)
	})

	t.Run("not subscribed to channel", func(t *testing.T) {
		stranger := f.store.AddUser("stranger")
		_, err := f.svc.CreateGame(f.ctx, f.channel.ID, "bridges", "", stranger.ID)
		assert.ErrorIs(t, err, game.ErrUnauthorized)
	})

	t.Run("unknown channel", func(t *testing.T) {
		_, err := f.svc.CreateGame(f.ctx, 4242, "bridges", "", f.mod.ID)
		assert.ErrorIs(t, err, game.ErrNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.svc.CreateGame(f.ctx, f.channel.ID, "bridges", "", 0)
		assert.ErrorIs(t, err, game.ErrUnauthenticated)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := f.svc.CreateGame(f.ctx, f.channel.ID, "  ", "", f.mod.ID)
		assert.ErrorIs(t, err, game.ErrInvalidArgument)
	})
}

func TestCreateGame_PinColorRetries(t *testing.T) {
	store := testutil.NewMemStore()
	u := store.AddUser("u")
	channel := store.AddChannel("c", u.ID)

	colors := []string{"#000001", "#000001", "#000002"}
	next := 0
	svc := game.NewService(store, game.WithPinColors(func() string {
		c := colors[next]
		next++
		return c
	}))

	first, err := svc.CreateGame(context.Background(), channel.ID, "one", "", u.ID)
	require.NoError(t, err)
	second, err := svc.CreateGame(context.Background(), channel.ID, "two", "", u.ID)
	require.NoError(t, err)

	assert.Equal(t, "#000001", first.PinColorHex)
	assert.Equal(t, "#000002", second.PinColorHex)
}

func TestProposeSubmission(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")
	post := f.store.AddPost(u.ID)

	p, err := f.svc.ProposeSubmission(f.ctx, f.game.ID, post.ID, f.creatorPost.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, f.game.ID, p.GameID)
	assert.Equal(t, post.ID, p.PostID)
	assert.Equal(t, f.creatorPost.ID, p.CreatorPostID)
	assert.Equal(t, f.channel.ID, p.ChannelID)

	t.Run("same key twice", func(t *testing.T) {
		_, err := f.svc.ProposeSubmission(f.ctx, f.game.ID, post.ID, f.creatorPost.ID, u.ID)
		assert.ErrorIs(t, err, game.ErrConflict)
		assert.Equal(t, 1, f.store.PendingCount())
	})

	t.Run("missing references", func(t *testing.T) {
		_, err := f.svc.ProposeSubmission(f.ctx, 9999, post.ID, f.creatorPost.ID, u.ID)
		assert.ErrorIs(t, err, game.ErrNotFound)
		_, err = f.svc.ProposeSubmission(f.ctx, f.game.ID, 9999, f.creatorPost.ID, u.ID)
		assert.ErrorIs(t, err, game.ErrNotFound)
		_, err = f.svc.ProposeSubmission(f.ctx, f.game.ID, post.ID, 9999, u.ID)
		assert.ErrorIs(t, err, game.ErrNotFound)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		_, err := f.svc.ProposeSubmission(f.ctx, f.game.ID, post.ID, f.creatorPost.ID, 0)
		assert.ErrorIs(t, err, game.ErrUnauthenticated)
	})

	t.Run("not subscribed to the game", func(t *testing.T) {
		lurker := f.store.AddUser("lurker")
		f.store.SubscribeChannel(f.channel.ID, lurker.ID)
		lurkerPost := f.store.AddPost(lurker.ID)

		_, err := f.svc.ProposeSubmission(f.ctx, f.game.ID, lurkerPost.ID, f.creatorPost.ID, lurker.ID)
		assert.ErrorIs(t, err, game.ErrUnauthorized)
		assert.Equal(t, 1, f.store.PendingCount())
	})

	t.Run("someone else's post", func(t *testing.T) {
		other := f.player(t, "other")
		_, err := f.svc.ProposeSubmission(f.ctx, f.game.ID, f.creatorPost.ID, f.creatorPost.ID, other.ID)
		assert.ErrorIs(t, err, game.ErrUnauthorized)
	})

	// aucune soumission ne touche aux points ni au classement
	assert.Equal(t, 0, f.store.Points(u.ID))
	assert.Empty(t, f.store.Rows(f.game.ID))
}

func TestDecide_Reject(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")
	p := f.propose(t, u)

	res, err := f.svc.Decide(f.ctx, p.ID, model.DecisionReject, f.mod.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DecisionReject, res.Decision)
	assert.Nil(t, res.Award)

	assert.Equal(t, 0, f.store.GamePostCount(f.game.ID))
	assert.Empty(t, f.store.Rows(f.game.ID))
	assert.Equal(t, 0, f.store.Points(u.ID))
	assert.Equal(t, game.RejectModeratorBonus, f.store.Points(f.mod.ID))
	assert.Equal(t, 0, f.store.PendingCount())
}

func TestDecide_Terminal(t *testing.T) {
	for _, first := range []model.Decision{model.DecisionAccept, model.DecisionReject} {
		t.Run(string(first), func(t *testing.T) {
			f := newFixture(t)
			p := f.propose(t, f.player(t, "u"))

			_, err := f.svc.Decide(f.ctx, p.ID, first, f.mod.ID)
			require.NoError(t, err)

			for _, again := range []model.Decision{model.DecisionAccept, model.DecisionReject} {
				_, err := f.svc.Decide(f.ctx, p.ID, again, f.mod.ID)
				assert.ErrorIs(t, err, game.ErrNotFound)
			}
		})
	}
}

func TestDecide_Preconditions(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")
	p := f.propose(t, u)

	_, err := f.svc.Decide(f.ctx, p.ID, model.DecisionAccept, 0)
	assert.ErrorIs(t, err, game.ErrUnauthenticated)

	_, err = f.svc.Decide(f.ctx, p.ID, "MAYBE", f.mod.ID)
	assert.ErrorIs(t, err, game.ErrInvalidArgument)

	stranger := f.store.AddUser("stranger")
	_, err = f.svc.Decide(f.ctx, p.ID, model.DecisionAccept, stranger.ID)
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	_, err = f.svc.Decide(f.ctx, 9999, model.DecisionAccept, f.mod.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)

	assert.Equal(t, 1, f.store.PendingCount())
	assert.Equal(t, 0, f.store.Points(stranger.ID))
	assert.Equal(t, 0, f.store.GamePostCount(f.game.ID))
}

func TestDecide_AcceptBeforeCreatorCatchesUp(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")

	res := f.accept(t, f.propose(t, u))

	// 1 post accepté pour u, 0 pour le créateur: pas de ligne
	require.NotNil(t, res.Award)
	assert.False(t, res.Award.Awarded)
	assert.Empty(t, f.store.Rows(f.game.ID))
	assert.Equal(t, game.AcceptAuthorBonus, f.store.Points(u.ID))
	assert.Equal(t, game.AcceptModeratorBonus, f.store.Points(f.mod.ID))
	assert.Equal(t, 1, f.store.GamePostCount(f.game.ID))
	assert.Equal(t, 0, f.store.PendingCount())

	// le post du créateur égalise son propre compteur: la ligne est pour lui
	f.accept(t, f.propose(t, f.creator))

	rows := f.store.Rows(f.game.ID)
	require.Len(t, rows, 1)
	assert.Equal(t, f.creator.ID, rows[0].UserID)
	assert.Equal(t, 1000, rows[0].Points)
	assert.Equal(t, game.AcceptAuthorBonus+1000, f.store.Points(f.creator.ID))
	assert.Equal(t, game.AcceptAuthorBonus, f.store.Points(u.ID))
}

func TestDecide_UserMatchesCreator(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")

	first := f.accept(t, f.propose(t, f.creator))
	assert.True(t, first.Award.Awarded)
	assert.Equal(t, 1000, first.Award.Points)

	res := f.accept(t, f.propose(t, u))
	require.True(t, res.Award.Awarded)
	assert.Equal(t, 800, res.Award.Points)
	assert.Equal(t, 2, res.Award.Rank)

	rows := f.store.Rows(f.game.ID)
	require.Len(t, rows, 2)
	assert.Equal(t, u.ID, rows[1].UserID)
	assert.Equal(t, "u", rows[1].Username)
	assert.Equal(t, game.AcceptAuthorBonus+800, f.store.Points(u.ID))
	assert.Equal(t, 2*game.AcceptModeratorBonus, f.store.Points(f.mod.ID))

	// u passe devant le créateur: plus d'égalité, plus de ligne
	again := f.accept(t, f.propose(t, u))
	assert.False(t, again.Award.Awarded)
	assert.Len(t, f.store.Rows(f.game.ID), 2)

	assert.Equal(t, []int64{f.game.ID, f.game.ID, f.game.ID}, f.cache.games)
}

func TestDecide_LeaderboardMissing(t *testing.T) {
	f := newFixture(t)
	p := f.propose(t, f.creator)
	f.store.DropLeaderboard(f.game.ID)

	_, err := f.svc.Decide(f.ctx, p.ID, model.DecisionAccept, f.mod.ID)
	assert.ErrorIs(t, err, game.ErrLeaderboardMissing)

	// la transaction est annulée en entier
	assert.Equal(t, 1, f.store.PendingCount())
	assert.Equal(t, 0, f.store.GamePostCount(f.game.ID))
	assert.Equal(t, 0, f.store.Points(f.creator.ID))
	assert.Equal(t, 0, f.store.Points(f.mod.ID))

	_, err = f.svc.Leaderboard(f.ctx, f.game.ID)
	assert.ErrorIs(t, err, game.ErrLeaderboardMissing)
}

func TestDecide_ConcurrentAccepts(t *testing.T) {
	f := newFixture(t)
	f.accept(t, f.propose(t, f.creator))

	const players = 8
	var pending []*model.PendingSubmission
	for i := 0; i < players; i++ {
		pending = append(pending, f.propose(t, f.player(t, string(rune('a'+i)))))
	}

	var wg sync.WaitGroup
	errs := make(chan error, players)
	for _, p := range pending {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.svc.Decide(f.ctx, id, model.DecisionAccept, f.mod.ID)
			errs <- err
		}(p.ID)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	rows := f.store.Rows(f.game.ID)
	require.Len(t, rows, players+1)

	var points []int
	for _, r := range rows {
		points = append(points, r.Points)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(points)))
	assert.Equal(t, []int{1000, 800, 600, 400, 200, 100, 100, 100, 100}, points)
	assert.Equal(t, (players+1)*game.AcceptModeratorBonus, f.store.Points(f.mod.ID))
}

func TestLeaderboardStandings(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")
	v := f.player(t, "v")

	f.accept(t, f.propose(t, f.creator))
	f.accept(t, f.propose(t, v))
	f.accept(t, f.propose(t, u))

	board, err := f.svc.Leaderboard(f.ctx, f.game.ID)
	require.NoError(t, err)
	require.Len(t, board.Rows, 3)
	require.Len(t, board.Standings, 3)

	assert.Equal(t, "creator", board.Standings[0].Username)
	assert.Equal(t, 1000, board.Standings[0].Points)
	assert.Equal(t, "v", board.Standings[1].Username)
	assert.Equal(t, 2, board.Standings[1].Rank)
	assert.Equal(t, "u", board.Standings[2].Username)
	assert.Equal(t, 600, board.Standings[2].Points)
}

func TestStandings_TieKeepsFirstScorer(t *testing.T) {
	rows := []model.LeaderboardRow{
		{UserID: 1, Username: "a", Points: 100},
		{UserID: 2, Username: "b", Points: 100},
		{UserID: 2, Username: "b", Points: 100},
		{UserID: 3, Username: "c", Points: 100},
	}
	got := game.Standings(rows)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].UserID)
	assert.Equal(t, int64(1), got[1].UserID)
	assert.Equal(t, int64(3), got[2].UserID)
	assert.Equal(t, 3, got[2].Rank)
}

func TestPendingSubmissions(t *testing.T) {
	f := newFixture(t)
	u := f.player(t, "u")
	first := f.propose(t, u)
	second := f.propose(t, u)

	list, err := f.svc.PendingSubmissions(f.ctx, f.game.ID, f.mod.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	stranger := f.store.AddUser("stranger")
	_, err = f.svc.PendingSubmissions(f.ctx, f.game.ID, stranger.ID)
	assert.ErrorIs(t, err, game.ErrUnauthorized)
}

func TestManageGame(t *testing.T) {
	f := newFixture(t)

	err := f.svc.ChangeDescription(f.ctx, f.game.ID, "new", f.mod.ID)
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	require.NoError(t, f.svc.ChangeDescription(f.ctx, f.game.ID, "new", f.creator.ID))
	require.NoError(t, f.svc.ChangeImage(f.ctx, f.game.ID, "https://img.example/g.png", f.creator.ID))
	got, err := f.svc.GetGame(f.ctx, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Description)
	assert.Equal(t, "https://img.example/g.png", got.Image)

	assert.ErrorIs(t, f.svc.DeleteGame(f.ctx, f.game.ID, f.mod.ID), game.ErrUnauthorized)
	require.NoError(t, f.svc.DeleteGame(f.ctx, f.game.ID, f.creator.ID))

	_, err = f.svc.GetGame(f.ctx, f.game.ID)
	assert.ErrorIs(t, err, game.ErrNotFound)
	assert.ErrorIs(t, f.svc.DeleteGame(f.ctx, f.game.ID, f.creator.ID), game.ErrNotFound)
}

func TestSubscription(t *testing.T) {
	f := newFixture(t)
	stranger := f.store.AddUser("stranger")

	err := f.svc.Subscription(f.ctx, f.game.ID, model.ModifierAdd, stranger.ID)
	assert.ErrorIs(t, err, game.ErrUnauthorized)

	require.NoError(t, f.svc.Subscription(f.ctx, f.game.ID, model.ModifierAdd, f.mod.ID))
	require.NoError(t, f.svc.Subscription(f.ctx, f.game.ID, model.ModifierAdd, f.mod.ID))
	got, err := f.svc.GetGame(f.ctx, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Subscribers)

	require.NoError(t, f.svc.Subscription(f.ctx, f.game.ID, model.ModifierRemove, f.mod.ID))
	got, err = f.svc.GetGame(f.ctx, f.game.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Subscribers)

	err = f.svc.Subscription(f.ctx, f.game.ID, "TOGGLE", f.mod.ID)
	assert.ErrorIs(t, err, game.ErrInvalidArgument)
}

// creditStore note l'ordre des mises à jour de points
type creditStore struct {
	*testutil.MemStore
	mu       sync.Mutex
	credited []int64
}

func (s *creditStore) InGame(ctx context.Context, gameID int64, fn func(tx game.Tx) error) error {
	return s.MemStore.InGame(ctx, gameID, func(tx game.Tx) error {
		return fn(&creditTx{Tx: tx, s: s})
	})
}

type creditTx struct {
	game.Tx
	s *creditStore
}

func (t *creditTx) IncrementUserPoints(ctx context.Context, userID int64, delta int) error {
	t.s.mu.Lock()
	t.s.credited = append(t.s.credited, userID)
	t.s.mu.Unlock()
	return t.Tx.IncrementUserPoints(ctx, userID, delta)
}

func TestDecide_CreditsUsersInIDOrder(t *testing.T) {
	ctx := context.Background()
	store := &creditStore{MemStore: testutil.NewMemStore()}
	mod := store.AddUser("mod")
	author := store.AddUser("author")
	require.Less(t, mod.ID, author.ID)
	channel := store.AddChannel("c", mod.ID, author.ID)

	svc := game.NewService(store)
	g, err := svc.CreateGame(ctx, channel.ID, "g", "", mod.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Subscription(ctx, g.ID, model.ModifierAdd, author.ID))

	creatorPost := store.AddPost(mod.ID)
	post := store.AddPost(author.ID)
	p, err := svc.ProposeSubmission(ctx, g.ID, post.ID, creatorPost.ID, author.ID)
	require.NoError(t, err)

	store.credited = nil
	res, err := svc.Decide(ctx, p.ID, model.DecisionAccept, mod.ID)
	require.NoError(t, err)
	assert.False(t, res.Award.Awarded)

	// auteur et modérateur sont crédités par id croissant, pas dans l'ordre des rôles
	assert.Equal(t, []int64{mod.ID, author.ID}, store.credited)
	assert.Equal(t, game.AcceptModeratorBonus, store.Points(mod.ID))
	assert.Equal(t, game.AcceptAuthorBonus, store.Points(author.ID))
}

func TestDecide_SelfDecisionCreditsOnce(t *testing.T) {
	f := newFixture(t)
	store := &creditStore{MemStore: f.store}
	svc := game.NewService(store)

	p, err := svc.ProposeSubmission(f.ctx, f.game.ID, f.store.AddPost(f.creator.ID).ID, f.creatorPost.ID, f.creator.ID)
	require.NoError(t, err)

	res, err := svc.Decide(f.ctx, p.ID, model.DecisionAccept, f.creator.ID)
	require.NoError(t, err)
	require.True(t, res.Award.Awarded)

	// un seul crédit pour les deux bonus, puis le classement
	assert.Equal(t, []int64{f.creator.ID, f.creator.ID}, store.credited)
	assert.Equal(t, game.AcceptAuthorBonus+game.AcceptModeratorBonus+1000, store.Points(f.creator.ID))
}

// racyPinStore dit toujours la couleur libre, comme si une autre transaction
// l'avait prise entre la vérification et l'insertion
type racyPinStore struct {
	*testutil.MemStore
}

func (s racyPinStore) InTx(ctx context.Context, fn func(tx game.Tx) error) error {
	return s.MemStore.InTx(ctx, func(tx game.Tx) error {
		return fn(racyPinTx{Tx: tx})
	})
}

type racyPinTx struct {
	game.Tx
}

func (racyPinTx) PinColorTaken(context.Context, string) (bool, error) {
	return false, nil
}

func TestCreateGame_PinColorRaceRetries(t *testing.T) {
	ctx := context.Background()
	mem := testutil.NewMemStore()
	u := mem.AddUser("u")
	channel := mem.AddChannel("c", u.ID)

	_, err := game.NewService(mem, game.WithPinColors(func() string { return "#000001" })).
		CreateGame(ctx, channel.ID, "one", "", u.ID)
	require.NoError(t, err)

	colors := []string{"#000001", "#000002"}
	next := 0
	svc := game.NewService(racyPinStore{mem}, game.WithPinColors(func() string {
		c := colors[next]
		next++
		return c
	}))

	second, err := svc.CreateGame(ctx, channel.ID, "two", "", u.ID)
	require.NoError(t, err)
	assert.Equal(t, "#000002", second.PinColorHex)

	t.Run("name conflict keeps its message", func(t *testing.T) {
		svc := game.NewService(racyPinStore{mem}, game.WithPinColors(func() string { return "#0000ff" }))
		_, err := svc.CreateGame(ctx, channel.ID, "one", "", u.ID)
		require.ErrorIs(t, err, game.ErrConflict)
		assert.Contains(t, err.Error(), "already exists in the channel")
	})

	t.Run("colour never free", func(t *testing.T) {
		svc := game.NewService(racyPinStore{mem}, game.WithPinColors(func() string { return "#000001" }))
		_, err := svc.CreateGame(ctx, channel.ID, "three", "", u.ID)
		require.ErrorIs(t, err, game.ErrConflict)
		assert.Contains(t, err.Error(), "no free pin color")
		assert.NotErrorIs(t, err, game.ErrPinColorTaken)
	})
}
