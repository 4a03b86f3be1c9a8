package game_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
	model "github.com/MassBabyGeek/SocialPixel-backend/internal/models"
	"github.com/MassBabyGeek/SocialPixel-backend/internal/testutil"
)

func TestCanPropose(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	creator := store.AddUser("creator")
	member := store.AddUser("member")
	outsider := store.AddUser("outsider")
	channel := store.AddChannel("city", creator.ID, member.ID, outsider.ID)

	svc := game.NewService(store)
	g, err := svc.CreateGame(ctx, channel.ID, "murals", "", creator.ID)
	require.NoError(t, err)
	require.NoError(t, svc.Subscription(ctx, g.ID, model.ModifierAdd, member.ID))

	memberPost := store.AddPost(member.ID)
	outsiderPost := store.AddPost(outsider.ID)
	stranger := store.AddUser("stranger")
	strangerPost := store.AddPost(stranger.ID)

	tests := []struct {
		name    string
		actor   int64
		post    *model.Post
		allowed bool
		reason  string
	}{
		{"subscribed author", member.ID, memberPost, true, ""},
		{"not in channel", stranger.ID, strangerPost, false, "you must be subscribed to the channel to propose posts"},
		{"not in game", outsider.ID, outsiderPost, false, "you must be subscribed to the game to propose posts"},
		{"not the author", member.ID, outsiderPost, false, "you must be the post author to propose it"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.InTx(ctx, func(tx game.Tx) error {
				v, err := game.CanPropose(ctx, tx, g, tt.post, tt.actor)
				require.NoError(t, err)
				assert.Equal(t, tt.allowed, v.Allowed)
				assert.Equal(t, tt.reason, v.Reason)
				return nil
			})
			require.NoError(t, err)
		})
	}
}

func TestCanDecideAndCreate(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemStore()
	mod := store.AddUser("mod")
	stranger := store.AddUser("stranger")
	channel := store.AddChannel("city", mod.ID)
	g := &model.Game{ID: 99, ChannelID: channel.ID, CreatorID: mod.ID}

	err := store.InTx(ctx, func(tx game.Tx) error {
		v, err := game.CanDecide(ctx, tx, g, mod.ID)
		require.NoError(t, err)
		assert.True(t, v.Allowed)

		v, err = game.CanDecide(ctx, tx, g, stranger.ID)
		require.NoError(t, err)
		assert.False(t, v.Allowed)
		assert.ErrorIs(t, v.Err(), game.ErrUnauthorized)

		v, err = game.CanCreateGame(ctx, tx, channel.ID, stranger.ID)
		require.NoError(t, err)
		assert.Equal(t, "you must be subscribed to the channel to add games", v.Reason)
		return nil
	})
	require.NoError(t, err)
}

func TestCanManageGame(t *testing.T) {
	g := &model.Game{CreatorID: 7}
	assert.True(t, game.CanManageGame(g, 7).Allowed)
	assert.NoError(t, game.CanManageGame(g, 7).Err())

	v := game.CanManageGame(g, 8)
	assert.False(t, v.Allowed)
	assert.ErrorIs(t, v.Err(), game.ErrUnauthorized)
}
