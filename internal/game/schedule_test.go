package game_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/game"
)

func TestPointsForRank(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1000},
		{1, 800},
		{2, 600},
		{3, 400},
		{4, 200},
		{5, 100},
		{6, 100},
		{250, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, game.PointsForRank(tt.n), "n=%d", tt.n)
	}
}
