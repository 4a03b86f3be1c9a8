package game_test

import (
	"io"
	"os"
	"testing"

	"github.com/MassBabyGeek/SocialPixel-backend/internal/logger"
)

func TestMain(m *testing.M) {
	logger.SetOutput(io.Discard)
	os.Exit(m.Run())
}
