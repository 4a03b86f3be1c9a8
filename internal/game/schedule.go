package game

// Bonus fixes de la validation
const (
	AcceptAuthorBonus    = 100
	AcceptModeratorBonus = 50
	RejectModeratorBonus = 200
)

var rankPoints = []int{1000, 800, 600, 400, 200}

// MinRankPoints à partir de len(rankPoints) lignes déjà présentes
const MinRankPoints = 100

// PointsForRank renvoie les points d'une nouvelle ligne quand n lignes existent déjà
func PointsForRank(n int) int {
	if n >= 0 && n < len(rankPoints) {
		return rankPoints[n]
	}
	return MinRankPoints
}
