package model

// Modifier est l'opération ADD / REMOVE des mutations d'appartenance
type Modifier string

const (
	ModifierAdd    Modifier = "ADD"
	ModifierRemove Modifier = "REMOVE"
)

// Valid indique si le modificateur est connu
func (m Modifier) Valid() bool {
	return m == ModifierAdd || m == ModifierRemove
}

// UpvoteInfo contient les informations d'upvote pour un post donné
type UpvoteInfo struct {
	PostID      int64 `json:"postId"`
	TotalVotes  int   `json:"upvotes"`
	UserUpvoted bool  `json:"userUpvoted"`
}
