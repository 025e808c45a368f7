package models

// GameLite is what we store for each uploaded game and hand to the analysis workers.
type GameLite struct {
	ID          int64  `json:"id"`
	URL         string `json:"url"`
	When        int64  `json:"when_unix"`
	Color       string `json:"color"` // "white" or "black", from the uploader's point of view
	Opponent    string `json:"opponent"`
	OppRating   int    `json:"opponent_rating"`
	Result      string `json:"result"` // "1-0", "0-1", "1/2-1/2" or "*"
	Rated       bool   `json:"rated"`
	TimeClass   string `json:"time_class"`
	TimeControl string `json:"time_control"` // e.g. "600+0"
	PGN         string `json:"pgn"`
	ECO         string `json:"eco"`
	Moves       []Move `json:"moves,omitempty"`
}

type Move struct {
	MoveUCI    string       `json:"move_uci"`
	MoveSAN    string       `json:"move_san"`
	PlayedBy   string       `json:"played_by"`
	MoveNumber int          `json:"move_number"`
	Ply        int          `json:"ply"`
	Color      string       `json:"color"` // "w" or "b"
	FenBefore  FENEval      `json:"fen_before"`
	FenAfter   FENEval      `json:"fen_after"`
	Analysis   MoveAnalysis `json:"analysis"`

	// Used for reporting bad fens
	URL      string `json:"url,omitempty"`
	Opponent string `json:"opponent,omitempty"`
	ECO      string `json:"eco,omitempty"`
}

// FENEval is one searched position. Score is from White's point of view in
// engine units (a pawn is worth 0.5).
type FENEval struct {
	MoveNumber int     `json:"move_number"` // fullmove number from FEN
	SideToMove string  `json:"side_to_move"`
	FEN        string  `json:"fen"`
	Score      float64 `json:"score"`
	Mate       bool    `json:"mate"`
	BestMove   string  `json:"best_move_uci"`
	Depth      int     `json:"depth"`
	Nodes      uint64  `json:"nodes"`
	Evaluated  bool    `json:"evaluated"`
}

type MoveAnalysis struct {
	ScoreLoss    float64 `json:"score_loss"`
	IsSuboptimal bool    `json:"is_suboptimal"`
	IsInaccuracy bool    `json:"is_inaccuracy"`
	IsMistake    bool    `json:"is_mistake"`
	IsBlunder    bool    `json:"is_blunder"`
}

// IsError reports whether any classification fired.
func (a MoveAnalysis) IsError() bool {
	return a.IsSuboptimal || a.IsInaccuracy || a.IsMistake || a.IsBlunder
}

// SuboptimalFen is a position where the user has repeatedly gone wrong.
type SuboptimalFen struct {
	NormalizedFenBefore string  `json:"normalized_fen_before"`
	SideToMove          string  `json:"side_to_move"`
	TimesSeen           int     `json:"times_seen"`
	SuboptimalCount     int     `json:"suboptimal_count"`
	InaccuracyCount     int     `json:"inaccuracy_count"`
	MistakeCount        int     `json:"mistake_count"`
	BlunderCount        int     `json:"blunder_count"`
	ErrorCount          int     `json:"error_count"`
	ErrorRate           float64 `json:"error_rate"`
}

// SuboptimalFensReport carries the moves behind one bad position: what was
// played and what the engine preferred.
type SuboptimalFensReport struct {
	BadFen SuboptimalFen `json:"bad_fen"`
	Moves  []Move        `json:"moves"`
}
