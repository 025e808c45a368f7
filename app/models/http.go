package models

// SearchRequest asks for a best move. An empty FEN means the start position
// and a nil Depth means the configured default.
type SearchRequest struct {
	FEN   string `json:"fen"`
	Depth *int   `json:"depth"`
}

type SearchResponse struct {
	FEN         string  `json:"fen"`
	Depth       int     `json:"depth"`
	Score       float64 `json:"score"`
	Mate        bool    `json:"mate"`
	BestMoveUCI string  `json:"best_move_uci,omitempty"`
	BestMoveSAN string  `json:"best_move_san,omitempty"`
	Terminal    bool    `json:"terminal"`
	Outcome     string  `json:"outcome,omitempty"`
	Nodes       uint64  `json:"nodes"`
	Cutoffs     uint64  `json:"cutoffs"`
	ElapsedMS   int64   `json:"elapsed_ms"`
}

type PositionRequest struct {
	FEN string `json:"fen"`
}

type EvaluateResponse struct {
	FEN   string  `json:"fen"`
	Score float64 `json:"score"`
}

type OrderedMove struct {
	UCI   string  `json:"uci"`
	SAN   string  `json:"san"`
	Score float64 `json:"score"`
}

type OrderResponse struct {
	FEN   string        `json:"fen"`
	Moves []OrderedMove `json:"moves"`
}

// GamesUpload is the body of POST /games/:username.
type GamesUpload struct {
	PGNs []string `json:"pgns" binding:"required"`
}
