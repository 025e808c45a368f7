package models

type JobMessage struct {
	User        string `json:"user"`
	BatchIndex  int    `json:"batch_index"` // 0-based
	NumGames    int    `json:"num_games"`
	JobID       string `json:"job_id"`
	EngineDepth int    `json:"engine_depth"` // 0 means the worker's configured depth
}
