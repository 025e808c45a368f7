package models

// JobStatus summarizes a batch processing job.
type JobStatus struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Status           string `json:"status"` // queued, running or completed
	TotalGames       int    `json:"total_games"`
	CompletedBatches int    `json:"completed_batches"`
	TotalBatches     int    `json:"total_batches"`
}
