package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/notnil/chess"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
	"github.com/Kunal-047/Chess-engine/auth"
)

const maxUploadGames = 1000

// ParseUploadedGames turns raw PGN texts into stored game rows from
// username's point of view. Games that do not parse or that username did not
// play are counted in skipped.
func ParseUploadedGames(username string, pgns []string) (games []models.GameLite, skipped int) {
	for i, raw := range pgns {
		opt, err := chess.PGN(strings.NewReader(raw))
		if err != nil {
			log.Warn().Err(err).Int("index", i).Msg("skipping unparsable PGN")
			skipped++
			continue
		}
		g := chess.NewGame(opt)

		tags := make(map[string]string, len(g.TagPairs()))
		for _, tp := range g.TagPairs() {
			tags[tp.Key] = tp.Value
		}
		summary := BuildTagSummary(tags, username)
		if summary.Color == "" {
			log.Warn().Int("index", i).Str("white", summary.White).Str("black", summary.Black).Msg("skipping game not played by user")
			skipped++
			continue
		}

		game := GameFromTags(summary, raw)
		if game.URL == "" {
			game.URL = pgnKey(raw)
		}
		games = append(games, game)
	}
	return games, skipped
}

// pgnKey identifies a game that carries no link by its movetext.
func pgnKey(pgn string) string {
	sum := sha1.Sum([]byte(NormalizePGN(pgn)))
	return "pgn:" + hex.EncodeToString(sum[:8])
}

// UploadGames serves POST /games/:username. It stores the games, records a
// job over the ones not stored before and enqueues one message per batch.
func UploadGames(cfg *config.Config, sender MessageSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		username := strings.ToLower(c.Param("username"))
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
			return
		}

		var body models.GamesUpload
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if len(body.PGNs) > maxUploadGames {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("at most %d games per upload", maxUploadGames)})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 25*time.Second)
		defer cancel()

		games, skipped := ParseUploadedGames(username, body.PGNs)
		if len(games) == 0 {
			c.JSON(http.StatusOK, gin.H{
				"username": username,
				"count":    0,
				"stored":   0,
				"skipped":  skipped,
			})
			return
		}

		ids, err := saveGames(ctx, username, games)
		if err != nil {
			log.Error().Err(err).Str("user", username).Msg("saveGames failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store games"})
			return
		}

		batchSize := cfg.Engine.NumGames
		if batchSize <= 0 {
			batchSize = 25
		}
		totalBatches := batchCount(len(ids), batchSize)

		// Only newly stored games get a job; re-uploads are already analysed.
		var jobID string
		if len(ids) > 0 {
			requestedBy := auth.SubjectFromContext(c.Request.Context())
			jobID, err = CreateJob(ctx, username, requestedBy, ids, batchSize)
			if err != nil {
				// Without a job row the workers have nothing to load.
				log.Error().Err(err).Str("user", username).Msg("failed to create job")
			}
		}

		enqueued := 0
		switch {
		case jobID == "":
		case sender == nil || cfg.QueueURL == "":
			log.Warn().Str("user", username).Msg("QUEUE_URL missing in config; skipping enqueue")
		default:
			enqueued = EnqueueBatches(ctx, sender, cfg.QueueURL, models.JobMessage{
				User:     username,
				NumGames: batchSize,
				JobID:    jobID,
			}, totalBatches)
		}

		c.JSON(http.StatusOK, gin.H{
			"username": username,
			"count":    len(games),
			"stored":   len(ids),
			"skipped":  skipped,
			"job_id":   jobID,
			"batches":  totalBatches,
			"enqueued": enqueued,
		})
	}
}

// GetErrorPositions returns the positions the user keeps getting wrong.
// ?min_seen=N sets how often a position must occur (default 3).
func GetErrorPositions(c *gin.Context) {
	username := strings.ToLower(c.Param("username"))
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing username"})
		return
	}

	minSeen := 3
	if q := c.Query("min_seen"); q != "" {
		v, err := parsePositiveInt(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "min_seen must be a positive integer"})
			return
		}
		minSeen = v
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	positions, err := FindErrorPositions(ctx, username, minSeen)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"username":  username,
		"count":     len(positions),
		"positions": positions,
	})
}

// GetJobStatus returns status and batch progress for a job.
func GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobid")
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing job id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := FindJobStatus(ctx, jobID)
	if err != nil {
		switch {
		case errors.Is(err, errJobNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		case errors.Is(err, errNoDatabase):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"job": status,
	})
}
