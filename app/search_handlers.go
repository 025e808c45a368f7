package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
	"github.com/Kunal-047/Chess-engine/engine"
	"github.com/Kunal-047/Chess-engine/rules"
)

// Health is a public health check endpoint.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// bindOptionalJSON decodes the body into v. An empty body leaves v as is.
func bindOptionalJSON(c *gin.Context, v any) error {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// boardFromFEN returns the start position for an empty FEN.
func boardFromFEN(fen string) (*rules.Board, error) {
	if fen == "" {
		return rules.NewBoard(), nil
	}
	return rules.FromFEN(fen)
}

// SearchHandler serves POST /search.
func SearchHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		depth := cfg.Engine.Depth
		if req.Depth != nil {
			depth = *req.Depth
		}
		if depth < 0 || depth > cfg.Engine.MaxDepth {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("depth must be between 0 and %d", cfg.Engine.MaxDepth),
			})
			return
		}

		board, err := boardFromFEN(req.FEN)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res := engine.NewSearcher().Search(board, depth)
		resp := models.SearchResponse{
			FEN:       board.FEN(),
			Depth:     res.Depth,
			Score:     res.Score,
			Mate:      engine.IsMate(res.Score),
			Terminal:  res.Terminal(),
			Outcome:   board.Outcome(),
			Nodes:     res.Stats.Nodes,
			Cutoffs:   res.Stats.Cutoffs,
			ElapsedMS: res.Elapsed.Milliseconds(),
		}
		if res.Move != nil {
			resp.BestMoveUCI = rules.UCI(res.Move)
			resp.BestMoveSAN = board.SAN(res.Move)
		}

		log.Info().
			Str("fen", resp.FEN).
			Int("depth", depth).
			Float64("score", resp.Score).
			Str("move", resp.BestMoveUCI).
			Uint64("nodes", resp.Nodes).
			Msg("search served")

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := SaveSearch(ctx, resp); err != nil {
			log.Error().Err(err).Msg("SaveSearch failed")
		}

		c.JSON(http.StatusOK, resp)
	}
}

// EvaluateHandler serves POST /evaluate with the static evaluation.
func EvaluateHandler(c *gin.Context) {
	var req models.PositionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board, err := boardFromFEN(req.FEN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, models.EvaluateResponse{
		FEN:   board.FEN(),
		Score: engine.Evaluate(board),
	})
}

// OrderHandler serves POST /order: the legal moves in search order.
func OrderHandler(c *gin.Context) {
	var req models.PositionRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	board, err := boardFromFEN(req.FEN)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ranked := engine.RankMoves(board, board.LegalMoves())
	moves := make([]models.OrderedMove, 0, len(ranked))
	for _, sm := range ranked {
		moves = append(moves, models.OrderedMove{
			UCI:   rules.UCI(sm.Move),
			SAN:   board.SAN(sm.Move),
			Score: sm.Score,
		})
	}
	c.JSON(http.StatusOK, models.OrderResponse{FEN: board.FEN(), Moves: moves})
}
