package app

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
)

var db *sql.DB

//go:embed schema.sql
var schema string

var (
	errNoDatabase  = errors.New("no database configured")
	errJobNotFound = errors.New("job not found")
)

// InitDB opens the global pool. With no POSTGRES_URL the service runs
// without persistence: writes are skipped and reads report errNoDatabase.
func InitDB(ctx context.Context, cfg config.PostgresConfig) error {
	if !cfg.Enabled() {
		log.Warn().Msg("POSTGRES_URL not set, running without a database")
		return nil
	}

	d, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	if err := d.PingContext(ctx); err != nil {
		d.Close()
		return fmt.Errorf("db.Ping: %w", err)
	}
	if _, err := d.ExecContext(ctx, schema); err != nil {
		d.Close()
		return fmt.Errorf("applying schema: %w", err)
	}

	log.Info().Str("host", cfg.URL).Msg("connected to Postgres")
	db = d
	return nil
}

// MustInitDB is InitDB for process start-up; it exits on failure.
func MustInitDB(ctx context.Context, cfg config.PostgresConfig) {
	if err := InitDB(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
}

// saveGames stores games for username and returns the ids of the rows it
// inserted. Games already stored for the user are not returned.
func saveGames(ctx context.Context, username string, games []models.GameLite) ([]int64, error) {
	if db == nil {
		// Allow test runs without a backing DB.
		return nil, nil
	}
	if len(games) == 0 {
		return nil, nil
	}

	// One transaction for everything
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// 1) Temp staging table
	_, err = tx.ExecContext(ctx, `
		CREATE TEMP TABLE tmp_games (
			username         TEXT,
			url              TEXT,
			when_unix        BIGINT,
			color            TEXT,
			opponent         TEXT,
			opponent_rating  INT,
			result           TEXT,
			rated            BOOLEAN,
			time_class       TEXT,
			time_control     TEXT,
			pgn              TEXT,
			eco              TEXT
		) ON COMMIT DROP;
	`)
	if err != nil {
		return nil, err
	}

	// 2) COPY into tmp_games
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"tmp_games",
		"username", "url", "when_unix", "color", "opponent", "opponent_rating",
		"result", "rated", "time_class", "time_control", "pgn", "eco",
	))
	if err != nil {
		return nil, err
	}

	for _, g := range games {
		if _, err := stmt.ExecContext(ctx,
			username, g.URL, g.When, g.Color, g.Opponent, g.OppRating,
			g.Result, g.Rated, g.TimeClass, g.TimeControl, g.PGN, g.ECO,
		); err != nil {
			stmt.Close()
			return nil, err
		}
	}

	// finish COPY
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return nil, err
	}
	if err := stmt.Close(); err != nil {
		return nil, err
	}

	// 3) Insert into real table with conflict handling
	rows, err := tx.QueryContext(ctx, `
		INSERT INTO games (
			username, url, when_unix, color, opponent, opponent_rating,
			result, rated, time_class, time_control, pgn, eco
		)
		SELECT
			username, url, when_unix, color, opponent, opponent_rating,
			result, rated, time_class, time_control, pgn, eco
		FROM tmp_games
		ON CONFLICT (username, url) DO NOTHING
		RETURNING id;
	`)
	if err != nil {
		return nil, err
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ids, nil
}

// batchCount is the number of batches of size batchSize covering total games.
func batchCount(total, batchSize int) int {
	if total <= 0 || batchSize <= 0 {
		return 0
	}
	return (total + batchSize - 1) / batchSize // ceil division
}

// batchBounds is the half-open job_games.seq range of one batch.
func batchBounds(batchIndex, batchSize int) (lo, hi int) {
	lo = batchIndex * batchSize
	return lo, lo + batchSize
}

// LoadGames reads batch batchIndex of the games attached to a job.
func LoadGames(ctx context.Context, jobID string, batchIndex, batchSize int) ([]models.GameLite, error) {
	if db == nil {
		return nil, errNoDatabase
	}
	lo, hi := batchBounds(batchIndex, batchSize)
	rows, err := db.QueryContext(ctx, `
		SELECT
			g.id, g.url, g.when_unix, g.color, g.opponent, g.opponent_rating,
			g.result, g.rated, g.time_class, g.time_control, g.pgn, g.eco
		FROM job_games jg
		JOIN games g ON g.id = jg.game_id
		WHERE jg.job_id = $1
		  AND jg.seq >= $2
		  AND jg.seq < $3
		ORDER BY jg.seq
	`, jobID, lo, hi)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.GameLite
	for rows.Next() {
		var g models.GameLite
		if err := rows.Scan(
			&g.ID, &g.URL, &g.When, &g.Color, &g.Opponent, &g.OppRating,
			&g.Result, &g.Rated, &g.TimeClass, &g.TimeControl, &g.PGN, &g.ECO,
		); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveMoves stores every analysed move of games. Rows already present for a
// (game, ply) are kept; games without an ID are skipped.
func SaveMoves(ctx context.Context, depth int, games []models.GameLite) error {
	if db == nil {
		// Allow test runs without a backing DB.
		return nil
	}
	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1) Temp staging table
	_, err = tx.ExecContext(ctx, `
		CREATE TEMP TABLE tmp_moves (LIKE moves INCLUDING DEFAULTS) ON COMMIT DROP;
	`)
	if err != nil {
		return err
	}

	// 2) COPY into tmp_moves
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(
		"tmp_moves",
		"game_id", "ply", "move_number", "fen_before", "fen_after", "normalized_fen_before",
		"move_uci", "move_san", "color", "played_by",
		"eval_depth", "eval_before", "eval_after", "eval_before_mate", "eval_after_mate",
		"score_loss", "best_move_uci",
		"is_suboptimal", "is_inaccuracy", "is_mistake", "is_blunder",
	))
	if err != nil {
		return err
	}

	for _, g := range games {
		if g.ID == 0 {
			// Not loaded from the games table; nothing to reference.
			continue
		}
		for _, e := range g.Moves {
			if _, err := stmt.ExecContext(ctx,
				g.ID, e.Ply, e.MoveNumber, e.FenBefore.FEN, e.FenAfter.FEN, NormalizeFEN(e.FenBefore.FEN),
				e.MoveUCI, e.MoveSAN, e.Color, e.PlayedBy,
				depth, e.FenBefore.Score, e.FenAfter.Score, e.FenBefore.Mate, e.FenAfter.Mate,
				e.Analysis.ScoreLoss, e.FenBefore.BestMove,
				e.Analysis.IsSuboptimal, e.Analysis.IsInaccuracy, e.Analysis.IsMistake, e.Analysis.IsBlunder,
			); err != nil {
				stmt.Close()
				return err
			}
		}
	}

	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	// 3) Upsert from tmp_moves into moves
	_, err = tx.ExecContext(ctx, `
		INSERT INTO moves SELECT * FROM tmp_moves
		ON CONFLICT (game_id, ply) DO NOTHING;
	`)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// FindErrorPositions groups the user's own moves by position and reports
// positions seen at least minSeen times where they went wrong at least twice.
func FindErrorPositions(ctx context.Context, username string, minSeen int) ([]models.SuboptimalFensReport, error) {
	if db == nil {
		return []models.SuboptimalFensReport{}, nil
	}

	const fenQuery = `
WITH user_moves AS (
    SELECT m.*
    FROM moves m
    JOIN games g ON g.id = m.game_id
    WHERE g.username  = $1
      AND m.played_by = g.username
),
position_stats AS (
    SELECT
        normalized_fen_before,
        COUNT(*) AS times_seen,
        SUM(CASE WHEN is_suboptimal THEN 1 ELSE 0 END) AS suboptimal_count,
        SUM(CASE WHEN is_inaccuracy THEN 1 ELSE 0 END) AS inaccuracy_count,
        SUM(CASE WHEN is_mistake    THEN 1 ELSE 0 END) AS mistake_count,
        SUM(CASE WHEN is_blunder    THEN 1 ELSE 0 END) AS blunder_count,
        SUM(CASE WHEN is_inaccuracy OR is_mistake OR is_blunder THEN 1 ELSE 0 END) AS error_count,
        MIN(color) AS side_to_move
    FROM user_moves
    GROUP BY normalized_fen_before
)
SELECT
    normalized_fen_before, times_seen, suboptimal_count, inaccuracy_count,
    mistake_count, blunder_count, error_count,
    (error_count::float / times_seen) AS error_rate,
    side_to_move
FROM position_stats
WHERE times_seen  >= $2
  AND error_count >= 2
ORDER BY error_rate DESC, times_seen DESC;
`

	rows, err := db.QueryContext(ctx, fenQuery, username, minSeen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		reports []models.SuboptimalFensReport
		fens    []string
	)
	for rows.Next() {
		var fen models.SuboptimalFen
		if err := rows.Scan(
			&fen.NormalizedFenBefore, &fen.TimesSeen, &fen.SuboptimalCount, &fen.InaccuracyCount,
			&fen.MistakeCount, &fen.BlunderCount, &fen.ErrorCount, &fen.ErrorRate, &fen.SideToMove,
		); err != nil {
			return nil, err
		}
		fens = append(fens, fen.NormalizedFenBefore)
		reports = append(reports, models.SuboptimalFensReport{BadFen: fen})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(reports) == 0 {
		return []models.SuboptimalFensReport{}, nil
	}

	// batch fetch moves for all FENs at once
	movesByFEN, err := fetchErrorMovesBatch(ctx, username, fens)
	if err != nil {
		return nil, err
	}
	for i := range reports {
		if mv, ok := movesByFEN[reports[i].BadFen.NormalizedFenBefore]; ok {
			reports[i].Moves = mv
		} else {
			reports[i].Moves = []models.Move{}
		}
	}

	return reports, nil
}

// fetchErrorMovesBatch fetches error moves for many FENs in one query.
func fetchErrorMovesBatch(ctx context.Context, username string, normalizedFens []string) (map[string][]models.Move, error) {
	result := make(map[string][]models.Move, len(normalizedFens))
	if len(normalizedFens) == 0 {
		return result, nil
	}

	const movesQuery = `
SELECT
    g.username, g.url, g.eco, g.opponent,
    m.ply, m.move_number, m.color, m.normalized_fen_before, m.fen_before,
    m.move_san, m.move_uci, m.best_move_uci,
    m.eval_before, m.eval_after, m.eval_depth, m.score_loss,
    m.is_suboptimal, m.is_inaccuracy, m.is_mistake, m.is_blunder
FROM moves m
JOIN games g ON g.id = m.game_id
WHERE g.username              = $1
  AND m.played_by             = g.username
  AND m.normalized_fen_before = ANY($2)
  AND (m.is_suboptimal OR m.is_inaccuracy OR m.is_mistake OR m.is_blunder)
ORDER BY m.normalized_fen_before, g.when_unix DESC;
`

	rows, err := db.QueryContext(ctx, movesQuery, username, pq.Array(normalizedFens))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			mv         models.Move
			normalized string
			moveSAN    sql.NullString
			bestMove   sql.NullString
			before     sql.NullFloat64
			after      sql.NullFloat64
			depth      sql.NullInt64
			loss       sql.NullFloat64
		)
		if err := rows.Scan(
			&mv.PlayedBy, &mv.URL, &mv.ECO, &mv.Opponent,
			&mv.Ply, &mv.MoveNumber, &mv.Color, &normalized, &mv.FenBefore.FEN,
			&moveSAN, &mv.MoveUCI, &bestMove,
			&before, &after, &depth, &loss,
			&mv.Analysis.IsSuboptimal, &mv.Analysis.IsInaccuracy, &mv.Analysis.IsMistake, &mv.Analysis.IsBlunder,
		); err != nil {
			return nil, err
		}

		mv.MoveSAN = moveSAN.String
		mv.FenBefore.MoveNumber = mv.MoveNumber
		mv.FenBefore.SideToMove = mv.Color
		mv.FenBefore.BestMove = bestMove.String
		mv.FenBefore.Score = before.Float64
		mv.FenBefore.Depth = int(depth.Int64)
		mv.FenBefore.Evaluated = before.Valid
		mv.FenAfter.Score = after.Float64
		mv.FenAfter.Evaluated = after.Valid
		mv.Analysis.ScoreLoss = loss.Float64

		result[normalized] = append(result[normalized], mv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateJob records a new analysis job over gameIDs and returns its id.
// Batch i of the job is gameIDs[i*batchSize : (i+1)*batchSize].
func CreateJob(ctx context.Context, username, requestedBy string, gameIDs []int64, batchSize int) (string, error) {
	if db == nil {
		return "", errNoDatabase
	}
	totalBatches := batchCount(len(gameIDs), batchSize)

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	var jobID string
	err = tx.QueryRowContext(ctx, `
        INSERT INTO jobs (username, requested_by, total_games, batch_size, total_batches)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id;
    `, username, requestedBy, len(gameIDs), batchSize, totalBatches).Scan(&jobID)
	if err != nil {
		return "", err
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO job_games (job_id, game_id, seq)
        SELECT $1, g.id, g.ord - 1
        FROM unnest($2::bigint[]) WITH ORDINALITY AS g(id, ord);
    `, jobID, pq.Array(gameIDs))
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	log.Info().
		Str("job_id", jobID).
		Str("user", username).
		Int("total_games", len(gameIDs)).
		Int("total_batches", totalBatches).
		Msg("created job")
	return jobID, nil
}

// UpdateJobProgress increments completed_batches for a job and sets
// status to 'running' or 'completed' accordingly.
func UpdateJobProgress(ctx context.Context, jobID string) error {
	if db == nil {
		return errNoDatabase
	}
	const q = `
        UPDATE jobs
        SET
            completed_batches = completed_batches + 1,
            status = CASE
                WHEN completed_batches + 1 >= total_batches THEN 'completed'
                ELSE 'running'
            END,
            updated_at = now()
        WHERE id = $1;
    `

	res, err := db.ExecContext(ctx, q, jobID)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		log.Warn().Str("job_id", jobID).Msg("UpdateJobProgress: no job row found")
	}
	return nil
}

// FindJobStatus fetches status and batch counts for a job id.
func FindJobStatus(ctx context.Context, jobID string) (models.JobStatus, error) {
	if db == nil {
		return models.JobStatus{}, errNoDatabase
	}
	const q = `
        SELECT id, username, status, total_games, completed_batches, total_batches
        FROM jobs
        WHERE id = $1;
    `

	var js models.JobStatus
	err := db.QueryRowContext(ctx, q, jobID).Scan(
		&js.ID, &js.Username, &js.Status, &js.TotalGames, &js.CompletedBatches, &js.TotalBatches,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.JobStatus{}, fmt.Errorf("%w: %s", errJobNotFound, jobID)
	}
	if err != nil {
		return models.JobStatus{}, err
	}
	return js, nil
}

// SaveSearch appends one served search to the searches log.
func SaveSearch(ctx context.Context, r models.SearchResponse) error {
	if db == nil {
		return nil
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO searches (fen, depth, score, best_move_uci, nodes, cutoffs, elapsed_ms)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7);
	`, r.FEN, r.Depth, r.Score, r.BestMoveUCI, int64(r.Nodes), int64(r.Cutoffs), r.ElapsedMS)
	return err
}
