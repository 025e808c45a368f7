package app

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/notnil/chess"

	"github.com/Kunal-047/Chess-engine/app/models"
)

type TagSummary struct {
	Event       string `json:"event,omitempty"`
	Site        string `json:"site,omitempty"`
	Date        string `json:"date,omitempty"` // "YYYY.MM.DD"
	Round       string `json:"round,omitempty"`
	Result      string `json:"result,omitempty"` // "1-0","0-1","1/2-1/2","*"
	White       string `json:"white,omitempty"`
	Black       string `json:"black,omitempty"`
	WhiteElo    int    `json:"white_elo,omitempty"`
	BlackElo    int    `json:"black_elo,omitempty"`
	TimeControl string `json:"time_control,omitempty"` // "600" or "600+0"
	Termination string `json:"termination,omitempty"`
	Link        string `json:"link,omitempty"`
	ECO         string `json:"eco,omitempty"`
	ECOUrl      string `json:"eco_url,omitempty"`
	UTCDate     string `json:"utc_date,omitempty"` // "YYYY.MM.DD"
	UTCTime     string `json:"utc_time,omitempty"` // "HH:MM:SS"
	CurrentFEN  string `json:"current_fen,omitempty"`
	Rated       bool   `json:"rated,omitempty"`
	// POV helpers (if you pass your username)
	Color     string `json:"color,omitempty"` // "white" or "black" (for povUser)
	Opponent  string `json:"opponent,omitempty"`
	OppRating int    `json:"opponent_rating,omitempty"`
}

var (
	reTags     = regexp.MustCompile(`(?m)^\[.*?\]\s*`) // [Tag "Value"] lines
	reComments = regexp.MustCompile(`\{[^}]*\}`)       // {...} comments (incl. [%clk ...])
	reNAG      = regexp.MustCompile(`\$\d+`)           // $1, $2, etc.
	reSpaces   = regexp.MustCompile(`\s+`)
	reEcoMoves = regexp.MustCompile(`-\d.*`)
)

// layout for unix timestamp conversion
const layout = "2006.01.02 15:04:05"

// NormalizePGN removes headers/comments/NAGs and collapses whitespace,
// leaving only the movetext.
func NormalizePGN(pgn string) string {
	pgn = reTags.ReplaceAllString(pgn, "")
	pgn = reComments.ReplaceAllString(pgn, "")
	pgn = reNAG.ReplaceAllString(pgn, "")
	pgn = reSpaces.ReplaceAllString(strings.TrimSpace(pgn), " ")
	return pgn
}

// NormalizeECO turns an ECO URL or slug into a readable opening name without move suffixes.
func NormalizeECO(ecoURL string) string {
	ecoURL = strings.TrimSpace(ecoURL)
	if ecoURL == "" {
		return ""
	}

	// Trim to slug after "openings/" or last slash.
	if idx := strings.LastIndex(ecoURL, "openings/"); idx != -1 {
		ecoURL = ecoURL[idx+len("openings/"):]
	} else if idx := strings.LastIndex(ecoURL, "/"); idx != -1 {
		ecoURL = ecoURL[idx+1:]
	}

	if idx := strings.Index(ecoURL, "?"); idx != -1 {
		ecoURL = ecoURL[:idx]
	}

	// Remove move sequence suffix starting at first "-<digit>"
	if loc := reEcoMoves.FindStringIndex(ecoURL); loc != nil {
		ecoURL = ecoURL[:loc[0]]
	}

	ecoURL = strings.ReplaceAll(ecoURL, "...", " ")
	ecoURL = strings.ReplaceAll(ecoURL, "-", " ")
	ecoURL = reSpaces.ReplaceAllString(ecoURL, " ")

	// Drop any trailing tokens that look like move numbers (e.g., "7.h3", "5...Bb6")
	fields := strings.Fields(ecoURL)
	for i, tok := range fields {
		if strings.Contains(tok, "...") || strings.IndexFunc(tok, unicode.IsDigit) != -1 {
			fields = fields[:i]
			break
		}
	}

	return strings.TrimSpace(strings.Join(fields, " "))
}

// converts string to int safely
func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

// BuildTagSummary maps the raw tag map into a typed summary and optionally
// computes POV info for povUser (case-insensitive). If povUser == "" it skips POV.
func BuildTagSummary(tags map[string]string, povUser string) TagSummary {
	toInt := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	s := TagSummary{
		Event:       tags["Event"],
		Site:        tags["Site"],
		Date:        tags["Date"],
		Round:       tags["Round"],
		Result:      tags["Result"],
		White:       tags["White"],
		Black:       tags["Black"],
		WhiteElo:    toInt(tags["WhiteElo"]),
		BlackElo:    toInt(tags["BlackElo"]),
		TimeControl: tags["TimeControl"],
		Termination: tags["Termination"],
		Link:        tags["Link"],
		ECO:         tags["ECO"],
		ECOUrl:      tags["ECOUrl"],
		UTCDate:     tags["UTCDate"],
		UTCTime:     tags["UTCTime"],
		CurrentFEN:  tags["CurrentPosition"],
		Rated:       strings.Contains(strings.ToLower(tags["Event"]), "rated") && !strings.Contains(strings.ToLower(tags["Event"]), "unrated"),
	}

	if povUser != "" {
		u := strings.ToLower(povUser)
		if strings.ToLower(s.White) == u {
			s.Color = "white"
			s.Opponent = s.Black
			s.OppRating = s.BlackElo
		} else if strings.ToLower(s.Black) == u {
			s.Color = "black"
			s.Opponent = s.White
			s.OppRating = s.WhiteElo
		}
	}
	return s
}

// GameFromTags builds the stored row for one uploaded PGN.
func GameFromTags(s TagSummary, pgn string) models.GameLite {
	url := s.Link
	if url == "" {
		url = s.Site
	}
	when, err := GetUnixTimeStamp(s.UTCDate, s.UTCTime, "UTC")
	if err != nil {
		when, _ = GetUnixTimeStamp(s.Date, "00:00:00", "UTC")
	}
	eco := NormalizeECO(s.ECOUrl)
	if eco == "" {
		eco = s.ECO
	}
	return models.GameLite{
		URL:         url,
		When:        when,
		Color:       s.Color,
		Opponent:    s.Opponent,
		OppRating:   s.OppRating,
		Result:      s.Result,
		Rated:       s.Rated,
		TimeControl: s.TimeControl,
		TimeClass:   timeClass(s.TimeControl),
		PGN:         pgn,
		ECO:         eco,
	}
}

// timeClass buckets a "base+increment" control the way the big sites do,
// by estimated game length in seconds.
func timeClass(control string) string {
	if control == "" || control == "-" {
		return ""
	}
	if strings.Contains(control, "/") {
		return "daily"
	}
	baseStr, incStr, _ := strings.Cut(control, "+")
	base, err := strconv.Atoi(baseStr)
	if err != nil {
		return ""
	}
	inc, _ := strconv.Atoi(incStr)
	switch total := base + 40*inc; {
	case total < 180:
		return "bullet"
	case total < 600:
		return "blitz"
	case total < 1800:
		return "rapid"
	default:
		return "classical"
	}
}

// GetUnixTimeStamp parses a PGN date and time in the named zone.
func GetUnixTimeStamp(date string, timeStamp string, timeZone string) (int64, error) {
	loc, err := time.LoadLocation(timeZone)
	if err != nil {
		return 0, err
	}
	t, err := time.ParseInLocation(layout, fmt.Sprintf("%s %s", date, timeStamp), loc)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}

// NormalizeFEN strips move counters and keeps only the structural position:
// <pieces> <side> <castling> <en-passant>
func NormalizeFEN(fen string) string {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		// malformed FEN, return original
		return fen
	}
	return strings.Join(parts[:4], " ")
}

func fenInfoFromPosition(pos *chess.Position) models.FENEval {
	fen := pos.String()

	side := "w"
	if pos.Turn() == chess.Black {
		side = "b"
	}
	// The fullmove number is the sixth FEN field.
	moveNum := 1
	if parts := strings.Fields(fen); len(parts) >= 6 {
		if n, err := strconv.Atoi(parts[5]); err == nil {
			moveNum = n
		}
	}
	return models.FENEval{
		MoveNumber: moveNum,
		SideToMove: side,
		FEN:        fen,
	}
}

// SplitPGN cuts a multi-game PGN file into one text per game. A game starts
// at the first tag line that follows movetext.
func SplitPGN(r io.Reader) ([]string, error) {
	var (
		games    []string
		cur      strings.Builder
		seenMove bool
	)
	flush := func() {
		if text := strings.TrimSpace(cur.String()); text != "" {
			games = append(games, text)
		}
		cur.Reset()
		seenMove = false
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		isTag := strings.HasPrefix(line, "[")
		if isTag && seenMove {
			flush()
		}
		if line != "" && !isTag {
			seenMove = true
		}
		cur.WriteString(line)
		cur.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return games, nil
}
