package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Kunal-047/Chess-engine/app/config"
	"github.com/Kunal-047/Chess-engine/app/models"
	"github.com/Kunal-047/Chess-engine/engine"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Workers: 1,
		Engine:  config.EngineConfig{Depth: 1, MaxDepth: 3, NumMoves: 10, NumGames: 2},
		Auth:    config.AuthConfig{Disabled: true},
	}
}

func newEngineRouter(cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.GET("/health", Health)
	router.POST("/search", SearchHandler(cfg))
	router.POST("/evaluate", EvaluateHandler)
	router.POST("/order", OrderHandler)
	return router
}

func post(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(resp.Body.Bytes(), &v); err != nil {
		t.Fatalf("decoding %q: %v", resp.Body.String(), err)
	}
	return v
}

func TestHealth(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	newEngineRouter(testConfig()).ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"ok"`) {
		t.Fatalf("health = %d %s", resp.Code, resp.Body.String())
	}
}

func TestSearchHandlerDefaults(t *testing.T) {
	resp := post(newEngineRouter(testConfig()), "/search", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	got := decode[models.SearchResponse](t, resp)
	if got.Depth != 1 || got.Score != 2.5 || got.Terminal || got.Mate {
		t.Fatalf("unexpected response %+v", got)
	}
	if got.BestMoveUCI != "g1f3" && got.BestMoveUCI != "b1c3" {
		t.Fatalf("best move = %q", got.BestMoveUCI)
	}
	if got.BestMoveSAN != "Nf3" && got.BestMoveSAN != "Nc3" {
		t.Fatalf("best move SAN = %q", got.BestMoveSAN)
	}
	if got.Nodes == 0 {
		t.Fatalf("node count missing")
	}
}

func TestSearchHandlerFindsMate(t *testing.T) {
	resp := post(newEngineRouter(testConfig()), "/search", `{"fen":"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1","depth":2}`)
	got := decode[models.SearchResponse](t, resp)
	if got.BestMoveUCI != "a1a8" || got.BestMoveSAN != "Ra8#" || !got.Mate || got.Score != engine.MateScore {
		t.Fatalf("unexpected mate response %+v", got)
	}
}

func TestSearchHandlerTerminal(t *testing.T) {
	resp := post(newEngineRouter(testConfig()), "/search", `{"fen":"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"}`)
	got := decode[models.SearchResponse](t, resp)
	if !got.Terminal || got.BestMoveUCI != "" || got.Score != 0 || got.Outcome != "1/2-1/2 stalemate" {
		t.Fatalf("unexpected stalemate response %+v", got)
	}
}

func TestSearchHandlerRejects(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"too deep", `{"depth":4}`},
		{"negative depth", `{"depth":-1}`},
		{"bad fen", `{"fen":"not a fen"}`},
		{"bad json", `{"fen":`},
	}
	router := newEngineRouter(testConfig())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if resp := post(router, "/search", tc.body); resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.Code)
			}
		})
	}
}

func TestSearchHandlerDepthZero(t *testing.T) {
	resp := post(newEngineRouter(testConfig()), "/search", `{"depth":0}`)
	got := decode[models.SearchResponse](t, resp)
	if got.Depth != 0 || got.Score != 0 || got.Nodes != 1 {
		t.Fatalf("unexpected depth-0 response %+v", got)
	}
}

func TestEvaluateHandler(t *testing.T) {
	router := newEngineRouter(testConfig())
	start := decode[models.EvaluateResponse](t, post(router, "/evaluate", `{}`))
	if start.Score != 0 {
		t.Fatalf("start position evaluation = %v, want 0", start.Score)
	}

	// Black is missing its queen.
	fen := "rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	got := decode[models.EvaluateResponse](t, post(router, "/evaluate", `{"fen":"`+fen+`"}`))
	if got.Score <= 4 {
		t.Fatalf("evaluation without black queen = %v, want > 4", got.Score)
	}
	if resp := post(router, "/evaluate", `{"fen":"x"}`); resp.Code != http.StatusBadRequest {
		t.Fatalf("bad fen should be 400, got %d", resp.Code)
	}
}

func TestOrderHandler(t *testing.T) {
	router := newEngineRouter(testConfig())
	got := decode[models.OrderResponse](t, post(router, "/order", `{"fen":"rnbqkbnr/ppp1pppp/8/3p4/4P3/8/PPPP1PPP/RNBQKBNR w KQkq d6 0 2"}`))
	if len(got.Moves) != 31 {
		t.Fatalf("expected 31 moves, got %d", len(got.Moves))
	}
	if got.Moves[0].UCI != "e4d5" || got.Moves[0].SAN != "exd5" {
		t.Fatalf("capture should be ordered first, got %+v", got.Moves[0])
	}
	for i := 1; i < len(got.Moves); i++ {
		if got.Moves[i].Score > got.Moves[i-1].Score {
			t.Fatalf("moves not descending at %d: %+v", i, got.Moves)
		}
	}
}
