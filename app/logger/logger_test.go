package logger

import (
	"testing"

	"github.com/rs/zerolog"

	"github.com/Kunal-047/Chess-engine/app/config"
)

func TestInitLevels(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cases := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tc := range cases {
		t.Run(tc.level, func(t *testing.T) {
			Init(config.LogConfig{Style: "json", Level: tc.level})
			if got := zerolog.GlobalLevel(); got != tc.want {
				t.Fatalf("GlobalLevel = %v, want %v", got, tc.want)
			}
		})
	}
}
