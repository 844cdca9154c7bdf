package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/zurustar/smfparse/pkg/timing"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name: "デフォルト設定",
			args: []string{},
			expected: Config{
				LogLevel:    "info",
				LogFormat:   "text",
				TempoSource: timing.SourceAuto,
			},
		},
		{
			name: "ファイルパス指定",
			args: []string{"/path/to/song.mid"},
			expected: Config{
				InputPath:   "/path/to/song.mid",
				LogLevel:    "info",
				LogFormat:   "text",
				TempoSource: timing.SourceAuto,
			},
		},
		{
			name: "ログレベル指定（短縮形）",
			args: []string{"-l", "error", "song.mid"},
			expected: Config{
				InputPath:   "song.mid",
				LogLevel:    "error",
				LogFormat:   "text",
				TempoSource: timing.SourceAuto,
			},
		},
		{
			name: "JSONログ",
			args: []string{"--log-format", "JSON", "song.mid"},
			expected: Config{
				InputPath:   "song.mid",
				LogLevel:    "info",
				LogFormat:   "json",
				TempoSource: timing.SourceAuto,
			},
		},
		{
			name: "テンポ収集元指定",
			args: []string{"--tempo-source", "merge", "song.mid"},
			expected: Config{
				InputPath:   "song.mid",
				LogLevel:    "info",
				LogFormat:   "text",
				TempoSource: timing.SourceMerge,
			},
		},
		{
			name: "エンコーディング指定",
			args: []string{"-e", "utf-8, shift_jis,,latin1", "song.mid"},
			expected: Config{
				InputPath:   "song.mid",
				LogLevel:    "info",
				LogFormat:   "text",
				TempoSource: timing.SourceAuto,
				Encodings:   []string{"utf-8", "shift_jis", "latin1"},
			},
		},
		{
			name: "=形式の値",
			args: []string{"--tempo-source=all", "song.mid"},
			expected: Config{
				InputPath:   "song.mid",
				LogLevel:    "info",
				LogFormat:   "text",
				TempoSource: timing.SourceAll,
			},
		},
		{
			name: "ブール型フラグの後の位置引数",
			args: []string{"--events", "song.mid", "--verify", "--normalize-note-off"},
			expected: Config{
				InputPath:        "song.mid",
				LogLevel:         "info",
				LogFormat:        "text",
				TempoSource:      timing.SourceAuto,
				NormalizeNoteOff: true,
				ShowEvents:       true,
				Verify:           true,
			},
		},
		{
			name: "位置引数が最初（順序に関係なく動作）",
			args: []string{"song.mid", "-s", "track0", "--log-level", "debug"},
			expected: Config{
				InputPath:   "song.mid",
				LogLevel:    "debug",
				LogFormat:   "text",
				TempoSource: timing.SourceTrack0,
			},
		},
		{
			name: "ヘルプ表示（短縮形）",
			args: []string{"-h"},
			expected: Config{
				LogLevel:    "info",
				LogFormat:   "text",
				TempoSource: timing.SourceAuto,
				ShowHelp:    true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("SMF_TEMPO_SOURCE", "")
			t.Setenv("SMF_ENCODINGS", "")

			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("ParseArgs(%v) = %+v, want %+v", tt.args, *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_Environment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("SMF_TEMPO_SOURCE", "all")
	t.Setenv("SMF_ENCODINGS", "sjis,latin1")

	config, err := ParseArgs([]string{"song.mid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.TempoSource != timing.SourceAll {
		t.Errorf("TempoSource = %v, want all", config.TempoSource)
	}
	if !reflect.DeepEqual(config.Encodings, []string{"sjis", "latin1"}) {
		t.Errorf("Encodings = %v", config.Encodings)
	}

	// コマンドラインフラグが優先される
	config, err = ParseArgs([]string{"-l", "warn", "-s", "track0", "-e", "utf-8", "song.mid"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.LogLevel != "warn" || config.TempoSource != timing.SourceTrack0 || len(config.Encodings) != 1 {
		t.Errorf("flags should override environment: %+v", config)
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "無効なログレベル",
			args: []string{"--log-level", "invalid"},
		},
		{
			name: "無効なログレベル（短縮形）",
			args: []string{"-l", "trace"},
		},
		{
			name: "無効なログ形式",
			args: []string{"--log-format", "xml"},
		},
		{
			name: "無効なテンポ収集元",
			args: []string{"--tempo-source", "conductor"},
		},
		{
			name: "未知のエンコーディング",
			args: []string{"-e", "utf-8,ebcdic"},
		},
		{
			name: "未知のフラグ",
			args: []string{"--loop"},
		},
		{
			name: "複数のファイル",
			args: []string{"a.mid", "b.mid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LOG_LEVEL", "")
			t.Setenv("SMF_TEMPO_SOURCE", "")
			t.Setenv("SMF_ENCODINGS", "")

			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)

	for _, want := range []string{"Usage:", "--tempo-source", "--encodings", "--verify", "SMF_ENCODINGS"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("help text missing %q", want)
		}
	}
}
