package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zurustar/smfparse/pkg/smf"
	"github.com/zurustar/smfparse/pkg/timing"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	InputPath        string        // 解析するMIDIファイルのパス
	LogLevel         string        // ログレベル（debug, info, warn, error）
	LogFormat        string        // ログ形式（text, json）
	TempoSource      timing.Source // テンポマップの収集元
	Encodings        []string      // テキストメタイベントのデコード順（空ならデフォルト）
	NormalizeNoteOff bool          // ベロシティ0のNoteOnをNoteOffに変換
	ShowEvents       bool          // 全イベントを出力
	Verify           bool          // 別実装のMIDIリーダーで演奏時間を照合
	ShowHelp         bool          // ヘルプ表示フラグ
}

// ブール型フラグ（reorderArgsで次の引数を値として取り込まない）
var boolFlags = map[string]bool{
	"-h": true, "--help": true, "-help": true,
	"--normalize-note-off": true, "-normalize-note-off": true,
	"--events": true, "-events": true,
	"--verify": true, "-verify": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("smfdump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var tempoSource, encodings string
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.LogFormat, "log-format", "text", "ログ形式（text, json）")
	fs.StringVar(&tempoSource, "tempo-source", "", "テンポの収集元（auto, track0, all, merge）")
	fs.StringVar(&tempoSource, "s", "", "テンポの収集元（短縮形）")
	fs.StringVar(&encodings, "encodings", "", "テキストのエンコーディング（カンマ区切り）")
	fs.StringVar(&encodings, "e", "", "テキストのエンコーディング（短縮形）")
	fs.BoolVar(&config.NormalizeNoteOff, "normalize-note-off", false, "ベロシティ0のNoteOnをNoteOffとして扱う")
	fs.BoolVar(&config.ShowEvents, "events", false, "全イベントを出力")
	fs.BoolVar(&config.Verify, "verify", false, "演奏時間を別実装で照合")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}
	if tempoSource == "" {
		tempoSource = os.Getenv("SMF_TEMPO_SOURCE")
	}
	if encodings == "" {
		encodings = os.Getenv("SMF_ENCODINGS")
	}

	// ログレベルの検証
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	config.LogFormat = strings.ToLower(config.LogFormat)
	if config.LogFormat != "text" && config.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format: %s (must be text or json)", config.LogFormat)
	}

	source, err := timing.ParseSource(tempoSource)
	if err != nil {
		return nil, err
	}
	config.TempoSource = source

	// エンコーディング名の検証
	if encodings != "" {
		for _, name := range strings.Split(encodings, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if _, err := smf.DecoderByName(name); err != nil {
				return nil, err
			}
			config.Encodings = append(config.Encodings, name)
		}
	}

	// 位置引数（MIDIファイルのパス）
	switch fs.NArg() {
	case 0:
	case 1:
		config.InputPath = fs.Arg(0)
	default:
		return nil, fmt.Errorf("expected one MIDI file, got %d arguments", fs.NArg())
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		// フラグかどうかを判定（-または--で始まる）
		if len(arg) > 1 && arg[0] == '-' {
			flags = append(flags, arg)

			// -e=utf-8 のような形式は値を含んでいる
			if strings.Contains(arg, "=") || boolFlags[arg] {
				continue
			}

			// 次の引数が値である可能性をチェック（-l debug のような場合）
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				i++
				flags = append(flags, args[i])
			}
		} else {
			// 位置引数（"-" 単体も含む）
			positional = append(positional, arg)
		}
	}

	// フラグを前に、位置引数を後ろに配置
	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprintf(w, `smfdump - Standard MIDI File inspector

Usage:
  smfdump [options] <file.mid>

Arguments:
  file.mid      解析するStandard MIDI Fileのパス
                ファイル名の大文字・小文字は区別しない

Options:
  -l, --log-level <level>       ログレベル: debug, info, warn, error（デフォルト: info）
  --log-format <format>         ログ形式: text, json（デフォルト: text）
  -s, --tempo-source <source>   テンポの収集元: auto, track0, all, merge（デフォルト: auto）
  -e, --encodings <list>        テキストのエンコーディング順（例: utf-8,shift_jis,latin1）
  --normalize-note-off          ベロシティ0のNoteOnをNoteOffとして扱う
  --events                      全イベントを絶対tickとミリ秒付きで出力
  --verify                      演奏時間を別実装のMIDIリーダーで照合
  -h, --help                    このヘルプを表示

Environment Variables:
  LOG_LEVEL=<level>             ログレベル
  SMF_TEMPO_SOURCE=<source>     テンポの収集元
  SMF_ENCODINGS=<list>          テキストのエンコーディング順

Examples:
  smfdump song.mid                      ヘッダ・トラック・テンポマップを表示
  smfdump --events song.mid             全イベントを表示
  smfdump -e shift_jis,latin1 song.mid  日本語のトラック名をデコード
  smfdump -s all --verify song.mid      全トラックのテンポを使い、演奏時間を照合
`)
}
