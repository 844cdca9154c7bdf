package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/zurustar/smfparse/pkg/cli"
	"github.com/zurustar/smfparse/pkg/fileutil"
	"github.com/zurustar/smfparse/pkg/logger"
	"github.com/zurustar/smfparse/pkg/report"
	"github.com/zurustar/smfparse/pkg/smf"
)

// ErrNoInput は解析対象のファイルが指定されていない場合のエラー
var ErrNoInput = errors.New("no MIDI file specified")

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config *cli.Config
	log    *slog.Logger
	fsys   fileutil.FileSystem
	stdout io.Writer // レポートの出力先
	stderr io.Writer // ログの出力先
}

// New Applicationを作成
func New(fsys fileutil.FileSystem, stdout, stderr io.Writer) *Application {
	return &Application{
		fsys:   fsys,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	if err := app.parseArgs(args); err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	if app.config.InputPath == "" {
		cli.PrintHelp(app.stderr)
		return ErrNoInput
	}

	// 2. ロガーの初期化
	if err := app.initLogger(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.log.Debug("Application started", "input", app.config.InputPath, "tempoSource", app.config.TempoSource)

	// 3. 対象ファイルの列挙（ディレクトリ指定時は直下のMIDIファイルすべて）
	files, err := app.resolveInputs(app.config.InputPath)
	if err != nil {
		return fmt.Errorf("failed to resolve input: %w", err)
	}

	opts, err := app.parseOptions()
	if err != nil {
		return fmt.Errorf("failed to configure parser: %w", err)
	}

	// 4. 各ファイルの解析とレポート出力
	var errs []error
	for i, path := range files {
		if i > 0 {
			fmt.Fprintln(app.stdout)
		}
		if err := app.dumpFile(path, opts, len(files) > 1); err != nil {
			app.log.Error("Failed to dump file", "path", path, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}

	app.log.Debug("Application terminated", "files", len(files), "failed", len(errs))
	return errors.Join(errs...)
}

// parseArgs コマンドライン引数を解析
func (app *Application) parseArgs(args []string) error {
	config, err := cli.ParseArgs(args)
	if err != nil {
		return err
	}
	app.config = config
	return nil
}

// initLogger ロガーを初期化
func (app *Application) initLogger() error {
	if err := logger.InitLogger(app.config.LogLevel, app.stderr, app.config.LogFormat); err != nil {
		return err
	}
	app.log = logger.GetLogger()
	return nil
}

// resolveInputs 入力パスを解析対象ファイルの一覧に展開する
func (app *Application) resolveInputs(path string) ([]string, error) {
	info, err := app.fsys.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	files, err := fileutil.ListMIDIFiles(app.fsys, path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no MIDI files in %s", path)
	}
	app.log.Info("MIDI files found", "dir", path, "count", len(files))
	return files, nil
}

// parseOptions 設定からパーサーオプションを組み立てる
func (app *Application) parseOptions() ([]smf.Option, error) {
	opts := []smf.Option{smf.WithLogger(app.log)}

	if app.config.NormalizeNoteOff {
		opts = append(opts, smf.WithNoteOffNormalization(smf.DefaultNormalizedVelocity))
	}

	if len(app.config.Encodings) > 0 {
		decoders, err := smf.DecodersByName(app.config.Encodings)
		if err != nil {
			return nil, err
		}
		opts = append(opts, smf.WithTextDecoders(decoders...))
	}

	return opts, nil
}

// dumpFile 1ファイルを読み込み、解析してレポートを出力する
func (app *Application) dumpFile(path string, opts []smf.Option, labeled bool) error {
	data, err := app.fsys.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := smf.Parse(data, opts...)
	if err != nil {
		app.logParseError(path, err)
		return fmt.Errorf("failed to parse: %w", err)
	}

	app.log.Info("MIDI file parsed", "path", path, "format", doc.Format, "tracks", len(doc.Tracks), "division", doc.Timing)

	name := ""
	if labeled {
		name = path
	}
	if err := report.Write(app.stdout, doc, report.Options{
		Name:   name,
		Source: app.config.TempoSource,
		Events: app.config.ShowEvents,
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if app.config.Verify {
		result, err := Verify(data, doc, app.config.TempoSource)
		if err != nil {
			return fmt.Errorf("failed to verify: %w", err)
		}
		app.logVerifyResult(path, result)
	}

	return nil
}

// logParseError 解析エラーの詳細（種別・オフセット）をログに出力
func (app *Application) logParseError(path string, err error) {
	var perr *smf.ParseError
	if !errors.As(err, &perr) {
		return
	}
	app.log.Debug("Parse error detail", "path", path, "category", string(perr.Category()), "offset", perr.Offset)
}

// logVerifyResult 照合結果をログに出力（不一致は警告）
func (app *Application) logVerifyResult(path string, r *VerifyResult) {
	if r.Match() {
		app.log.Info("Duration verified", "path", path, "duration", r.Computed, "reference", r.Reference)
		return
	}
	app.log.Warn("Duration mismatch", "path", path, "duration", r.Computed, "reference", r.Reference, "diff", r.Diff())
}
