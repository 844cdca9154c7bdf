// Package fileutil provides unified file system access for both real and embedded file systems.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// FileSystem は実ファイルシステムとfs.FSを統一的に扱うインターフェース
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// Stat はファイル情報を返す（大文字小文字を無視）
	Stat(name string) (fs.FileInfo, error)
	// ReadDir はディレクトリの内容を読み込む
	ReadDir(name string) ([]fs.DirEntry, error)
	// Join はファイルシステムの区切り文字でパスを結合する
	Join(elem ...string) string
}

// RealFS は実ファイルシステムへのアクセスを提供する
type RealFS struct {
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
// basePathが空の場合、相対パスはカレントディレクトリ基準になる
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	actualPath, err := r.findFileCaseInsensitive(r.resolvePath(name))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(actualPath)
}

func (r *RealFS) Stat(name string) (fs.FileInfo, error) {
	actualPath, err := r.findFileCaseInsensitive(r.resolvePath(name))
	if err != nil {
		return nil, err
	}
	return os.Stat(actualPath)
}

func (r *RealFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(r.resolvePath(name))
}

func (r *RealFS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (r *RealFS) resolvePath(name string) string {
	// 絶対パスはそのまま使用
	if filepath.IsAbs(name) || r.basePath == "" {
		return name
	}
	return filepath.Join(r.basePath, name)
}

func (r *RealFS) findFileCaseInsensitive(p string) (string, error) {
	// まず直接アクセスを試みる
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}

	// 大文字小文字を無視して検索
	return FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
}

// EmbedFS は埋め込みファイルシステム（embed.FS、fstest.MapFSなど任意のfs.FS）へのアクセスを提供する
type EmbedFS struct {
	fsys     fs.FS
	basePath string
}

// NewEmbedFS はfs.FS用のFileSystemを作成する
func NewEmbedFS(fsys fs.FS, basePath string) *EmbedFS {
	return &EmbedFS{fsys: fsys, basePath: basePath}
}

func (e *EmbedFS) ReadFile(name string) ([]byte, error) {
	actualPath, err := e.findFileCaseInsensitive(e.resolvePath(name))
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(e.fsys, actualPath)
}

func (e *EmbedFS) Stat(name string) (fs.FileInfo, error) {
	actualPath, err := e.findFileCaseInsensitive(e.resolvePath(name))
	if err != nil {
		return nil, err
	}
	return fs.Stat(e.fsys, actualPath)
}

func (e *EmbedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(e.fsys, e.resolvePath(name))
}

func (e *EmbedFS) Join(elem ...string) string {
	return path.Join(elem...)
}

func (e *EmbedFS) resolvePath(name string) string {
	// fs.FSのパスは "/" 区切りで先頭の "/" を持たない
	cleanName := strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
	// "." は現在のディレクトリを意味するので、basePathそのものを返す
	if cleanName == "." || cleanName == "" {
		if e.basePath != "" {
			return e.basePath
		}
		return "."
	}
	if e.basePath != "" {
		return path.Join(e.basePath, cleanName)
	}
	return path.Clean(cleanName)
}

func (e *EmbedFS) findFileCaseInsensitive(p string) (string, error) {
	// まず直接アクセスを試みる
	if _, err := fs.Stat(e.fsys, p); err == nil {
		return p, nil
	}

	// 大文字小文字を無視して検索
	return FindFileCaseInsensitiveFS(e.fsys, path.Dir(p), path.Base(p))
}

// ListMIDIFiles はディレクトリ直下のMIDIファイルを名前順で返す
// 返されるパスはdirとファイル名を結合したもの
func ListMIDIFiles(fsys FileSystem, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !IsMIDIFile(entry.Name()) {
			continue
		}
		files = append(files, fsys.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
