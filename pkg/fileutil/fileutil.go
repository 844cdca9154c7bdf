// Package fileutil provides file system utility functions.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// midiExtensions lists the file extensions treated as Standard MIDI Files.
var midiExtensions = map[string]bool{
	".mid":  true,
	".midi": true,
	".smf":  true,
	".kar":  true,
}

// IsMIDIFile reports whether name has a Standard MIDI File extension.
// The comparison is case-insensitive.
func IsMIDIFile(name string) bool {
	return midiExtensions[strings.ToLower(filepath.Ext(name))]
}

// FindFileCaseInsensitive searches for a file with the given name in the specified directory.
// The search is case-insensitive, so "SONG.MID" finds "song.mid" on case-sensitive disks.
//
// Example:
//
//	path, err := FindFileCaseInsensitive("/path/to/dir", "Song.MID")
//	// Will find "song.mid", "SONG.MID", "Song.mid", etc.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if name, ok := matchEntry(entries, filename); ok {
		return filepath.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

// FindFileCaseInsensitiveFS is FindFileCaseInsensitive for an fs.FS.
// The returned path uses forward slashes.
func FindFileCaseInsensitiveFS(fsys fs.FS, dir, filename string) (string, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	if name, ok := matchEntry(entries, filename); ok {
		return path.Join(dir, name), nil
	}
	return "", fmt.Errorf("file not found: %s (searched in %s): %w", filename, dir, fs.ErrNotExist)
}

func matchEntry(entries []fs.DirEntry, filename string) (string, bool) {
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(entry.Name(), filename) {
			return entry.Name(), true
		}
	}
	return "", false
}
