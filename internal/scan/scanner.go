// Package scan finds chat exports on disk and loads them as text.
package scan

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	ErrNotTranscript = errors.New("not a .txt transcript")
	ErrEmptyInput    = errors.New("empty transcript")
	ErrInputTooLarge = errors.New("transcript too large")
)

type FileInfo struct {
	Path  string
	Mtime int64
	Size  int64
}

// IsTranscript reports whether path has the export's .txt extension.
func IsTranscript(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

// ScanDir walks root for transcripts in lexical order. Hidden directories
// are skipped.
func ScanDir(root string) ([]FileInfo, error) {
	var files []FileInfo
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsTranscript(path) || info.Size() == 0 {
			return nil
		}
		files = append(files, FileInfo{
			Path:  path,
			Mtime: info.ModTime().Unix(),
			Size:  info.Size(),
		})
		return nil
	})
	return files, err
}

// ReadTranscript loads the export at path, rejecting anything that is not
// a non-empty .txt file of at most maxBytes.
func ReadTranscript(path string, maxBytes int64) (string, error) {
	if !IsTranscript(path) {
		return "", fmt.Errorf("%s: %w", path, ErrNotTranscript)
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", path, ErrNotTranscript)
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return "", fmt.Errorf("%s is %d bytes: %w", path, info.Size(), ErrInputTooLarge)
	}

	text, err := Decode(f, maxBytes)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return text, nil
}

// Decode reads UTF-8 text from r, dropping a byte order mark and composing
// Hangul into NFC so marker matching sees one form. Invalid bytes become
// U+FFFD. A maxBytes of zero disables the size check.
func Decode(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read transcript: %w", err)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return "", ErrInputTooLarge
	}

	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	b, _, err := transform.Bytes(transform.Chain(dec, norm.NFC), raw)
	if err != nil {
		return "", fmt.Errorf("decode transcript: %w", err)
	}
	if len(b) == 0 {
		return "", ErrEmptyInput
	}
	return string(b), nil
}
