// Package upload stores poster images and video files under a
// server-controlled directory. Files are validated by extension and size
// before anything is written, and saved under generated unique names so a
// client-supplied filename never reaches the filesystem.
package upload

import (
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Validation failures. Handlers map ErrExtension to 400 and ErrTooLarge
// to 413.
var (
	ErrExtension = errors.New("file extension not allowed")
	ErrTooLarge  = errors.New("file exceeds size limit")
)

var (
	imageExtensions = map[string]bool{
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true,
	}
	videoExtensions = map[string]bool{
		".mp4": true, ".webm": true, ".ogg": true, ".mov": true, ".avi": true,
	}
)

// Store saves uploads under BaseDir and enforces per-kind size ceilings.
// PublicPath is the URL prefix recorded in the database (e.g. "/uploads").
type Store struct {
	BaseDir       string
	PublicPath    string
	MaxImageBytes int64
	MaxVideoBytes int64
}

// NewStore builds a Store and creates BaseDir if needed.
func NewStore(baseDir, publicPath string, maxImage, maxVideo int64) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Store{
		BaseDir:       baseDir,
		PublicPath:    strings.TrimRight(publicPath, "/"),
		MaxImageBytes: maxImage,
		MaxVideoBytes: maxVideo,
	}, nil
}

// AllowedImage reports whether the filename carries a permitted image
// extension.
func AllowedImage(filename string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(filename))]
}

// AllowedVideo reports whether the filename carries a permitted video
// extension.
func AllowedVideo(filename string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(filename))]
}

// SaveImage validates and stores a poster image. It returns the public URL
// path ("/uploads/<uuid>.<ext>") to record on the movie row.
func (s *Store) SaveImage(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, imageExtensions, s.MaxImageBytes)
}

// SaveVideo validates and stores a video file, returning its public URL path.
func (s *Store) SaveVideo(fh *multipart.FileHeader) (string, error) {
	return s.save(fh, videoExtensions, s.MaxVideoBytes)
}

func (s *Store) save(fh *multipart.FileHeader, allowed map[string]bool, limit int64) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowed[ext] {
		return "", ErrExtension
	}
	if limit > 0 && fh.Size > limit {
		return "", ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dstPath := filepath.Join(s.BaseDir, name)
	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	// Copy at most limit+1 bytes so a lying Content-Length cannot smuggle an
	// oversized body past the check above.
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		_ = os.Remove(dstPath)
		return "", err
	}
	if limit > 0 && n > limit {
		_ = os.Remove(dstPath)
		return "", ErrTooLarge
	}

	return path.Join(s.PublicPath, name), nil
}
