// Package media downloads message attachments from the Telegram file API
// and stores them in a local directory or an S3 bucket.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/edgard/tgcollector/internal/config"
	apperrors "github.com/edgard/tgcollector/internal/errors"
)

// Hint describes the attachment being fetched. All fields are optional.
type Hint struct {
	DocumentType string
	FileName     string
	MimeType     string
	ChatID       int64
}

// Downloader fetches the bytes behind a platform file id and returns where
// they were stored.
type Downloader interface {
	Fetch(ctx context.Context, fileID string, hint Hint) (string, error)
}

// Sink persists downloaded bytes under key and returns their location.
type Sink interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// FileAPI is the subset of the bot client used to resolve file ids.
type FileAPI interface {
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

// TelegramDownloader resolves file ids through the Bot API and copies the
// file into a Sink. Concurrent downloads are bounded.
type TelegramDownloader struct {
	files   FileAPI
	sink    Sink
	client  *http.Client
	sem     *semaphore.Weighted
	timeout time.Duration
	maxSize int64
	logger  *slog.Logger
}

// NewTelegramDownloader creates a downloader from the media configuration.
func NewTelegramDownloader(files FileAPI, sink Sink, cfg config.MediaConfig, logger *slog.Logger) *TelegramDownloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &TelegramDownloader{
		files:   files,
		sink:    sink,
		client:  &http.Client{},
		sem:     semaphore.NewWeighted(cfg.MaxConcurrent),
		timeout: cfg.Timeout,
		maxSize: cfg.MaxSize,
		logger:  logger.With("component", "media"),
	}
}

// Fetch downloads fileID and stores it. Every failure is an ExternalIOError.
func (d *TelegramDownloader) Fetch(ctx context.Context, fileID string, hint Hint) (location string, err error) {
	if fileID == "" {
		return "", apperrors.NewExternalIOError("fetch media", fmt.Errorf("empty file id"))
	}

	if err := d.sem.Acquire(ctx, 1); err != nil {
		return "", apperrors.NewExternalIOError("wait for download slot", err)
	}
	defer d.sem.Release(1)

	downloadCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	file, err := d.files.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", apperrors.NewExternalIOError("get file", err)
	}
	if file.FilePath == "" {
		return "", apperrors.NewExternalIOError("get file", fmt.Errorf("empty file path returned from Telegram"))
	}
	if int64(file.FileSize) > d.maxSize {
		return "", apperrors.NewExternalIOError("get file",
			fmt.Errorf("file size %d exceeds limit %d", int64(file.FileSize), d.maxSize))
	}

	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, d.files.FileDownloadLink(file), nil)
	if err != nil {
		return "", apperrors.NewExternalIOError("create download request", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return "", apperrors.NewExternalIOError("download file", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			d.logger.WarnContext(ctx, "Failed to close download body", "file_id", fileID, "error", closeErr)
		}
	}()
	if resp.StatusCode != http.StatusOK {
		return "", apperrors.NewExternalIOError("download file", fmt.Errorf("unexpected status code %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.maxSize+1))
	if err != nil {
		return "", apperrors.NewExternalIOError("read file data", err)
	}
	if int64(len(data)) > d.maxSize {
		return "", apperrors.NewExternalIOError("read file data", fmt.Errorf("file exceeds limit %d", d.maxSize))
	}

	contentType := hint.MimeType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	key := ObjectKey(hint, file.FilePath)
	location, err = d.sink.Put(downloadCtx, key, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		return "", apperrors.NewExternalIOError("store file", err)
	}

	d.logger.DebugContext(ctx, "Media stored", "file_id", fileID, "location", location, "size", len(data))
	return location, nil
}

// ObjectKey builds a collision-free key: <type>/<chat>/<uuid><ext>. The
// extension comes from the original file name, else from the Bot API path.
func ObjectKey(hint Hint, remotePath string) string {
	ext := filepath.Ext(hint.FileName)
	if ext == "" {
		ext = path.Ext(remotePath)
	}
	kind := hint.DocumentType
	if kind == "" {
		kind = "file"
	}
	return path.Join(kind, fmt.Sprintf("%d", hint.ChatID), uuid.NewString()+strings.ToLower(ext))
}
