package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	photoDownloadTimeout = 30 * time.Second
	maxPhotoDownloadSize = 10 * 1024 * 1024
)

// bestPhotoSize picks the largest variant Telegram offers for a photo.
func bestPhotoSize(sizes []models.PhotoSize) models.PhotoSize {
	best := sizes[0]
	bestQuality := best.Width * best.Height
	for _, photo := range sizes[1:] {
		quality := photo.Width * photo.Height
		if quality > bestQuality {
			bestQuality = quality
			best = photo
		}
	}
	return best
}

// downloadPhotoToTemp downloads a photo from Telegram's file API into a
// temporary file and returns its path. The caller owns the file and must
// remove it when done.
func downloadPhotoToTemp(ctx context.Context, b *bot.Bot, token, fileID string) (path string, err error) {
	if token == "" {
		return "", fmt.Errorf("empty token provided for photo download")
	}
	if fileID == "" {
		return "", fmt.Errorf("empty fileID provided for photo download")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, photoDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return "", fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create HTTP request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d downloading photo", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "friendbook-photo-*.jpg")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}

	_, err = io.Copy(tmp, io.LimitReader(resp.Body, maxPhotoDownloadSize))
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("failed to write photo to temp file: %w", err)
	}

	return tmp.Name(), nil
}
