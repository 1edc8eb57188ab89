package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Dosada05/competition-brackets/models"
	"github.com/Dosada05/competition-brackets/storage"
)

// BracketArchiver keeps a snapshot of a bracket that regeneration is about to discard.
type BracketArchiver interface {
	Archive(ctx context.Context, b *models.Bracket) (string, error)
}

type storageArchiver struct {
	uploader storage.FileUploader
	logger   *slog.Logger
}

func NewBracketArchiver(uploader storage.FileUploader, logger *slog.Logger) BracketArchiver {
	return &storageArchiver{uploader: uploader, logger: logger}
}

func archiveKey(b *models.Bracket) string {
	return fmt.Sprintf("brackets/%d/%d/%s.json", b.CompetitionID, b.GroupKey().CategoryOrZero(), uuid.NewString())
}

func (a *storageArchiver) Archive(ctx context.Context, b *models.Bracket) (string, error) {
	body, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to encode bracket %d: %w", b.ID, err)
	}

	key := archiveKey(b)
	if _, err := a.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body)); err != nil {
		return "", fmt.Errorf("failed to archive bracket %d: %w", b.ID, err)
	}

	a.logger.Info("bracket archived",
		slog.Int("bracket_id", b.ID),
		slog.String("key", key),
		slog.String("url", a.uploader.GetPublicURL(key)))
	return key, nil
}
