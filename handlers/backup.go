package handlers

import (
	"bytes"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"habitual/config"
	"habitual/database"
	"habitual/logger"
	"habitual/models"
	"habitual/services"
)

// snapshotFor builds the caller's snapshot, writing the error response itself on failure
func snapshotFor(c *fiber.Ctx) (*services.Snapshot, error) {
	user, err := currentUser(c)
	if err != nil {
		return nil, userError(c, err)
	}
	snap, err := services.BuildSnapshot(c.UserContext(), database.DB, user, time.Now())
	if err != nil {
		return nil, serverError(c, "failed to build backup", err)
	}
	return snap, nil
}

// ExportBackup downloads every habit the caller owns as JSON
func ExportBackup(c *fiber.Ctx) error {
	snap, err := snapshotFor(c)
	if snap == nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := snap.WriteTo(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode backup",
		})
	}

	services.LogActivity(database.DB, models.Activity{
		UserID:    snap.User.ID,
		Action:    models.ActivityBackupExport,
		Details:   snap.FileName(),
		IPAddress: c.IP(),
	})

	c.Attachment(snap.FileName())
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(buf.Bytes())
}

// UploadBackup pushes a snapshot to the configured SFTP target
func UploadBackup(c *fiber.Ctx) error {
	cfg := config.GetConfig()
	if !cfg.Backup.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "SFTP backup is not configured",
		})
	}

	snap, err := snapshotFor(c)
	if snap == nil {
		return err
	}

	var buf bytes.Buffer
	if _, err := snap.WriteTo(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to encode backup",
		})
	}

	remotePath, err := services.NewSFTPTarget(cfg.Backup).Upload(snap.FileName(), &buf)
	if err != nil {
		if errors.Is(err, services.ErrBackupNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "SFTP backup is not configured",
			})
		}
		logger.Error("sftp upload failed", "host", cfg.Backup.SFTPHost, "user", snap.User.Username, "err", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Upload to the backup server failed",
		})
	}

	services.LogActivity(database.DB, models.Activity{
		UserID:    snap.User.ID,
		Action:    models.ActivityBackupUpload,
		Details:   remotePath,
		IPAddress: c.IP(),
	})

	return c.JSON(fiber.Map{
		"remotePath": remotePath,
	})
}
