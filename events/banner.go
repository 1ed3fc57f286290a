package events

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"sofa/mq"
	"sofa/utils"

	"github.com/disintegration/imaging"
)

const eventpicUploadPath = "./static/eventpic"

// saveBannerImage processes the uploaded "event-banner" form file and
// returns the stored file name, or "" when no file was sent.
func saveBannerImage(r *http.Request, eventID string) (string, error) {
	file, header, err := r.FormFile("event-banner")
	if err != nil {
		if err == http.ErrMissingFile {
			return "", nil
		}
		return "", fmt.Errorf("error retrieving banner file: %w", err)
	}
	defer file.Close()

	if !utils.SupportedImageTypes[header.Header.Get("Content-Type")] {
		return "", fmt.Errorf("unsupported banner image type")
	}

	img, err := imaging.Decode(file)
	if err != nil {
		return "", fmt.Errorf("failed to decode banner image: %w", err)
	}

	if err := os.MkdirAll(eventpicUploadPath, 0755); err != nil {
		return "", fmt.Errorf("error creating banner directory: %w", err)
	}
	thumbDir := filepath.Join(eventpicUploadPath, "thumb")
	if err := os.MkdirAll(thumbDir, 0755); err != nil {
		return "", fmt.Errorf("error creating thumbnail directory: %w", err)
	}

	fileName := eventID + ".jpg"
	if err := imaging.Save(img, filepath.Join(eventpicUploadPath, fileName)); err != nil {
		return "", fmt.Errorf("failed to save banner: %w", err)
	}

	thumbImg := imaging.Resize(img, 300, 0, imaging.Lanczos)
	if err := imaging.Save(thumbImg, filepath.Join(thumbDir, fileName)); err != nil {
		return "", fmt.Errorf("failed to save banner thumbnail: %w", err)
	}

	m := mq.Index{}
	mq.Notify("eventpic-uploaded", m)

	return fileName, nil
}
