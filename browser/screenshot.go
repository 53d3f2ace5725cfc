package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/pagepix/pagepix/models"
)

// Screenshot captures the current page as a PNG file and returns the file
// path. The viewport is forced to the configured capture size for the
// duration of the call and the override is cleared afterwards, including on
// error paths.
func (s *Session) Screenshot(dir string) (string, error) {
	err := s.root.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ScreenshotWidth,
		Height:            s.cfg.ScreenshotHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		return "", models.NewExtractError(
			models.ErrCodeInternal,
			"failed to set screenshot viewport",
			err,
		)
	}
	defer func() {
		if clearErr := (proto.EmulationClearDeviceMetricsOverride{}).Call(s.root); clearErr != nil {
			_ = clearErr // tab is parked on about:blank next anyway
		}
	}()

	data, err := s.root.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return "", models.NewExtractError(
			models.ErrCodeInternal,
			"failed to capture screenshot",
			err,
		)
	}

	if dir == "" {
		dir = os.TempDir()
	}
	name := fmt.Sprintf("pagepix-%d.png", time.Now().UnixNano())
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", models.NewExtractError(
			models.ErrCodeInternal,
			"failed to write screenshot file",
			err,
		)
	}
	return path, nil
}
