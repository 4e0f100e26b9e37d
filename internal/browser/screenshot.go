package browser

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Debugger captures full-page screenshots while debug mode is on. A failed
// capture is logged and otherwise ignored.
type Debugger struct {
	outputDir string
}

func NewDebugger(outputDir string) *Debugger {
	if outputDir == "" {
		outputDir = filepath.Join(".", "logs", "screenshots")
	}
	os.MkdirAll(outputDir, 0755)
	return &Debugger{outputDir: outputDir}
}

// Capture writes a screenshot to a path encoding the company id and the
// capture time.
func (d *Debugger) Capture(page Page, companyID string) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(d.outputDir, fmt.Sprintf("%s_%s.png", companyID, timestamp))
	if err := page.Screenshot(path); err != nil {
		slog.Warn("debug screenshot failed", "company", companyID, "error", err)
		return
	}
	slog.Debug("debug screenshot saved", "path", path)
}
