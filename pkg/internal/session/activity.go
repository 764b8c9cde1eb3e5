package session

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/meridiem-chat/meridiem-client/pkg/internal/models"
	"github.com/spf13/viper"
)

// ProcessScanDetector detects known applications by scanning the process
// table. The mapping from binary name to display name comes from the
// activity.processes table in settings.
type ProcessScanDetector struct {
	procRoot string
}

func NewProcessScanDetector() *ProcessScanDetector {
	return &ProcessScanDetector{procRoot: "/proc"}
}

func (d *ProcessScanDetector) Detect() *models.Activity {
	known := viper.GetStringMapString("activity.processes")
	if len(known) == 0 {
		return nil
	}

	entries, err := os.ReadDir(d.procRoot)
	if err != nil {
		return nil
	}
	for _, entry := range entries {
		if !entry.IsDir() || !isNumeric(entry.Name()) {
			continue
		}
		comm, err := os.ReadFile(filepath.Join(d.procRoot, entry.Name(), "comm"))
		if err != nil {
			continue
		}
		binary := strings.TrimSpace(string(comm))
		if display, ok := known[strings.ToLower(binary)]; ok {
			return &models.Activity{Name: display, Type: "game"}
		}
	}
	return nil
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
