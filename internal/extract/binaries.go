package extract

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// ErrBinaryNotFound is returned when an OCR tool cannot be located.
var ErrBinaryNotFound = errors.New("binary not found")

// resolveBinary returns configured when set, otherwise searches for name.
func resolveBinary(configured, name string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	if p, ok := findBinary(name); ok {
		return p, nil
	}
	return "", fmt.Errorf("%w: %s", ErrBinaryNotFound, name)
}

// findBinary searches the system PATH first, then common install
// directories for the current OS.
func findBinary(name string) (string, bool) {
	if runtime.GOOS == "windows" && filepath.Ext(name) != ".exe" {
		name += ".exe"
	}

	if p, err := exec.LookPath(name); err == nil {
		return p, true
	}

	for _, dir := range defaultDirs() {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// defaultDirs lists where poppler-utils and tesseract usually live.
func defaultDirs() []string {
	switch runtime.GOOS {
	case "linux":
		return []string{"/usr/bin", "/usr/local/bin", "/snap/bin"}
	case "darwin":
		return []string{"/opt/homebrew/bin", "/usr/local/bin", "/opt/local/bin"}
	case "windows":
		return []string{
			`C:\Program Files\Tesseract-OCR`,
			`C:\Program Files (x86)\Tesseract-OCR`,
			`C:\Program Files\poppler\Library\bin`,
		}
	default:
		return nil
	}
}
