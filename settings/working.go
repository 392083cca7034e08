package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Detect the folder the binary runs from. Binaries started by `go run` live
// in a throwaway build folder, the current directory is used instead.
func GetWorkingFolder() (string, string, error) {
	exePath, exeErr := os.Executable()
	if exeErr != nil {
		return "", "", exeErr
	}

	workingFolder := filepath.Dir(exePath)

	// Adjust for MacOS
	if runtime.GOOS == "darwin" {
		if appIndex := strings.Index(workingFolder, ".app"); appIndex != -1 {
			sepIndex := strings.LastIndex(workingFolder[:appIndex], string(os.PathSeparator))
			workingFolder = workingFolder[:sepIndex]
		}
	}

	if strings.HasPrefix(workingFolder, os.TempDir()) && strings.Contains(workingFolder, "go-build") {
		if cwd, err := os.Getwd(); err == nil {
			workingFolder = cwd
		}
	}

	return exePath, workingFolder, nil
}
