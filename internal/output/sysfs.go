package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const sysfsInputDir = "/sys/class/input"

// HardwareName looks up the kernel name of the device under
// /sys/class/input, for use as the hardware match string in config
// snippets. It only confirms a device with exactly that name exists;
// callers fall back to a placeholder when it does not.
func HardwareName(deviceName string) (string, error) {
	return hardwareNameIn(sysfsInputDir, deviceName)
}

func hardwareNameIn(root, deviceName string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", root, err)
	}
	for _, entry := range entries {
		if !strings.HasPrefix(entry.Name(), "event") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(root, entry.Name(), "device", "name"))
		if err != nil {
			continue
		}
		if name := strings.TrimSpace(string(data)); name == deviceName {
			return name, nil
		}
	}
	return "", fmt.Errorf("no input device named %q under %s", deviceName, root)
}
