package render

import (
	"encoding/json"
	"os"
	"strings"
)

// sidecarPath maps an image path to its metadata sidecar path.
func sidecarPath(imagePath string) string {
	ext := strings.LastIndex(imagePath, ".")
	if ext < 0 {
		return imagePath + ".json"
	}
	return imagePath[:ext] + ".json"
}

func writeSidecar(path string, meta Metadata) error {
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
