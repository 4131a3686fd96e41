package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CheckCodebooks reports the packed codebook file ww2ogg will be given.
//
// The configured path wins when it exists. Otherwise a file with the same
// name sitting next to the resolved ww2ogg binary is used, which is how the
// tool is usually distributed.
func CheckCodebooks(converterCommand, configured string) Status {
	result := Status{
		Name:        "ww2ogg codebooks",
		Description: "Packed Vorbis codebooks passed to ww2ogg with --pcb",
	}

	path, ok := ResolveCodebooks(converterCommand, configured)
	result.Command = path
	if ok {
		result.Available = true
		return result
	}
	if strings.TrimSpace(configured) == "" {
		result.Detail = "codebooks not configured"
	} else {
		result.Detail = "codebook file " + configured + " not found"
	}
	return result
}

// ResolveCodebooks returns the codebook path to use and whether it exists.
// When nothing is found the configured value is returned unchanged.
func ResolveCodebooks(converterCommand, configured string) (string, bool) {
	configured = strings.TrimSpace(configured)
	if configured != "" && isRegularFile(configured) {
		return configured, true
	}
	if candidate, ok := codebooksSidecar(converterCommand, configured); ok && isRegularFile(candidate) {
		return candidate, true
	}
	return configured, false
}

func codebooksSidecar(converterCommand, configured string) (string, bool) {
	converter := strings.TrimSpace(converterCommand)
	name := filepath.Base(strings.TrimSpace(configured))
	if converter == "" || name == "" || name == "." || name == string(filepath.Separator) {
		return "", false
	}
	resolved, err := exec.LookPath(converter)
	if err != nil {
		return "", false
	}
	return filepath.Join(filepath.Dir(resolved), name), true
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
