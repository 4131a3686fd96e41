package preflight

import (
	"fmt"

	"wwisex/internal/config"
	"wwisex/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem and tool checks for a run.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	for _, archive := range cfg.Paths.ArchiveInputs {
		results = append(results, CheckReadableFile("Archive", archive))
	}

	if len(cfg.Paths.ArchiveInputs) > 0 {
		results = append(results, CheckWritableParent("Extract root", cfg.Paths.ExtractRoot))
	} else {
		// Without archives the source tree must already be populated.
		results = append(results, CheckDirectoryAccess("Source audio directory", cfg.Paths.SourceAudioDir))
	}

	results = append(results, CheckWritableParent("Output directory", cfg.Paths.OutputDir))

	for _, status := range CheckSystemDeps(cfg) {
		results = append(results, fromStatus(status))
	}
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

func fromStatus(status deps.Status) Result {
	if status.Available {
		return Result{Name: status.Name, Passed: true, Detail: status.Command}
	}
	if status.Optional {
		return Result{Name: status.Name, Passed: true, Detail: fmt.Sprintf("%s (optional, unavailable)", status.Detail)}
	}
	return Result{Name: status.Name, Detail: status.Detail}
}
