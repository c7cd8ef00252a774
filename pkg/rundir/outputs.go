package rundir

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/fieldsweep/pkg/domain"
)

// PriorOutputs locates the solver log and input left in dir by a finished run.
//
// The log is the most recently modified *.out file. The input is the *.fdf
// sharing the log's stem when there is one, else the first *.fdf by name.
func PriorOutputs(dir string) (logPath, inputPath string, err error) {
	logs, err := filepath.Glob(filepath.Join(dir, "*.out"))
	if err != nil {
		return "", "", err
	}
	if len(logs) == 0 {
		return "", "", fmt.Errorf("no *.out in %s: %w", dir, domain.ErrMissingPriorOutput)
	}

	var newest os.FileInfo
	for _, l := range logs {
		fi, err := os.Stat(l)
		if err != nil {
			continue
		}
		if newest == nil || fi.ModTime().After(newest.ModTime()) {
			newest, logPath = fi, l
		}
	}
	if logPath == "" {
		return "", "", fmt.Errorf("no readable *.out in %s: %w", dir, domain.ErrMissingPriorOutput)
	}

	inputs, err := filepath.Glob(filepath.Join(dir, "*.fdf"))
	if err != nil {
		return "", "", err
	}
	if len(inputs) == 0 {
		return "", "", fmt.Errorf("no *.fdf in %s: %w", dir, domain.ErrMissingPriorOutput)
	}
	sort.Strings(inputs)

	stem := strings.TrimSuffix(logPath, ".out")
	for _, in := range inputs {
		if strings.TrimSuffix(in, ".fdf") == stem {
			return logPath, in, nil
		}
	}
	return logPath, inputs[0], nil
}
