package tools

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"time"
)

// LookPath is swapped in tests.
var LookPath = exec.LookPath

// Detect returns the status of every known tool found on PATH.
func Detect(ctx context.Context) []Status {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	var statuses []Status
	for _, name := range KnownTools() {
		def, _ := Definition(name)
		statuses = append(statuses, detectOne(ctx, def))
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Tool < statuses[j].Tool })
	return statuses
}

func detectOne(ctx context.Context, def ToolDefinition) Status {
	status := Status{Tool: def.Name, Minimum: def.MinimumVersion, Paths: map[string]string{}}

	for _, bin := range def.Binaries {
		path, err := LookPath(bin.Executable)
		if err != nil {
			status.Error = fmt.Sprintf("%s not found on PATH", bin.Executable)
			status.Notes = append(status.Notes, InstallHints(def.Name)...)
			return status
		}
		status.Paths[bin.ID] = path
	}
	status.Path = status.Paths[def.Binaries[0].ID]

	version, err := readVersion(ctx, def, status.Paths)
	if err != nil {
		status.Error = err.Error()
		return status
	}
	status.Version = version
	status.Satisfied = meetsMinimum(version, def.MinimumVersion)
	if !status.Satisfied {
		status.Error = fmt.Sprintf("version %s below minimum %s", version, def.MinimumVersion)
	}
	return status
}
