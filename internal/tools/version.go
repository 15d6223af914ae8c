package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// readVersion runs the first binary of def with its version switch and
// returns the release number from the banner.
func readVersion(ctx context.Context, def ToolDefinition, paths map[string]string) (string, error) {
	if len(def.Binaries) == 0 {
		return "", fmt.Errorf("tool %s has no binary definition", def.Name)
	}
	bin := def.Binaries[0]
	path, ok := paths[bin.ID]
	if !ok {
		return "", fmt.Errorf("main binary %s missing", bin.ID)
	}

	output, err := exec.CommandContext(ctx, path, bin.VersionSwitch).Output()
	if err != nil {
		return "", fmt.Errorf("%s version: %w", def.Name, err)
	}
	banner, _, _ := strings.Cut(strings.TrimSpace(string(output)), "\n")
	return bannerVersion(banner), nil
}

// bannerVersion extracts the token after "version" in an ffmpeg banner
// such as "ffmpeg version n7.0-static Copyright ...". Release builds are
// reduced to their dotted number; git snapshots ("N-113764-g...",
// "git-2024-01-01") are returned as-is.
func bannerVersion(banner string) string {
	fields := strings.Fields(banner)
	for i := 0; i+1 < len(fields); i++ {
		if fields[i] != "version" {
			continue
		}
		token := fields[i+1]
		if isSnapshot(token) {
			return token
		}
		if num := leadingRelease(strings.TrimPrefix(token, "n")); num != "" {
			return num
		}
		return token
	}
	return banner
}

func isSnapshot(token string) bool {
	return strings.HasPrefix(token, "N-") || strings.HasPrefix(token, "git")
}

// leadingRelease returns the dotted digits prefix: "6.1.1-3ubuntu" -> "6.1.1".
func leadingRelease(s string) string {
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	return strings.TrimRight(s[:end], ".")
}

// meetsMinimum compares dotted release numbers. Git snapshots are newer
// than any release.
func meetsMinimum(version, minimum string) bool {
	if minimum == "" {
		return true
	}
	if version == "" {
		return false
	}
	if isSnapshot(version) {
		return true
	}

	have := releaseParts(version)
	want := releaseParts(minimum)
	for i := 0; i < len(have) || i < len(want); i++ {
		h, w := partAt(have, i), partAt(want, i)
		if h != w {
			return h > w
		}
	}
	return true
}

func releaseParts(version string) []int {
	var parts []int
	for _, p := range strings.Split(leadingRelease(version), ".") {
		n, err := strconv.Atoi(p)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}
