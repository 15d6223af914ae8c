package tools

import "runtime"

// InstallHints suggests how to install tool on the current platform.
func InstallHints(tool string) []string {
	if tool != "ffmpeg" {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		return []string{
			"Install ffmpeg via Homebrew: brew install ffmpeg",
		}
	case "linux":
		return []string{
			"Install ffmpeg with your distro package manager, e.g. sudo apt install ffmpeg",
		}
	case "windows":
		return []string{
			"Install ffmpeg via winget: winget install Gyan.FFmpeg",
		}
	default:
		return []string{"Install ffmpeg using your platform's package manager"}
	}
}
