package tools

import (
	"context"
	"os/exec"
)

// H264Encoders lists H.264 encoders in preference order.
var H264Encoders = []string{"libx264", "h264_videotoolbox", "h264_nvenc", "h264_amf"}

// EncoderTester runs one encoder against a tiny synthetic input.
type EncoderTester func(ctx context.Context, ffmpegPath, codec string) bool

// ProbeEncoders returns the candidates ffmpeg can actually encode with.
func ProbeEncoders(ctx context.Context, ffmpegPath string, candidates []string, test EncoderTester) []string {
	if test == nil {
		test = testEncoder
	}
	var available []string
	for _, codec := range candidates {
		if test(ctx, ffmpegPath, codec) {
			available = append(available, codec)
		}
	}
	return available
}

func testEncoder(ctx context.Context, ffmpegPath, codec string) bool {
	args := []string{
		"-f", "lavfi",
		"-i", "color=black:s=64x64:d=1:r=1",
		"-c:v", codec,
		"-frames:v", "1",
		"-f", "null",
		"-",
	}
	cmd := exec.CommandContext(ctx, ffmpegPath, args...)
	return cmd.Run() == nil
}
