package ffmpeg_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/kikiluvv/slopblend/internal/ffmpeg"
	"github.com/kikiluvv/slopblend/internal/timeline"
	"github.com/kikiluvv/slopblend/internal/transition"
)

// local helper (cannot use unexported ones from ffmpeg package)
func skipIfNoFFmpeg(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		t.Skip("ffmpeg not found in PATH - install with: brew install ffmpeg")
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		t.Skip("ffprobe not found in PATH - install with: brew install ffmpeg")
	}
}

// generateClip renders a short test pattern with a sine tone
func generateClip(t *testing.T, path string, seconds string) {
	t.Helper()
	cmd := exec.Command("ffmpeg", "-y",
		"-f", "lavfi", "-i", "testsrc=duration="+seconds+":size=320x240:rate=25",
		"-f", "lavfi", "-i", "sine=frequency=440:duration="+seconds,
		"-pix_fmt", "yuv420p", "-shortest", path)
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Skipf("could not generate test clip: %v\n%s", err, out)
	}
}

func TestIntegration_BlendTwoClips(t *testing.T) {
	skipIfNoFFmpeg(t)

	dir := t.TempDir()
	a := filepath.Join(dir, "a.mp4")
	b := filepath.Join(dir, "b.mp4")
	generateClip(t, a, "2")
	generateClip(t, b, "2")

	logger := zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).With().Str("test", "integration_blend").Logger()

	executor, err := ffmpeg.New(logger, ffmpeg.Options{Threads: 2})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	compiler := timeline.New(logger, executor, timeline.DefaultOptions())
	compiled, err := compiler.Compile(ctx, []string{a, b}, transition.Uniform(transition.WipeLeft, 0.5))
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}

	output := filepath.Join(dir, "out.mp4")
	err = executor.Blend(ctx, ffmpeg.BlendOptions{
		Inputs: compiled.Inputs(),
		Output: output,
		Graph:  compiled.Graph,
	})
	if err != nil {
		t.Fatalf("blend failed: %v", err)
	}

	got, err := executor.ProbeDuration(ctx, output)
	if err != nil {
		t.Fatalf("probe of output failed: %v", err)
	}
	if got < 3.3 || got > 3.7 {
		t.Errorf("expected output around 3.5s, got %.3fs", got)
	}
	t.Logf("blended %s (%.3fs)", output, got)
}

func TestIntegration_ProbeInvalidFile(t *testing.T) {
	skipIfNoFFmpeg(t)

	executor, err := ffmpeg.New(zerolog.New(os.Stderr), ffmpeg.Options{})
	if err != nil {
		t.Fatalf("failed to create executor: %v", err)
	}

	ctx := context.Background()
	if _, err := executor.ProbeDuration(ctx, "nonexistent.mp4"); err == nil {
		t.Error("ProbeDuration should fail for non-existent file")
	}

	invalidPath := filepath.Join(t.TempDir(), "invalid.txt")
	if err := os.WriteFile(invalidPath, []byte("not a video"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := executor.ProbeDuration(ctx, invalidPath); err == nil {
		t.Error("ProbeDuration should fail for invalid video file")
	}
}
