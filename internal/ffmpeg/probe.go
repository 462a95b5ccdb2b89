package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kikiluvv/slopblend/pkg/util"
)

var (
	// ErrProbeFailed means ffprobe could not run or reported a diagnostic
	ErrProbeFailed = errors.New("ffprobe failed")

	// ErrMalformedDuration means ffprobe ran but its output is not a duration
	ErrMalformedDuration = errors.New("ffprobe returned malformed duration")
)

// ProbeDuration returns the playable duration of a clip in seconds.
// Every call spawns one ffprobe process; nothing is cached.
func (e *Executor) ProbeDuration(ctx context.Context, clip string) (float64, error) {
	if clip == "" {
		return 0, fmt.Errorf("%w: clip path is required", ErrProbeFailed)
	}

	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		clip,
	}

	cmd := exec.CommandContext(ctx, e.ffprobePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v: %s", ErrProbeFailed, err, strings.TrimSpace(stderr.String()))
	}

	// ffprobe can exit 0 while still complaining about the input
	if stderr.Len() > 0 {
		return 0, fmt.Errorf("%w: %q", ErrProbeFailed, strings.TrimSpace(stderr.String()))
	}

	duration, err := util.ParseSeconds(stdout.String())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformedDuration, err)
	}

	e.logger.Debug().
		Str("clip", clip).
		Float64("duration", duration).
		Msg("probed clip duration")

	return duration, nil
}
