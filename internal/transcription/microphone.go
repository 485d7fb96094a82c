package transcription

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

type commandMicrophone struct {
	name string
	args []string
}

// NewMicrophone runs command (or a platform default recorder) and reads PCM
// from its stdout.
func NewMicrophone(command string, sampleRate int) Microphone {
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	name, args := defaultRecorder(runtime.GOOS, sampleRate)
	if fields := strings.Fields(command); len(fields) > 0 {
		name, args = fields[0], fields[1:]
	}
	return &commandMicrophone{name: name, args: args}
}

func defaultRecorder(goos string, sampleRate int) (string, []string) {
	rate := strconv.Itoa(sampleRate)
	switch goos {
	case "linux":
		return "arecord", []string{"-q", "-f", "S16_LE", "-r", rate, "-c", "1", "-t", "raw"}
	case "windows":
		return "sox", []string{"-q", "-t", "waveaudio", "default", "-t", "raw", "-r", rate, "-e", "signed-integer", "-b", "16", "-c", "1", "-"}
	default:
		return "rec", []string{"-q", "-t", "raw", "-r", rate, "-e", "signed-integer", "-b", "16", "-c", "1", "-"}
	}
}

func (m *commandMicrophone) Open(ctx context.Context) (io.ReadCloser, error) {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, m.name, m.args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("microphone pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("start %s: %w", m.name, err)
	}

	return &recording{ReadCloser: stdout, cmd: cmd, cancel: cancel}, nil
}

type recording struct {
	io.ReadCloser
	cmd    *exec.Cmd
	cancel context.CancelFunc
}

func (r *recording) Close() error {
	r.cancel()
	r.ReadCloser.Close()
	r.cmd.Wait()
	return nil
}
