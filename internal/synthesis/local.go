package synthesis

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

type runFunc func(ctx context.Context, name string, args []string, stdin string) error

type LocalVoice struct {
	cfg    Config
	goos   string
	run    runFunc
	logger *slog.Logger

	mu sync.Mutex
}

func NewLocalVoice(cfg Config, logger *slog.Logger) *LocalVoice {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalVoice{
		cfg:    cfg,
		goos:   runtime.GOOS,
		run:    execRun,
		logger: logger.With("component", "synthesis", "engine", "os"),
	}
}

func execRun(ctx context.Context, name string, args []string, stdin string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func (v *LocalVoice) Name() string {
	return "os"
}

func (v *LocalVoice) Speak(ctx context.Context, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	name, args, stdin, err := localCommand(v.goos, v.cfg, text)
	if err != nil {
		v.logger.Error("local voice unavailable", "error", err)
		return
	}
	if err := v.run(ctx, name, args, stdin); err != nil {
		v.logger.Error("local voice failed", "error", err)
	}
}

// localCommand builds the platform voice command. Rate 1.0 maps to each
// engine's normal speed; volume 1.0 to full volume. Text always goes over
// stdin so answers starting with "-" are never parsed as flags.
func localCommand(goos string, cfg Config, text string) (string, []string, string, error) {
	rate := cfg.rate()
	volume := cfg.volume()

	switch goos {
	case "darwin":
		args := []string{"-r", strconv.Itoa(int(175 * rate))}
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		if volume != 1 {
			text = fmt.Sprintf("[[volm %.2f]] %s", volume, text)
		}
		return "say", append(args, "-f", "-"), text, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		args := []string{
			"-s", strconv.Itoa(int(175 * rate)),
			"-a", strconv.Itoa(int(100 * volume)),
		}
		if cfg.Voice != "" {
			args = append(args, "-v", cfg.Voice)
		}
		return "espeak", append(args, "--stdin"), text, nil
	case "windows":
		sapiRate := int((rate - 1) * 10)
		if sapiRate < -10 {
			sapiRate = -10
		}
		if sapiRate > 10 {
			sapiRate = 10
		}
		script := fmt.Sprintf(
			"Add-Type -AssemblyName System.Speech; $s = New-Object System.Speech.Synthesis.SpeechSynthesizer; $s.Rate = %d; $s.Volume = %d; $s.Speak([Console]::In.ReadToEnd())",
			sapiRate, int(100*volume),
		)
		return "powershell", []string{"-NoProfile", "-Command", script}, text, nil
	default:
		return "", nil, "", fmt.Errorf("no local voice for %s", goos)
	}
}
