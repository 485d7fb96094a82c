package synthesis

import (
	"context"
	"runtime"
	"strings"
)

type commandPlayer struct {
	name string
	args []string
	run  runFunc
}

// NewPlayer returns a player that runs the given command line with the audio
// path appended. An empty command selects the platform default.
func NewPlayer(command string) Player {
	name, args := defaultPlayer(runtime.GOOS)
	if fields := strings.Fields(command); len(fields) > 0 {
		name, args = fields[0], fields[1:]
	}
	return &commandPlayer{name: name, args: args, run: execRun}
}

func defaultPlayer(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "afplay", nil
	case "windows":
		return "powershell", []string{"-NoProfile", "-Command", "& { (New-Object Media.SoundPlayer $args[0]).PlaySync() }"}
	default:
		return "aplay", []string{"-q"}
	}
}

func (p *commandPlayer) Play(ctx context.Context, path string) error {
	args := append(append([]string(nil), p.args...), path)
	return p.run(ctx, p.name, args, "")
}
