package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eleven-am/screen-assistant/internal/assistant"
)

type Controller interface {
	SubmitText(text string) bool
	ToggleCapture(on bool) error
	ToggleVoiceInput(on bool) error
	SelectBackend(kind string) error
	SelectVoice(kind string) error
	Status() assistant.Status
}

const helpText = `commands:
  /capture on|off   start or stop screen capture
  /voice on|off     start or stop voice input
  /backend <kind>   select openai, gemini or ollama
  /tts <kind>       select os or voicevox
  /status           show the pipeline state
  /help             show this help
anything else is sent to the assistant with the current screen text`

var errQuit = errors.New("quit")

type Console struct {
	ctrl     Controller
	in       io.Reader
	renderer *Renderer
	logger   *slog.Logger
}

func New(ctrl Controller, in io.Reader, renderer *Renderer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		ctrl:     ctrl,
		in:       in,
		renderer: renderer,
		logger:   logger.With("component", "console"),
	}
}

// Run reads lines until the input ends, /quit is entered or ctx is done.
// A blocked read is only abandoned when the input itself is closed.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- scanner.Err()
	}()

	c.renderer.Info("type /help for commands")
	c.renderer.Prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			if err := c.Handle(line); err != nil {
				if errors.Is(err, errQuit) {
					return nil
				}
				c.renderer.Error(err.Error())
			}
			c.renderer.Prompt()
		}
	}
}

// Handle executes one console line.
func (c *Console) Handle(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, "/") {
		if !c.ctrl.SubmitText(line) {
			return errors.New("assistant is shutting down")
		}
		return nil
	}

	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "/capture":
		on, err := parseSwitch(cmd, args)
		if err != nil {
			return err
		}
		return c.ctrl.ToggleCapture(on)
	case "/voice":
		on, err := parseSwitch(cmd, args)
		if err != nil {
			return err
		}
		return c.ctrl.ToggleVoiceInput(on)
	case "/backend":
		if len(args) != 1 {
			return fmt.Errorf("usage: /backend <kind>")
		}
		if err := c.ctrl.SelectBackend(args[0]); err != nil {
			return err
		}
		c.renderer.Info("backend: " + c.ctrl.Status().Backend)
		return nil
	case "/tts":
		if len(args) != 1 {
			return fmt.Errorf("usage: /tts <kind>")
		}
		if err := c.ctrl.SelectVoice(args[0]); err != nil {
			return err
		}
		c.renderer.Info("voice: " + c.ctrl.Status().Voice)
		return nil
	case "/status":
		c.renderer.Info(formatStatus(c.ctrl.Status()))
		return nil
	case "/help":
		c.renderer.Info(helpText)
		return nil
	case "/quit", "/exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %s, type /help", cmd)
	}
}

func parseSwitch(cmd string, args []string) (bool, error) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on":
			return true, nil
		case "off":
			return false, nil
		}
	}
	return false, fmt.Errorf("usage: %s on|off", cmd)
}

func formatStatus(st assistant.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "capture: %s (%s, %.1f fps)\n", st.Capture, st.CaptureTarget.Mode, st.CaptureTarget.Cadence)
	fmt.Fprintf(&b, "voice input: %s\n", st.VoiceInput)
	fmt.Fprintf(&b, "turn: %s\n", st.Turn)
	fmt.Fprintf(&b, "backend: %s, voice: %s\n", st.Backend, st.Voice)
	if st.Context.Available() {
		fmt.Fprintf(&b, "screen (frame %d): %s", st.Context.FrameSeq, truncate(oneLine(st.Context.Text), defaultContextMax))
	} else {
		b.WriteString("screen: none yet")
	}
	return b.String()
}
