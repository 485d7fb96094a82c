package assistant

import (
	"context"
	"time"

	"github.com/eleven-am/screen-assistant/internal/shared"
)

// runTurn holds the turn gate for compose, ask, publish and speak, so at most
// one turn is past composing at any time. Later triggers queue on the gate.
func (c *Coordinator) runTurn(text string, source TurnSource) {
	select {
	case c.gate <- struct{}{}:
	case <-c.ctx.Done():
		return
	}
	defer func() { <-c.gate }()

	c.mu.Lock()
	assistant := c.assistant
	voice := c.voice
	c.mu.Unlock()

	turn := &Turn{
		ID:        shared.NewID("turn_"),
		Source:    source,
		UserText:  text,
		Backend:   assistant.Name(),
		Voice:     voice.Name(),
		StartedAt: time.Now(),
	}
	c.beginTurn(turn)
	defer c.endTurn(turn)

	log := c.log.With("turn_id", turn.ID, "source", source)

	sc := c.Context()
	prompt := ComposePrompt(c.cfg.PromptTemplate, sc.Text, text)

	c.turnMu.Lock()
	turn.ScreenText = sc.Text
	turn.FrameSeq = sc.FrameSeq
	turn.Prompt = prompt
	turn.State = TurnAwaitingAnswer
	c.turnState = TurnAwaitingAnswer
	c.turnMu.Unlock()

	log.Info("asking backend", "backend", turn.Backend, "frame_seq", sc.FrameSeq)

	answer := assistant.Ask(c.ctx, prompt, c.cfg.SystemPrompt)

	c.turnMu.Lock()
	turn.Answer = answer
	turn.AnsweredAt = time.Now()
	c.turnMu.Unlock()

	c.listeners.answerReceived(answer)

	c.setTurnState(turn, TurnSpeaking)
	voice.Speak(c.ctx, answer)
	log.Debug("turn finished", "elapsed", time.Since(turn.StartedAt))
}

func (c *Coordinator) beginTurn(turn *Turn) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()
	turn.State = TurnComposing
	c.turnState = TurnComposing
	c.current = turn
}

func (c *Coordinator) setTurnState(turn *Turn, state TurnState) {
	c.turnMu.Lock()
	defer c.turnMu.Unlock()
	turn.State = state
	c.turnState = state
}

func (c *Coordinator) endTurn(turn *Turn) {
	c.turnMu.Lock()
	turn.CompletedAt = time.Now()
	turn.State = TurnIdle
	c.turnState = TurnIdle
	c.current = nil
	record := *turn
	c.turnMu.Unlock()

	if c.deps.Turns == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.ctx), recordTimeout)
	defer cancel()
	if err := c.deps.Turns.RecordTurn(ctx, record); err != nil {
		c.log.Warn("record turn failed", "turn_id", record.ID, "error", err)
	}
}
