package assistant

import "time"

// ToggleVoiceInput starts or stops the listen loop. Turning it off only
// prevents the next listen; a phrase already being recognized is still
// submitted.
func (c *Coordinator) ToggleVoiceInput(on bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !on {
		if c.voiceOn {
			c.log.Info("voice input off")
		}
		c.voiceOn = false
		return nil
	}

	if c.closed {
		return ErrClosed
	}
	if c.deps.Recognizer == nil {
		return ErrNoRecognizer
	}
	c.voiceOn = true
	if !c.voiceRunning {
		c.voiceRunning = true
		c.wg.Add(1)
		go c.voiceLoop()
		c.log.Info("voice input listening")
	}
	return nil
}

func (c *Coordinator) voiceEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.voiceOn {
		c.voiceRunning = false
	}
	return c.voiceOn
}

func (c *Coordinator) voiceLoop() {
	defer c.wg.Done()

	for c.voiceEnabled() {
		if !c.waitTurnIdle() {
			c.markVoiceStopped()
			return
		}

		text := c.deps.Recognizer.RecognizeOnce(c.ctx, c.cfg.ListenTimeout, c.cfg.PhraseLimit)
		if text != "" {
			c.log.Debug("voice input recognized", "chars", len(text))
			c.runTurn(text, SourceVoice)
		}

		select {
		case <-c.ctx.Done():
			c.markVoiceStopped()
			return
		case <-time.After(c.cfg.VoiceCyclePause):
		}
	}
}

func (c *Coordinator) markVoiceStopped() {
	c.mu.Lock()
	c.voiceRunning = false
	c.mu.Unlock()
}

// waitTurnIdle blocks until no turn holds the gate, so the microphone is not
// open while an answer is being spoken.
func (c *Coordinator) waitTurnIdle() bool {
	select {
	case c.gate <- struct{}{}:
		<-c.gate
		return true
	case <-c.ctx.Done():
		return false
	}
}
