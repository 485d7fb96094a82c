package transcription

import "time"

type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Language string

	Timeout     time.Duration
	PhraseLimit time.Duration

	MicCommand string
	SampleRate int

	Calibration    time.Duration
	PauseThreshold time.Duration
	MinEnergy      float64
	EnergyRatio    float64
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = "whisper-1"
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.PhraseLimit <= 0 {
		c.PhraseLimit = 10 * time.Second
	}
	if c.SampleRate <= 0 {
		c.SampleRate = 16000
	}
	if c.Calibration <= 0 {
		c.Calibration = 500 * time.Millisecond
	}
	if c.PauseThreshold <= 0 {
		c.PauseThreshold = 800 * time.Millisecond
	}
	if c.MinEnergy <= 0 {
		c.MinEnergy = 300
	}
	if c.EnergyRatio <= 0 {
		c.EnergyRatio = 1.5
	}
	return c
}
