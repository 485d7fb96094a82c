package transcription

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/eleven-am/screen-assistant/internal/audio"
)

var errNoSpeech = errors.New("no speech before timeout")

// phraseDetector segments one phrase from a PCM stream using an energy
// threshold calibrated on the first chunks read. All timing is counted in
// samples; RecognizeOnce bounds the wall-clock time spent reading.
type phraseDetector struct {
	chunk       int
	calibration int
	timeout     int
	phraseLimit int
	pause       int
	preRoll     int
	minEnergy   float64
	ratio       float64

	threshold float64
}

func newPhraseDetector(cfg Config, timeoutSamples, phraseSamples int) *phraseDetector {
	chunk := cfg.SampleRate / 20
	if chunk < 1 {
		chunk = 1
	}
	return &phraseDetector{
		chunk:       chunk,
		calibration: audio.Samples(cfg.Calibration, cfg.SampleRate),
		timeout:     timeoutSamples,
		phraseLimit: phraseSamples,
		pause:       audio.Samples(cfg.PauseThreshold, cfg.SampleRate),
		preRoll:     chunk * 6,
		minEnergy:   cfg.MinEnergy,
		ratio:       cfg.EnergyRatio,
	}
}

func (d *phraseDetector) readChunk(r io.Reader) ([]int16, error) {
	buf := make([]byte, d.chunk*2)
	n, err := io.ReadFull(r, buf)
	if n < 2 {
		if err == nil || errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return nil, err
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = nil
	}
	return audio.PCMBytesToInt16(buf[:n]), err
}

func (d *phraseDetector) calibrate(r io.Reader) error {
	var sum float64
	var chunks int
	for read := 0; read < d.calibration; {
		samples, err := d.readChunk(r)
		if err != nil {
			return fmt.Errorf("calibrate: %w", err)
		}
		sum += audio.RMS(samples)
		chunks++
		read += len(samples)
	}

	ambient := 0.0
	if chunks > 0 {
		ambient = sum / float64(chunks)
	}
	d.threshold = math.Max(d.minEnergy, ambient*d.ratio)
	return nil
}

// capture returns the PCM of one phrase, including a short pre-roll before
// the first loud chunk. It returns errNoSpeech when the timeout passes
// without speech.
func (d *phraseDetector) capture(r io.Reader) ([]int16, error) {
	var pre [][]int16
	preLen := 0
	waited := 0

	for {
		samples, err := d.readChunk(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, errNoSpeech
			}
			return nil, err
		}

		if audio.RMS(samples) > d.threshold {
			phrase := make([]int16, 0, d.phraseLimit+preLen)
			for _, p := range pre {
				phrase = append(phrase, p...)
			}
			return d.record(r, append(phrase, samples...), len(samples))
		}

		waited += len(samples)
		if waited >= d.timeout {
			return nil, errNoSpeech
		}

		pre = append(pre, samples)
		preLen += len(samples)
		for preLen > d.preRoll && len(pre) > 1 {
			preLen -= len(pre[0])
			pre = pre[1:]
		}
	}
}

func (d *phraseDetector) record(r io.Reader, phrase []int16, spoken int) ([]int16, error) {
	silent := 0
	for spoken < d.phraseLimit {
		samples, err := d.readChunk(r)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return phrase, nil
			}
			return nil, err
		}

		phrase = append(phrase, samples...)
		spoken += len(samples)

		if audio.RMS(samples) > d.threshold {
			silent = 0
			continue
		}
		silent += len(samples)
		if silent >= d.pause {
			break
		}
	}
	return phrase, nil
}
