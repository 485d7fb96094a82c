package audio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"
)

func TestPCMBytesToInt16(t *testing.T) {
	samples := PCMBytesToInt16([]byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80})
	if len(samples) != 3 {
		t.Fatalf("expected 3 samples, got %d", len(samples))
	}
	if samples[0] != 0 || samples[1] != 32767 || samples[2] != -32768 {
		t.Errorf("unexpected samples %v", samples)
	}
}

func TestPCMBytesToInt16_OddBytes(t *testing.T) {
	if samples := PCMBytesToInt16([]byte{0x00, 0x00, 0xFF}); len(samples) != 1 {
		t.Errorf("expected 1 sample for 3 bytes, got %d", len(samples))
	}
}

func TestInt16ToPCMBytes_RoundTrip(t *testing.T) {
	in := []int16{0, 1, -1, 32767, -32768, 1234}
	out := PCMBytesToInt16(Int16ToPCMBytes(in))
	for i := range in {
		if in[i] != out[i] {
			t.Errorf("sample %d: expected %d, got %d", i, in[i], out[i])
		}
	}
}

func TestRMS(t *testing.T) {
	tests := []struct {
		name    string
		samples []int16
		want    float64
	}{
		{"empty", nil, 0},
		{"silence", []int16{0, 0, 0, 0}, 0},
		{"constant", []int16{1000, -1000, 1000, -1000}, 1000},
		{"mixed", []int16{3, 4}, math.Sqrt(12.5)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RMS(tt.samples); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestDurationAndSamples(t *testing.T) {
	if d := Duration(16000, 16000); d != time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
	if d := Duration(800, 16000); d != 50*time.Millisecond {
		t.Errorf("expected 50ms, got %v", d)
	}
	if n := Samples(250*time.Millisecond, 16000); n != 4000 {
		t.Errorf("expected 4000, got %d", n)
	}
	if d := Duration(10, 0); d != 0 {
		t.Errorf("expected 0 for invalid rate, got %v", d)
	}
}

func TestEncodeWAV(t *testing.T) {
	pcm := Int16ToPCMBytes([]int16{1, 2, 3, 4})
	wav := EncodeWAV(pcm, 16000)

	if len(wav) != 44+len(pcm) {
		t.Fatalf("expected %d bytes, got %d", 44+len(pcm), len(wav))
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" || string(wav[36:40]) != "data" {
		t.Error("malformed header tags")
	}
	if size := binary.LittleEndian.Uint32(wav[4:8]); size != uint32(36+len(pcm)) {
		t.Errorf("unexpected riff size %d", size)
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != 16000 {
		t.Errorf("unexpected sample rate %d", rate)
	}
	if n := binary.LittleEndian.Uint32(wav[40:44]); n != uint32(len(pcm)) {
		t.Errorf("unexpected data size %d", n)
	}
}
