package audio

import (
	"context"
	"fmt"

	"github.com/jfreymuth/pulse"
)

// Player renders synthesized speech through the Pulse server.
type Player struct{}

// Play decodes a 16-bit PCM WAV payload and plays it to completion. Returns
// early when ctx is cancelled; the stream is drained and closed on all paths.
func (Player) Play(ctx context.Context, wavData []byte) error {
	pcm, sampleRate, channels, err := DecodePCM16WAV(wavData)
	if err != nil {
		return fmt.Errorf("decode speech audio: %w", err)
	}

	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(pcm[2*i]) | int16(pcm[2*i+1])<<8
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	defer client.Close()

	cursor := 0
	reader := pulse.Int16Reader(func(buf []int16) (int, error) {
		if ctx.Err() != nil || cursor >= len(samples) {
			return 0, pulse.EndOfData
		}
		n := copy(buf, samples[cursor:])
		cursor += n
		if cursor >= len(samples) {
			return n, pulse.EndOfData
		}
		return n, nil
	})

	opts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(sampleRate),
		pulse.PlaybackMediaName("librarian speech"),
	}
	if channels >= 2 {
		opts = append(opts, pulse.PlaybackStereo)
	} else {
		opts = append(opts, pulse.PlaybackMono)
	}

	stream, err := client.NewPlayback(reader, opts...)
	if err != nil {
		return fmt.Errorf("create pulse playback stream: %w", err)
	}
	defer stream.Close()

	stream.Start()
	stream.Drain()
	if err := stream.Error(); err != nil {
		return fmt.Errorf("play speech stream: %w", err)
	}
	return ctx.Err()
}
