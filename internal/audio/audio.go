// Package audio plays short procedural cues for effect transitions.
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hajimehoshi/oto/v2"

	"backdrop/internal/backdrop"
)

// Cue listens for transition events and plays the matching sound. Sounds
// are synthesized once up front; playback runs on its own goroutine per
// sound so the frame loop never waits on the device.
type Cue struct {
	ctx    *oto.Context
	ready  chan struct{}
	volume float64
	log    *slog.Logger

	whoosh []byte
	chime  []byte

	mu      sync.Mutex
	playing int
	subs    []backdrop.Subscription
	wg      sync.WaitGroup
}

// maxVoices caps overlapping cues.
const maxVoices = 2

// New opens the audio device. fadeOut sizes the transition sweep.
func New(volume float64, fadeOut time.Duration, log *slog.Logger) (*Cue, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, BitDepth)
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	return &Cue{
		ctx:    ctx,
		ready:  ready,
		volume: clampVolume(volume),
		log:    log,
		whoosh: genWhoosh(fadeOut.Seconds(), uint64(time.Now().UnixNano())),
		chime:  genChime(),
	}, nil
}

// Attach subscribes the cue to engine events.
func (c *Cue) Attach(bus *backdrop.EventBus) {
	c.subs = append(c.subs,
		bus.Subscribe(backdrop.EventTransitionStarted, func(backdrop.Event) { c.play(c.whoosh) }),
		bus.Subscribe(backdrop.EventEffectActivated, func(backdrop.Event) { c.play(c.chime) }),
	)
}

// Detach unsubscribes and waits for sounds still playing.
func (c *Cue) Detach(bus *backdrop.EventBus) {
	for _, s := range c.subs {
		bus.Unsubscribe(s)
	}
	c.subs = nil
	c.wg.Wait()
}

func (c *Cue) play(samples []byte) {
	if len(samples) == 0 || c.volume <= 0 {
		return
	}
	select {
	case <-c.ready:
	default:
		return
	}
	c.mu.Lock()
	if c.playing >= maxVoices {
		c.mu.Unlock()
		return
	}
	c.playing++
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.playing--
			c.mu.Unlock()
		}()
		player := c.ctx.NewPlayer(&soundReader{data: samples})
		player.SetVolume(c.volume)
		player.Play()
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			c.log.Debug("audio player close", "err", err)
		}
	}()
}

func clampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
