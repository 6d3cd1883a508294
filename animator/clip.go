package animator

import "math"

// TicksPerSecond is the update rate clips are timed against.
const TicksPerSecond = 60

// Clip is a frame sequence. Events lists the event keys emitted when playback
// enters a frame.
type Clip struct {
	Name   string
	Frames int
	FPS    float64
	Loop   bool
	Events map[int][]string
}

// AddEvent registers key on frame. Out of range frames are ignored.
func (c *Clip) AddEvent(frame int, key string) {
	if c == nil || frame < 0 || (c.Frames > 0 && frame >= c.Frames) || key == "" {
		return
	}
	if c.Events == nil {
		c.Events = make(map[int][]string)
	}
	c.Events[frame] = append(c.Events[frame], key)
}

func (c *Clip) ticksPerFrame() int {
	if c.FPS <= 0 {
		return TicksPerSecond / 12
	}
	return int(math.Max(1, math.Round(TicksPerSecond/c.FPS)))
}

// player advances one clip. The first advance after reset enters frame 0.
type player struct {
	clip     *Clip
	frame    int
	tick     int
	started  bool
	finished bool
	loops    int
}

func (p *player) reset(c *Clip) {
	*p = player{clip: c}
}

// advance moves one tick forward and calls emit for each event key of a frame
// it enters.
func (p *player) advance(emit func(key string)) {
	c := p.clip
	if c == nil || c.Frames <= 0 {
		return
	}
	if !p.started {
		p.started = true
		p.enter(emit)
		return
	}
	if p.finished {
		return
	}
	p.tick++
	if p.tick < c.ticksPerFrame() {
		return
	}
	p.tick = 0
	next := p.frame + 1
	if next >= c.Frames {
		p.loops++
		if !c.Loop {
			p.finished = true
			return
		}
		next = 0
	}
	p.frame = next
	p.enter(emit)
}

func (p *player) enter(emit func(key string)) {
	if emit == nil {
		return
	}
	for _, key := range p.clip.Events[p.frame] {
		emit(key)
	}
}

// done reports whether a one-shot clip has finished or a looping clip has
// completed at least one cycle.
func (p *player) done() bool {
	return p.finished || p.loops > 0
}
