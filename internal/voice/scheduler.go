package voice

import "sync"

// Output is a playback timeline measured in seconds.
type Output interface {
	// Now returns the current playback position.
	Now() float64

	// Start queues buf to begin at the given position. onEnded is called
	// once when playback completes naturally, never after Stop and never
	// from within Start.
	Start(buf *Buffer, at float64, onEnded func()) Voice
}

// Voice is a scheduled buffer.
type Voice interface {
	Stop()
}

// Scheduler places decoded buffers back to back on an Output so that
// playback has no gaps and no overlap regardless of arrival jitter.
type Scheduler struct {
	out Output

	mu      sync.Mutex
	next    float64
	seq     uint64
	pending map[uint64]Voice
}

// NewScheduler creates a scheduler for out.
func NewScheduler(out Output) *Scheduler {
	return &Scheduler{out: out, pending: make(map[uint64]Voice)}
}

// Schedule starts buf at max(now, next) and advances next by its
// duration. It returns the chosen start time.
func (s *Scheduler) Schedule(buf *Buffer) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := max(s.out.Now(), s.next)
	s.next = start + buf.Duration()

	s.seq++
	id := s.seq
	s.pending[id] = s.out.Start(buf, start, func() { s.finished(id) })
	return start
}

func (s *Scheduler) finished(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Flush stops every pending buffer and restarts the timeline at the
// current output position.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	voices := make([]Voice, 0, len(s.pending))
	for id, v := range s.pending {
		voices = append(voices, v)
		delete(s.pending, id)
	}
	s.next = 0
	s.mu.Unlock()

	for _, v := range voices {
		v.Stop()
	}
}

// Pending returns the number of buffers scheduled but not finished.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Next returns the start time the next buffer would get if the output
// clock has not passed it.
func (s *Scheduler) Next() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
