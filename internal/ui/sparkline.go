package ui

import "strings"

// Sparkline renders a throughput chart from a ring buffer of samples,
// using Unicode block characters.
type Sparkline struct {
	samples []float64
	head    int
	count   int
	max     float64
}

// sparkChars are eight block heights from lowest to full.
var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// NewSparkline creates a sparkline holding up to capacity samples.
func NewSparkline(capacity int) *Sparkline {
	if capacity <= 0 {
		capacity = 60
	}
	return &Sparkline{samples: make([]float64, capacity)}
}

// Add appends a sample, evicting the oldest once full.
func (s *Sparkline) Add(value float64) {
	s.samples[s.head] = value
	s.head = (s.head + 1) % len(s.samples)
	s.count++
	if value > s.max {
		s.max = value
	}
}

// Render returns the most recent samples as block characters, oldest
// first, space-padded up to width.
func (s *Sparkline) Render(width int) string {
	if width <= 0 || width > len(s.samples) {
		width = len(s.samples)
	}

	ordered := s.ordered()
	if len(ordered) > width {
		ordered = ordered[len(ordered)-width:]
	}

	var sb strings.Builder
	sb.Grow(width * 3)
	for _, v := range ordered {
		sb.WriteRune(s.char(v))
	}
	for i := len(ordered); i < width; i++ {
		sb.WriteRune(' ')
	}
	return sb.String()
}

// ordered returns the live samples oldest first.
func (s *Sparkline) ordered() []float64 {
	if s.count < len(s.samples) {
		return s.samples[:s.count]
	}
	out := make([]float64, 0, len(s.samples))
	out = append(out, s.samples[s.head:]...)
	out = append(out, s.samples[:s.head]...)
	return out
}

func (s *Sparkline) char(v float64) rune {
	if s.max <= 0 {
		return sparkChars[0]
	}
	idx := int(v / s.max * float64(len(sparkChars)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sparkChars) {
		idx = len(sparkChars) - 1
	}
	return sparkChars[idx]
}

// Clear resets the sparkline.
func (s *Sparkline) Clear() {
	for i := range s.samples {
		s.samples[i] = 0
	}
	s.head = 0
	s.count = 0
	s.max = 0
}

// Count returns the number of samples added.
func (s *Sparkline) Count() int {
	return s.count
}

// Max returns the largest sample seen since the last Clear.
func (s *Sparkline) Max() float64 {
	return s.max
}
