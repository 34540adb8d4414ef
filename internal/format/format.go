// Package format reshapes raw generated text into the reply layout used on chat
// channels: one opening sentence, at most three emoji-marked points and a closing
// question, aimed at 200 to 220 characters.
package format

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode/utf8"
)

var ErrFormattingDefect = errors.New("formatting defect")

const (
	MinLength = 200
	MaxLength = 220
	MaxPoints = 3
)

var (
	Markers = []string{"✅", "📌", "💡", "🌱", "📊", "🔍"}

	Openings = []string{
		"這個問題很實際，我們一起來拆解看看。",
		"好問題！先幫你抓出三個重點。",
		"了解你的狀況，重點整理如下。",
		"謝謝你的提問，我直接說重點。",
	}

	Closings = []string{
		"這樣能幫上忙嗎？還是你想看別的角度？",
		"你目前最卡的是哪一個環節呢？",
		"需要我幫你把下一步拆得更細嗎？",
		"想先從哪一點開始著手呢？",
	}
)

// Source picks an index in [0, n). *rand.Rand from math/rand/v2 satisfies it; a
// Source shared between goroutines must be safe for concurrent use.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// DefaultSource returns a Source backed by the process-wide math/rand/v2 generator.
func DefaultSource() Source { return globalSource{} }

type Formatter struct {
	source Source
}

// New returns a Formatter drawing from source, or from the process-wide generator when nil.
func New(source Source) *Formatter {
	if source == nil {
		source = globalSource{}
	}
	return &Formatter{source: source}
}

// Format reshapes raw. When raw cannot be reshaped it is returned unchanged together
// with an error wrapping ErrFormattingDefect.
func (f *Formatter) Format(raw string) (out string, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			out = raw
			err = fmt.Errorf("%w: panic: %v", ErrFormattingDefect, recovered)
		}
	}()
	formatted, err := f.format(raw)
	if err != nil {
		return raw, err
	}
	return formatted, nil
}

func (f *Formatter) format(raw string) (string, error) {
	points := ExtractPoints(splitLines(raw))
	if len(points) == 0 {
		return "", fmt.Errorf("%w: no content lines", ErrFormattingDefect)
	}

	reply := layout{
		opening: f.pick(Openings),
		closing: f.pick(Closings),
	}
	for _, point := range points {
		reply.points = append(reply.points, f.mark(point))
	}

	// One extra sentence at most; a reply may stay under MinLength.
	if reply.length() < MinLength && len(reply.points) < MaxPoints {
		if sentence, ok := unusedSentence(raw, points); ok {
			reply.points = append(reply.points, f.mark(sentence))
		}
	}
	for reply.length() > MaxLength && len(reply.points) > 1 {
		reply.points = reply.points[:len(reply.points)-1]
	}
	return reply.String(), nil
}

func (f *Formatter) pick(pool []string) string {
	return pool[f.source.IntN(len(pool))]
}

func (f *Formatter) mark(point string) string {
	if HasMarker(point) {
		return point
	}
	return f.pick(Markers) + " " + point
}

// HasMarker reports whether text starts with one of the approved markers.
func HasMarker(text string) bool {
	for _, marker := range Markers {
		if strings.HasPrefix(text, marker) {
			return true
		}
	}
	return false
}

type layout struct {
	opening string
	points  []string
	closing string
}

func (l layout) String() string {
	return l.opening + "\n\n" + strings.Join(l.points, "\n\n") + "\n\n" + l.closing
}

func (l layout) length() int {
	return utf8.RuneCountInString(l.String())
}
