package format

import "strings"

type extractState int

const (
	seekingFirstContent extractState = iota
	collectingPoints
	extractDone
)

// extractor walks reply lines once. In bullet mode only list lines are content; in prose
// mode every declarative line is, except a leading opening line when more follow.
type extractor struct {
	state       extractState
	bulletMode  bool
	skipOpening bool
	points      []string
}

func newExtractor(lines []string) *extractor {
	declarative := 0
	bulletMode := false
	for _, line := range lines {
		if isBulletLike(line) {
			bulletMode = true
		}
		if !isInterrogative(line) {
			declarative++
		}
	}
	return &extractor{
		state:       seekingFirstContent,
		bulletMode:  bulletMode,
		skipOpening: !bulletMode && declarative > 1,
	}
}

func (e *extractor) step(line string) {
	switch e.state {
	case seekingFirstContent:
		if !e.isContent(line) {
			return
		}
		if e.skipOpening {
			e.skipOpening = false
			return
		}
		if e.accept(line) {
			e.state = collectingPoints
		}
	case collectingPoints:
		// Interrogatives here are the source's own closing; a new one is added later.
		if !e.isContent(line) {
			return
		}
		e.accept(line)
	case extractDone:
		return
	}
	if len(e.points) >= MaxPoints {
		e.state = extractDone
	}
}

func (e *extractor) isContent(line string) bool {
	if isInterrogative(line) {
		return false
	}
	return !e.bulletMode || isBulletLike(line)
}

func (e *extractor) accept(line string) bool {
	point := cleanPoint(line)
	if point == "" {
		return false
	}
	e.points = append(e.points, point)
	return true
}

// ExtractPoints returns up to MaxPoints content lines with list prefixes removed.
func ExtractPoints(lines []string) []string {
	e := newExtractor(lines)
	for _, line := range lines {
		if e.state == extractDone {
			break
		}
		e.step(line)
	}
	return e.points
}

func splitLines(raw string) []string {
	lines := []string{}
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
