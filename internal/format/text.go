package format

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// listPrefixPattern also matches keycap numerals such as "1️⃣" (digit, optional U+FE0F, U+20E3).
var listPrefixPattern = regexp.MustCompile(`^(?:[-*•·]+|\d+[.)、．]|[（(]\d+[）)]|\d\x{FE0F}?\x{20E3})\s*`)

// minSentenceRunes filters out fragments such as "好的。" when expanding a short reply.
const minSentenceRunes = 6

func isBulletLike(line string) bool {
	if listPrefixPattern.MatchString(line) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(line)
	return isEmojiRune(first)
}

func isEmojiRune(r rune) bool {
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF:
		return true
	case r >= 0x2600 && r <= 0x27BF:
		return true
	case r == 0x2B50 || r == 0x2B55:
		return true
	}
	return false
}

func isInterrogative(line string) bool {
	trimmed := strings.TrimRightFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || isEmojiRune(r) || r == '~' || r == '～' || r == 0xFE0F
	})
	return strings.HasSuffix(trimmed, "？") || strings.HasSuffix(trimmed, "?")
}

func cleanPoint(line string) string {
	point := listPrefixPattern.ReplaceAllString(strings.TrimSpace(line), "")
	point = strings.ReplaceAll(point, "**", "")
	return strings.TrimSpace(point)
}

// splitSentences cuts raw at sentence terminators and line breaks, keeping each terminator.
func splitSentences(raw string) []string {
	sentences := []string{}
	var current strings.Builder
	flush := func() {
		if sentence := strings.TrimSpace(current.String()); sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}
	for _, r := range raw {
		switch r {
		case '\n', '\r':
			flush()
		case '。', '！', '!', '；', ';', '？', '?':
			current.WriteRune(r)
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()
	return sentences
}

// unusedSentence returns the first declarative sentence of raw not already part of points.
func unusedSentence(raw string, points []string) (string, bool) {
	for _, sentence := range splitSentences(raw) {
		if isInterrogative(sentence) {
			continue
		}
		candidate := cleanPoint(sentence)
		if utf8.RuneCountInString(candidate) < minSentenceRunes {
			continue
		}
		used := false
		for _, point := range points {
			if strings.Contains(point, candidate) || strings.Contains(candidate, point) {
				used = true
				break
			}
		}
		if !used {
			return candidate, true
		}
	}
	return "", false
}
