package parser

import (
	"strings"
)

// Segment splits body content into slides on lines made only of the sentinel.
// A "---" sharing its line with other text is not a delimiter. Segments that are
// blank after trimming are dropped; kept segments are returned untrimmed.
func Segment(content string) []string {
	slides := []string{}
	if content == "" {
		return slides
	}

	lines := strings.Split(content, "\n")
	start := 0
	flush := func(end int) {
		segment := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(segment) != "" {
			slides = append(slides, segment)
		}
	}

	for i, line := range lines {
		if isSentinel(line) {
			flush(i)
			start = i + 1
		}
	}
	flush(len(lines))

	return slides
}

// JoinSlides is the inverse of Segment for non-empty segments
func JoinSlides(slides []string) string {
	return strings.Join(slides, "\n"+Sentinel+"\n")
}
