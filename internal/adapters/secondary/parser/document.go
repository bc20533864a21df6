package parser

import (
	"strings"

	"github.com/fredcamaral/slidedeck/internal/domain/entities"
)

// Sentinel is the line that opens and closes the metadata block and separates slides
const Sentinel = "---"

// ParseDocument splits raw text into its metadata block and body content.
//
// The block is recognized only when the first non-blank line is a sentinel and a
// second sentinel line follows it. Content starts right after the closing
// sentinel's line terminator. Anything else yields empty metadata and the
// original text as content; parsing never fails.
func ParseDocument(text string) entities.ParsedDocument {
	noHeader := entities.ParsedDocument{
		Metadata: map[string]string{},
		Content:  text,
	}

	headerStart := -1
	for pos := 0; pos < len(text); {
		line, next := nextLine(text, pos)
		if strings.TrimSpace(line) == "" {
			pos = next
			continue
		}
		if !isSentinel(line) {
			return noHeader
		}
		headerStart = next
		break
	}
	if headerStart < 0 {
		return noHeader
	}

	for pos := headerStart; pos < len(text); {
		line, next := nextLine(text, pos)
		if isSentinel(line) {
			return entities.ParsedDocument{
				Metadata: parseHeader(text[headerStart:pos]),
				Content:  text[next:],
			}
		}
		pos = next
	}

	// Unclosed block: keep every byte of user content
	return noHeader
}

// parseHeader reads "key: value" lines; anything else is skipped
func parseHeader(block string) map[string]string {
	metadata := make(map[string]string)
	for _, line := range strings.Split(block, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		metadata[key] = strings.TrimSpace(value)
	}
	return metadata
}

// nextLine returns the line starting at pos (without its "\n") and the offset after it
func nextLine(text string, pos int) (string, int) {
	if i := strings.IndexByte(text[pos:], '\n'); i >= 0 {
		return text[pos : pos+i], pos + i + 1
	}
	return text[pos:], len(text)
}

func isSentinel(line string) bool {
	return strings.TrimSpace(line) == Sentinel
}
