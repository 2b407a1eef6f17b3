package vector

import "strings"

// Boundary preference for splitting, coarsest first. The empty string
// means a hard cut at the size limit.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter splits document text into overlapping windows, preferring
// paragraph and sentence boundaries before falling back to hard cuts.
type Splitter struct {
	chunkSize int
	overlap   int
}

// NewSplitter creates a splitter. Defaults: 500-character chunks with
// 50 characters of overlap.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 10
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// Split breaks text into chunks of at most the configured size.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	if len(text) <= s.chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	// Pick the coarsest separator present in the text.
	sep := ""
	var finer []string
	for i, candidate := range seps {
		if candidate == "" {
			break
		}
		if strings.Contains(text, candidate) {
			sep = candidate
			finer = seps[i+1:]
			break
		}
	}
	if sep == "" {
		return s.hardCut(text)
	}

	parts := strings.SplitAfter(text, sep)

	var chunks []string
	var cur strings.Builder

	flush := func() {
		chunk := strings.TrimSpace(cur.String())
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
	}

	for _, part := range parts {
		if len(part) > s.chunkSize {
			// Oversized segment: flush what we have and recurse with
			// finer separators.
			flush()
			cur.Reset()
			chunks = append(chunks, s.split(part, finer)...)
			continue
		}

		if cur.Len() > 0 && cur.Len()+len(part) > s.chunkSize {
			chunk := cur.String()
			flush()
			cur.Reset()
			cur.WriteString(overlapTail(chunk, s.overlap))
		}
		cur.WriteString(part)
	}
	flush()

	return chunks
}

// hardCut splits text at fixed rune offsets with overlap. Last resort
// when no boundary separator is available.
func (s *Splitter) hardCut(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = 1
	}

	var chunks []string
	for i := 0; i < len(runes); i += step {
		end := i + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[i:end]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}

// overlapTail returns the trailing n bytes of chunk, snapped forward to
// a rune boundary.
func overlapTail(chunk string, n int) string {
	if n <= 0 || len(chunk) <= n {
		if n <= 0 {
			return ""
		}
		return chunk
	}
	start := len(chunk) - n
	for start < len(chunk) && !isRuneStart(chunk[start]) {
		start++
	}
	return chunk[start:]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
