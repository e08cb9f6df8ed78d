package knowledge

import (
	"regexp"
	"strings"
)

var sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)

// ChunkText splits text into chunks of at most maxSize bytes, greedily
// packing whole sentences so retrieval units don't cut through the middle of
// one. A single sentence longer than maxSize is emitted verbatim as its own
// chunk; it is never truncated or dropped. Order is preserved and no chunk is
// empty.
func ChunkText(text string, maxSize int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if maxSize <= 0 {
		return []string{strings.TrimSpace(text)}
	}

	var chunks []string
	var current strings.Builder

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			chunks = append(chunks, s)
		}
		current.Reset()
	}

	for _, sentence := range splitSentences(text) {
		if current.Len()+len(sentence) > maxSize {
			flush()
			if len(sentence) > maxSize {
				// Oversized sentence becomes a chunk of its own.
				chunks = append(chunks, strings.TrimSpace(sentence))
				continue
			}
		}
		current.WriteString(sentence)
	}
	flush()

	return chunks
}

// FixedChunks is the sentence-unaware fallback: rune-safe slices of at most
// size bytes. Prefer ChunkText for anything fed into retrieval.
func FixedChunks(text string, size int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, r := range text {
		if current.Len()+len(string(r)) > size {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}

	return chunks
}

// splitSentences cuts on terminal punctuation, keeping the punctuation with
// its sentence. Trailing text without a terminator is kept as a final
// sentence so nothing is lost.
func splitSentences(text string) []string {
	matches := sentencePattern.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return []string{text}
	}

	var sentences []string
	end := 0
	for _, m := range matches {
		sentences = append(sentences, text[m[0]:m[1]])
		end = m[1]
	}
	if rest := text[end:]; strings.TrimSpace(rest) != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}
