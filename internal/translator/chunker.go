package translator

import "strings"

// SplitText splits text into chunks of at most maxChunkSize characters,
// preferring paragraph boundaries (blank lines) and falling back to line
// boundaries for oversized paragraphs. All input content is preserved; only
// leading/trailing whitespace of each chunk is trimmed.
func SplitText(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 || len(text) <= maxChunkSize {
		if strings.TrimSpace(text) == "" {
			return nil
		}
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

	for _, paragraph := range strings.Split(text, "\n\n") {
		if len(paragraph) > maxChunkSize {
			// Oversized paragraph: fall back to line boundaries.
			flush()
			for _, chunk := range splitByLines(paragraph, maxChunkSize) {
				chunks = append(chunks, chunk)
			}
			continue
		}

		if current.Len() > 0 && current.Len()+len(paragraph)+2 > maxChunkSize {
			flush()
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}

// splitByLines splits a paragraph on line boundaries. A single line longer
// than maxChunkSize becomes its own chunk; the API tolerates mild overruns
// better than mid-word splits mangle Tamil clusters.
func splitByLines(paragraph string, maxChunkSize int) []string {
	var chunks []string
	var current strings.Builder

	for _, line := range strings.Split(paragraph, "\n") {
		if current.Len() > 0 && current.Len()+len(line)+1 > maxChunkSize {
			if s := strings.TrimSpace(current.String()); s != "" {
				chunks = append(chunks, s)
			}
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		chunks = append(chunks, s)
	}

	return chunks
}
