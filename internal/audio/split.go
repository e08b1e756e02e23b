package audio

import "strings"

// splitIntoChunks splits text into sentence-boundary fragments no longer
// than maxSize characters each (single sentences longer than maxSize stay
// whole). When the split produces more than maxChunks fragments, adjacent
// fragments are re-merged so the worker pool is not flooded with tiny jobs.
// Text at or under maxSize comes back as a single chunk.
func splitIntoChunks(text string, maxSize, maxChunks int) []string {
	if len(text) <= maxSize {
		return []string{text}
	}

	replacer := strings.NewReplacer(".", ".\n", "!", "!\n", "?", "?\n")
	var sentences []string
	for _, s := range strings.Split(replacer.Replace(text), "\n") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}

	var chunks []string
	current := ""
	for _, sentence := range sentences {
		if current != "" && len(current)+len(sentence)+1 > maxSize {
			chunks = append(chunks, current)
			current = sentence
			continue
		}
		if current == "" {
			current = sentence
		} else {
			current += " " + sentence
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}

	if maxChunks > 0 && len(chunks) > maxChunks {
		step := (len(chunks) + maxChunks - 1) / maxChunks
		var merged []string
		for i := 0; i < len(chunks); i += step {
			end := i + step
			if end > len(chunks) {
				end = len(chunks)
			}
			merged = append(merged, strings.Join(chunks[i:end], " "))
		}
		chunks = merged
	}

	return chunks
}
