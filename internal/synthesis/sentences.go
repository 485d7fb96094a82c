package synthesis

import (
	"strings"
	"unicode/utf8"

	"github.com/jdkato/prose/v2"
)

// splitSentences breaks an answer into speakable sentences. Latin text is
// segmented by prose; full-width terminators split Japanese runs that prose
// leaves whole.
func splitSentences(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var out []string
	for _, s := range segment(text) {
		for _, part := range splitFullWidth(s) {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func segment(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTokenization(false),
		prose.WithTagging(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return []string{text}
	}

	sentences := doc.Sentences()
	if len(sentences) == 0 {
		return []string{text}
	}
	result := make([]string, len(sentences))
	for i, s := range sentences {
		result[i] = s.Text
	}
	return result
}

func splitFullWidth(text string) []string {
	var parts []string
	start := 0
	for i, r := range text {
		if r == '。' || r == '！' || r == '？' {
			end := i + utf8.RuneLen(r)
			parts = append(parts, text[start:end])
			start = end
		}
	}
	if start < len(text) {
		parts = append(parts, text[start:])
	}
	return parts
}
