package chunker

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/educhat/internal/core/domain"
)

// pageMarker matches a line holding nothing but a page number.
var pageMarker = regexp.MustCompile(`(?i)^(page\s*)?\d+(\s*(of|/)\s*\d+)?$`)

// Clean returns the document text with the configured cleaning applied.
// Cleaning is best effort and never fails.
func (p *Processor) Clean(doc *domain.RawDocument) string {
	text := doc.Content
	if p.cleanHeaderFooter && doc.IsPaged() {
		text = strings.Join(stripHeaderFooter(doc.Pages), "\n")
	}
	if p.cleanWhitespace {
		text = collapseWhitespace(text)
	}
	if p.cleanEmptyLines {
		text = collapseEmptyLines(text)
	}
	return text
}

// collapseWhitespace trims every line and squeezes runs of spaces and tabs.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// collapseEmptyLines keeps at most one blank line between paragraphs.
func collapseEmptyLines(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !blank {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// stripHeaderFooter removes the first and last lines that repeat across
// more than half of the pages. Digits are ignored when comparing lines so
// running page numbers ("Page 3 of 10") still match.
func stripHeaderFooter(pages []string) []string {
	if len(pages) < 2 {
		return pages
	}

	header := repeatedEdge(pages, true)
	footer := repeatedEdge(pages, false)
	if header == "" && footer == "" {
		return pages
	}

	out := make([]string, len(pages))
	for i, page := range pages {
		lines := strings.Split(page, "\n")
		if header != "" {
			lines = dropEdge(lines, header, true)
		}
		if footer != "" {
			lines = dropEdge(lines, footer, false)
		}
		out[i] = strings.Join(lines, "\n")
	}
	return out
}

// repeatedEdge returns the comparison key of the edge line shared by a majority of pages.
func repeatedEdge(pages []string, first bool) string {
	counts := make(map[string]int)
	for _, page := range pages {
		lines := strings.Split(page, "\n")
		if idx := edgeIndex(lines, first); idx >= 0 {
			counts[edgeKey(lines[idx])]++
		}
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	best, bestCount := "", 0
	for _, k := range keys {
		if counts[k] > bestCount {
			best, bestCount = k, counts[k]
		}
	}
	if bestCount < 2 || bestCount*2 <= len(pages) {
		return ""
	}
	return best
}

// dropEdge removes the first (or last) non-empty line if it matches key.
func dropEdge(lines []string, key string, first bool) []string {
	idx := edgeIndex(lines, first)
	if idx < 0 || edgeKey(lines[idx]) != key {
		return lines
	}
	return append(lines[:idx:idx], lines[idx+1:]...)
}

// edgeIndex returns the index of the first (or last) non-empty line, or -1.
func edgeIndex(lines []string, first bool) int {
	if first {
		for i, line := range lines {
			if strings.TrimSpace(line) != "" {
				return i
			}
		}
		return -1
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) != "" {
			return i
		}
	}
	return -1
}

// edgeKey compares lines after whitespace normalisation. Page-number lines
// share one key so running page numbers count as a repeated footer.
func edgeKey(line string) string {
	norm := strings.Join(strings.Fields(line), " ")
	if pageMarker.MatchString(norm) {
		return "#page"
	}
	return norm
}
