package card

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidFormat is returned when a card file has no parseable frontmatter.
var ErrInvalidFormat = errors.New("invalid card format")

const (
	frontmatterDelimiter = "---"
	codeFence            = "```"

	sectionOneLineEssence = "One-Line Essence"
	sectionUseWhen        = "Use When"
	sectionTypicalCases   = "Typical Cases"
	sectionExample        = "Example"
	sectionRisks          = "Risks"
	sectionWhenNotToUse   = "When NOT to Use"
	sectionRelated        = "Related Concepts"
)

// MarshalMarkdown renders content in the card file format.
// Example, Risks and When NOT to Use are written only when set, and
// Related Concepts only when it has items.
func MarshalMarkdown(c Content) []byte {
	var buf bytes.Buffer

	buf.WriteString(frontmatterDelimiter + "\n")
	fmt.Fprintf(&buf, "id: %s\n", c.ID)
	fmt.Fprintf(&buf, "title: %s\n", c.Title)
	if c.Emoji != nil && *c.Emoji != "" {
		fmt.Fprintf(&buf, "emoji: %s\n", *c.Emoji)
	}
	fmt.Fprintf(&buf, "category: %s\n", c.Category)
	fmt.Fprintf(&buf, "type: %s\n", c.Type)
	buf.WriteString(frontmatterDelimiter + "\n\n")

	buf.Write(MarshalMarkdownBody(c))
	return buf.Bytes()
}

// MarshalMarkdownBody renders the title heading and sections of content
// without the frontmatter.
func MarshalMarkdownBody(c Content) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# %s\n\n", c.Title)

	writeSectionHeading(&buf, sectionOneLineEssence)
	for _, line := range strings.Split(c.OneLineEssence, "\n") {
		fmt.Fprintf(&buf, "> %s\n", line)
	}
	buf.WriteString("\n")

	writeSectionHeading(&buf, sectionUseWhen)
	buf.WriteString(escapeText(c.UseWhen) + "\n\n")

	writeSectionHeading(&buf, sectionTypicalCases)
	writeList(&buf, c.TypicalCases)

	if c.Example != nil {
		buf.WriteString("\n")
		writeSectionHeading(&buf, sectionExample)
		fence := fenceFor(*c.Example)
		buf.WriteString(fence + "\n")
		buf.WriteString(*c.Example + "\n")
		buf.WriteString(fence + "\n")
	}
	if c.Risks != nil {
		buf.WriteString("\n")
		writeSectionHeading(&buf, sectionRisks)
		buf.WriteString(escapeText(*c.Risks) + "\n")
	}
	if c.WhenNotToUse != nil {
		buf.WriteString("\n")
		writeSectionHeading(&buf, sectionWhenNotToUse)
		buf.WriteString(escapeText(*c.WhenNotToUse) + "\n")
	}
	if len(c.Related) > 0 {
		buf.WriteString("\n")
		writeSectionHeading(&buf, sectionRelated)
		writeList(&buf, c.Related)
	}

	return buf.Bytes()
}

func writeSectionHeading(buf *bytes.Buffer, name string) {
	fmt.Fprintf(buf, "## %s\n\n", name)
}

// fenceFor returns a backtick fence longer than any fence inside example.
func fenceFor(example string) string {
	n := len(codeFence)
	for _, line := range strings.Split(example, "\n") {
		if run := backtickRun(line); run >= n {
			n = run + 1
		}
	}
	return strings.Repeat("`", n)
}

// escapeText prefixes a backslash to free-text lines that would read as headings.
// Lines already starting with backslashes before "#" get one more so unescapeLine restores them.
func escapeText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		body := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(strings.TrimLeft(body, "\\"), "#") {
			indent := line[:len(line)-len(body)]
			lines[i] = indent + "\\" + body
		}
	}
	return strings.Join(lines, "\n")
}

func unescapeLine(line string) string {
	body := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(body, "\\") && strings.HasPrefix(strings.TrimLeft(body, "\\"), "#") {
		indent := line[:len(line)-len(body)]
		return indent + body[1:]
	}
	return line
}

func writeList(buf *bytes.Buffer, items []string) {
	if len(items) == 0 {
		buf.WriteString("\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(buf, "- %s\n", item)
	}
}

// UnmarshalMarkdown parses a card file.
// Sections are matched by heading name in any order and unknown sections are ignored.
// The frontmatter must open the file, otherwise ErrInvalidFormat is returned.
func UnmarshalMarkdown(data []byte) (Content, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return Content{}, fmt.Errorf("frontmatter is missing: %w", ErrInvalidFormat)
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return Content{}, fmt.Errorf("frontmatter is not closed: %w", ErrInvalidFormat)
	}

	content := Content{
		Type:         DefaultKnowledgeType,
		TypicalCases: []string{},
		Related:      []string{},
	}
	for _, line := range lines[1:end] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "id":
			content.ID = value
		case "title":
			content.Title = value
		case "emoji":
			if value != "" {
				content.Emoji = StringPtr(value)
			}
		case "category":
			content.Category = value
		case "type":
			if value != "" {
				content.Type = KnowledgeType(value)
			}
		}
	}

	heading, sections := splitSections(lines[end+1:])
	if content.Title == "" {
		content.Title = heading
	}

	if body, ok := sections[sectionOneLineEssence]; ok {
		quoted := make([]string, 0, len(body))
		for _, line := range trimBlankLines(body) {
			line = strings.TrimLeft(line, " \t")
			if rest, ok := strings.CutPrefix(line, ">"); ok {
				line = strings.TrimPrefix(rest, " ")
			}
			quoted = append(quoted, strings.TrimRight(line, " \t"))
		}
		content.OneLineEssence = strings.Join(quoted, "\n")
	}
	if body, ok := sections[sectionUseWhen]; ok {
		content.UseWhen = joinText(body)
	}
	if body, ok := sections[sectionTypicalCases]; ok {
		content.TypicalCases = parseList(body)
	}
	if body, ok := sections[sectionExample]; ok {
		content.Example = parseFencedBlock(body)
	}
	if body, ok := sections[sectionRisks]; ok {
		content.Risks = StringPtr(joinText(body))
	}
	if body, ok := sections[sectionWhenNotToUse]; ok {
		content.WhenNotToUse = StringPtr(joinText(body))
	}
	if body, ok := sections[sectionRelated]; ok {
		content.Related = parseList(body)
	}

	return content, nil
}

var knownSections = []string{
	sectionOneLineEssence,
	sectionUseWhen,
	sectionTypicalCases,
	sectionExample,
	sectionRisks,
	sectionWhenNotToUse,
	sectionRelated,
}

// splitSections groups body lines under their "## " heading and returns the "# " heading.
// Headings inside the example's code fence are treated as text.
func splitSections(lines []string) (string, map[string][]string) {
	var title string
	sections := make(map[string][]string)
	current := ""
	fence := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		inFence := fence > 0
		switch {
		case current != sectionExample:
		case fence == 0:
			fence = fenceLength(line)
			inFence = fence > 0
		case isClosingFence(line, fence):
			fence = 0
		}
		if !inFence {
			if name, ok := strings.CutPrefix(trimmed, "## "); ok {
				current = canonicalSection(strings.TrimSpace(name))
				if _, exists := sections[current]; !exists && current != "" {
					sections[current] = []string{}
				}
				continue
			}
			if name, ok := strings.CutPrefix(trimmed, "# "); ok && current == "" {
				title = strings.TrimSpace(name)
				continue
			}
		}
		if current == "" {
			continue
		}
		sections[current] = append(sections[current], line)
	}
	return title, sections
}

func canonicalSection(name string) string {
	for _, s := range knownSections {
		if strings.EqualFold(s, name) {
			return s
		}
	}
	return ""
}

func trimBlankLines(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

// joinText keeps leading indentation and drops surrounding blank lines and trailing whitespace.
func joinText(lines []string) string {
	kept := trimBlankLines(lines)
	out := make([]string, 0, len(kept))
	for _, line := range kept {
		out = append(out, unescapeLine(line))
	}
	return strings.TrimRight(strings.Join(out, "\n"), " \t\n")
}

func parseList(lines []string) []string {
	items := []string{}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		item, ok := strings.CutPrefix(trimmed, "-")
		if !ok {
			continue
		}
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func parseFencedBlock(lines []string) *string {
	start, fence := -1, 0
	for i, line := range lines {
		if fence = fenceLength(line); fence > 0 {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	for i := start + 1; i < len(lines); i++ {
		if isClosingFence(lines[i], fence) {
			return StringPtr(strings.Join(lines[start+1:i], "\n"))
		}
	}
	return nil
}

func backtickRun(line string) int {
	trimmed := strings.TrimLeft(line, " \t")
	return len(trimmed) - len(strings.TrimLeft(trimmed, "`"))
}

// fenceLength returns the length of an opening fence, or 0 when line does not open one.
func fenceLength(line string) int {
	if n := backtickRun(line); n >= len(codeFence) {
		return n
	}
	return 0
}

// isClosingFence reports whether line is only backticks and at least as long as the opening fence.
func isClosingFence(line string, open int) bool {
	trimmed := strings.TrimSpace(line)
	return len(trimmed) >= open && strings.Trim(trimmed, "`") == ""
}
