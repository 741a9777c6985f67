package terminal

import "unicode"

// Wrap splits text into lines of at most width characters using greedy
// fill. Breaks happen preferentially at a whitespace boundary at or
// before the width limit; a token longer than width is hard-broken at
// the limit. A newline in the input always forces a break. No character
// is ever dropped or reordered, except the single whitespace consumed
// as a line separator.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}

	var lines []string
	pos := 0
	for pos < len(runes) {
		// Scan up to width runes or a forced newline break.
		end := pos
		for end < len(runes) && end-pos < width && runes[end] != '\n' {
			end++
		}

		if end == len(runes) {
			lines = append(lines, string(runes[pos:end]))
			break
		}

		if runes[end] == '\n' {
			lines = append(lines, string(runes[pos:end]))
			pos = end + 1
			if pos == len(runes) {
				// Trailing newline still terminates a (possibly empty) line.
				lines = append(lines, "")
			}
			continue
		}

		// Line is full. Break at the limit if it lands on whitespace,
		// otherwise back up to the last boundary inside the line.
		if unicode.IsSpace(runes[end]) {
			lines = append(lines, string(runes[pos:end]))
			pos = end + 1
			continue
		}

		brk := -1
		for j := end - 1; j > pos; j-- {
			if unicode.IsSpace(runes[j]) {
				brk = j
				break
			}
		}
		if brk > pos {
			lines = append(lines, string(runes[pos:brk]))
			pos = brk + 1
		} else {
			// No boundary within the line: hard break mid-token.
			lines = append(lines, string(runes[pos:end]))
			pos = end
		}
	}
	return lines
}
