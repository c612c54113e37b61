package indexer

import (
	"regexp"
	"strings"
	"unicode"
)

// lineBreakHyphen matches a word split across lines by the PDF text layer.
var lineBreakHyphen = regexp.MustCompile(`(\p{L})-[ \t]*\r?\n[ \t]*(\p{Ll})`)

// Preprocess cleans extracted page text before chunking. Words hyphenated across a line
// break are joined, soft hyphens and control characters are dropped, and whitespace runs
// collapse to one space.
func Preprocess(text string) string {
	text = lineBreakHyphen.ReplaceAllString(text, "$1$2")
	var b strings.Builder
	b.Grow(len(text))
	pending := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			pending = b.Len() > 0
		case r == '\u00ad' || unicode.IsControl(r):
		default:
			if pending {
				b.WriteByte(' ')
				pending = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}
