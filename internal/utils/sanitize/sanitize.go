package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag and attribute. bluemonday policies are safe for
// concurrent use once built; never mutate it after init.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Sanitize strips all HTML from s. Text between tags is kept, and a space is
// inserted where a tag was removed so words do not run together.
func Sanitize(s string) string {
	return strict.Sanitize(s)
}

// Line strips HTML and collapses s to a single line, for note titles.
func Line(s string) string {
	return strings.Join(strings.Fields(plain(s)), " ")
}

// Text strips HTML from note content. Line breaks survive; runs of spaces
// within a line collapse to one.
func Text(s string) string {
	lines := strings.Split(plain(s), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func plain(s string) string {
	out := html.UnescapeString(strict.Sanitize(s))
	out = strings.ReplaceAll(out, "\u00a0", " ")
	return strings.ReplaceAll(out, "\r\n", "\n")
}
