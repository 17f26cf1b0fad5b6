// Package normalize cleans article and model-response text before and after
// language-model calls. Everything in here is a pure function.
package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	reNewlines   = regexp.MustCompile(`\n+`)
	reWhitespace = regexp.MustCompile(`\s+`)
	// Characters outside this class carry no meaning for the model and get
	// dropped (control characters, stray symbols from copy-pasted HTML).
	reDisallowed = regexp.MustCompile("[^\\w0-9\\-\\s\\n_*.`~!@#$%^&()+={}:\"'?/><,+\\[\\]]")
)

// boilerplatePhrases are navigation snippets the help-center editor injects
// into article bodies.
var boilerplatePhrases = []string{
	"Go back to the List of Contents",
}

const (
	questionMarker = "Question"
	answerMarker   = "Answer"
)

// StripHTML drops markup and keeps text content. Line-break tags become
// newlines first so paragraph boundaries survive the strip.
func StripHTML(s string) string {
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF ends the document; any other tokenizer error still
			// leaves b with everything read so far.
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte('\n')
			}
		}
	}
}

// RemoveBoilerplate deletes known editor boilerplate and, for FAQ-style
// articles, strips the leading "Question ... Answer" preamble so only the
// answer body remains. The prefix is only stripped when both markers are
// present.
func RemoveBoilerplate(s string) string {
	for _, phrase := range boilerplatePhrases {
		s = strings.ReplaceAll(s, phrase, "")
	}

	if strings.Contains(s, questionMarker) {
		if idx := strings.Index(s, answerMarker); idx != -1 {
			s = s[idx+len(answerMarker):]
			s = strings.TrimLeft(s, ": ")
		}
	}

	return strings.TrimSpace(s)
}

// CollapseWhitespace normalizes non-breaking spaces, drops disallowed
// characters and folds newline and whitespace runs into single spaces.
func CollapseWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.ReplaceAll(s, "&nbsp", " ")
	s = reDisallowed.ReplaceAllString(s, "")
	s = reNewlines.ReplaceAllString(s, " ")
	s = reWhitespace.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Clean is the full article pipeline: strip markup, drop boilerplate,
// collapse whitespace.
func Clean(s string) string {
	return CollapseWhitespace(RemoveBoilerplate(StripHTML(s)))
}

// ExtractYouTubeLinks returns watch URLs for every embedded iframe in an
// article body.
func ExtractYouTubeLinks(article string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article))
	if err != nil {
		return nil
	}

	var links []string
	doc.Find("iframe").Each(func(_ int, sel *goquery.Selection) {
		src, ok := sel.Attr("src")
		if !ok {
			return
		}

		parts := strings.Split(src, "/")
		id := strings.SplitN(parts[len(parts)-1], "?", 2)[0]
		if id == "" {
			return
		}
		links = append(links, "https://www.youtube.com/watch?v="+id)
	})

	return links
}
