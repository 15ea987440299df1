// Package extract turns raw page markup into the lowercase corpus the
// hosting classifier matches signatures against.
package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	titleRegex = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	spaceRegex = regexp.MustCompile(`\s+`)
)

// Corpus extracts the classification corpus from raw HTML: every text node
// inside the document head, each meta content attribute, each script src,
// each link href, and the title, joined with spaces and lowercased. Malformed
// markup is tolerated; an absent or unparseable head yields an empty corpus,
// which downstream classifies as "Other".
func Corpus(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	head := doc.Find("head").First()
	if head.Length() == 0 {
		return ""
	}

	var texts []string
	for _, n := range head.Nodes {
		collectText(n, &texts)
	}
	headText := strings.Join(texts, " ")

	var metas []string
	head.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, _ := s.Attr("content")
		metas = append(metas, content)
	})

	var srcs []string
	head.Find("script").Each(func(_ int, s *goquery.Selection) {
		if src, ok := s.Attr("src"); ok {
			srcs = append(srcs, src)
		}
	})

	var hrefs []string
	head.Find("link").Each(func(_ int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			hrefs = append(hrefs, href)
		}
	})

	title := head.Find("title").First().Text()

	combined := strings.Join([]string{
		headText,
		strings.Join(metas, " "),
		strings.Join(srcs, " "),
		strings.Join(hrefs, " "),
		title,
	}, " ")

	return strings.ToLower(combined)
}

// collectText appends trimmed, non-empty text nodes in document order.
func collectText(n *html.Node, out *[]string) {
	if n.Type == html.TextNode {
		if t := strings.TrimSpace(n.Data); t != "" {
			*out = append(*out, t)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, out)
	}
}

// Title extracts the page title for progress and log output. Whitespace is
// collapsed; missing titles yield "".
func Title(rawHTML string) string {
	matches := titleRegex.FindStringSubmatch(rawHTML)
	if len(matches) < 2 {
		return ""
	}
	title := strings.TrimSpace(matches[1])
	return spaceRegex.ReplaceAllString(title, " ")
}
