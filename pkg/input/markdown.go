// Package input turns the three supported input shapes (markdown link
// lists, CSV columns, plain URL lines) into a uniform InputLink stream.
package input

import (
	"bufio"
	"os"
	"regexp"

	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/util"
)

// markdownLinkRegex matches one [text](url) pair with an http(s) URL.
var markdownLinkRegex = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\s)]+)\)`)

// LinksFromMarkdown extracts links with provenance from a markdown file.
// Per line the first [label](reference) pair names the source; every
// trailing [anchor](url) pair yields one InputLink carrying that
// provenance. Lines with fewer than two pairs contribute nothing.
func LinksFromMarkdown(path string) ([]model.InputLink, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, failure.Wrap(err)
	}
	defer file.Close()

	var links []model.InputLink
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		matches := markdownLinkRegex.FindAllStringSubmatch(scanner.Text(), -1)
		if len(matches) < 2 {
			continue
		}
		label, ref := matches[0][1], matches[0][2]
		for _, m := range matches[1:] {
			links = append(links, model.InputLink{
				SourceLabel: label,
				SourceRef:   ref,
				URL:         util.NormalizeURL(m[2]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, failure.Wrap(err)
	}
	return links, nil
}
