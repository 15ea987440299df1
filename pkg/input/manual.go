package input

import (
	"bufio"
	"io"
	"strings"

	"github.com/morikuni/failure/v2"

	"github.com/juditrz/host-checker/pkg/model"
	"github.com/juditrz/host-checker/pkg/util"
)

// LinksFromLines reads one URL per line (stdin or a plain text file),
// provenance fixed to ("Manual Entry", "N/A"). Blank lines and comments are
// skipped.
func LinksFromLines(r io.Reader) ([]model.InputLink, error) {
	var links []model.InputLink
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, model.InputLink{
			SourceLabel: "Manual Entry",
			SourceRef:   "N/A",
			URL:         util.NormalizeURL(line),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, failure.Wrap(err)
	}
	return links, nil
}
