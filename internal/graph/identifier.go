package graph

import (
	"regexp"
	"strings"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/domain"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// validIdentifier rejects label and relationship-type strings that cannot be
// safely spliced into Cypher. Unlike property values, identifiers cannot be
// parameterized, so anything outside [A-Za-z0-9_]+ is refused outright.
func validIdentifier(s string) error {
	if !identifierPattern.MatchString(s) {
		return domain.ErrInvalidIdentifier
	}
	return nil
}

// labelFragment builds the ":A:B:Searchable" label clause for a node. Every
// node carries the Searchable label so the embedding index can find it.
func labelFragment(labels []string) (string, error) {
	if len(labels) == 0 {
		return "", domain.ErrInvalidIdentifier
	}
	var b strings.Builder
	for _, l := range labels {
		if err := validIdentifier(l); err != nil {
			return "", err
		}
		b.WriteByte(':')
		b.WriteString(l)
	}
	b.WriteString(":" + searchableLabel)
	return b.String(), nil
}
