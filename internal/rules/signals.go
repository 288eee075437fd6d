package rules

import (
	"net/url"
	"strings"
)

// Signals are the boolean structural facts behind the rule score, exposed
// so the feature extractor encodes exactly the signals the evaluator uses.
type Signals struct {
	HTTPS            bool
	InstitutionalTLD bool
	Reputable        bool
	DOIInPath        bool
	Blog             bool
	Tracking         bool
	ShortHost        bool
}

// Signals derives structural flags from the URL string alone. Unparsable
// input yields the zero value.
func (e *Evaluator) Signals(raw string) Signals {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Signals{}
	}

	host := strings.ToLower(parsed.Host)
	pathLC := strings.ToLower(parsed.Path)
	query := strings.ToLower(parsed.RawQuery)

	var s Signals
	s.HTTPS = parsed.Scheme == "https"

	if tld := lastLabel(host); tld != "" {
		_, s.InstitutionalTLD = e.institutionalTLDs[tld]
	}

	s.Reputable = e.isReputable(host)
	s.DOIInPath = doiExpr.MatchString(pathLC)

	if strings.Contains(host, "blog") || strings.Contains(pathLC, "/blog") {
		s.Blog = true
	}
	for _, platform := range e.blogPlatforms {
		if strings.Contains(host, platform) {
			s.Blog = true
		}
	}

	for _, prefix := range e.trackingPrefixes {
		if strings.Contains(query, prefix) {
			s.Tracking = true
		}
	}

	s.ShortHost = len(host) < 5
	return s
}
