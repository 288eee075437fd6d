package rules

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"CredScore/internal/config"
	"CredScore/internal/domain"
)

const baseScore = 0.30

var doiExpr = regexp.MustCompile(`(?i)/10\.\d{4,9}/[-._;()/:a-z0-9]+`)

// Evaluator computes a deterministic, explainable baseline score from URL
// structure alone. It performs no I/O and uses no randomness, so it can run
// inline on every scoring path, including the last-resort fallback.
type Evaluator struct {
	reputableDomains  map[string]struct{}
	institutionalTLDs map[string]struct{}
	blogPlatforms     []string
	trackingPrefixes  []string
}

// NewEvaluator builds an evaluator from the curated config tables.
// The tables are copied once and never mutated afterwards.
func NewEvaluator(cfg config.RulesConfig) *Evaluator {
	ev := &Evaluator{
		reputableDomains:  make(map[string]struct{}, len(cfg.ReputableDomains)),
		institutionalTLDs: make(map[string]struct{}, len(cfg.InstitutionalTLDs)),
		blogPlatforms:     append([]string(nil), cfg.BlogPlatforms...),
		trackingPrefixes:  append([]string(nil), cfg.TrackingPrefixes...),
	}
	for _, d := range cfg.ReputableDomains {
		ev.reputableDomains[strings.ToLower(d)] = struct{}{}
	}
	for _, t := range cfg.InstitutionalTLDs {
		ev.institutionalTLDs[strings.ToLower(strings.TrimPrefix(t, "."))] = struct{}{}
	}
	return ev
}

// Evaluate scores a URL with ordered, independent adjustments over a fixed
// base. It never returns an error: empty or unparsable input yields a zero
// score with a diagnostic explanation.
func (e *Evaluator) Evaluate(raw string) domain.ScoredURL {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.ScoredURL{
			URL:         raw,
			Score:       0.0,
			Explanation: "Invalid input: URL must be a non-empty string.",
		}
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return domain.ScoredURL{
			URL:         raw,
			Score:       0.0,
			Explanation: fmt.Sprintf("Error processing URL: %v", err),
		}
	}

	var parts []string
	score := baseScore

	host := strings.ToLower(parsed.Host)
	pathLC := strings.ToLower(parsed.Path)

	// 1) Secured transport
	switch parsed.Scheme {
	case "https":
		score += 0.05
		parts = append(parts, "Uses HTTPS (+0.05).")
	case "http", "":
		parts = append(parts, "Missing HTTPS (0.00).")
	}

	// 2) Institutional TLD
	if tld := lastLabel(host); tld != "" {
		if _, ok := e.institutionalTLDs[tld]; ok {
			score += 0.25
			parts = append(parts, fmt.Sprintf("TLD '.%s' (institutional) (+0.25).", tld))
		}
	}

	// 3) Curated reputable domains, exact host or subdomain
	if e.isReputable(host) {
		score += 0.25
		parts = append(parts, fmt.Sprintf("Recognized reputable domain '%s' (+0.25).", host))
	}

	// 4) Informal/blogging signals, -0.10 per distinct hit
	informalHits := 0
	if strings.Contains(host, "blog") || strings.Contains(pathLC, "/blog") {
		informalHits++
		parts = append(parts, "Contains 'blog' in domain/path (-0.10).")
	}
	for _, platform := range e.blogPlatforms {
		if strings.Contains(host, platform) {
			informalHits++
			parts = append(parts, "Hosted on blogging platform (-0.10).")
		}
	}
	score -= 0.10 * float64(informalHits)

	// 5) Persistent-identifier-shaped path (DOI)
	if doiExpr.MatchString(pathLC) {
		score += 0.20
		parts = append(parts, "DOI-like identifier found (+0.20).")
	}

	// 6) Tracking parameters
	query := strings.ToLower(parsed.RawQuery)
	for _, prefix := range e.trackingPrefixes {
		if strings.Contains(query, prefix) {
			score -= 0.05
			parts = append(parts, "Tracking params in query (-0.05).")
			break
		}
	}

	// 7) Unusually short host
	if len(host) < 5 {
		score -= 0.05
		parts = append(parts, "Very short/unclear host (-0.05).")
	}

	if len(parts) == 0 {
		parts = append(parts, "Applied neutral baseline heuristics.")
	}

	return domain.ScoredURL{
		URL:         raw,
		Score:       domain.Round(domain.Clamp01(score), 2),
		Explanation: strings.Join(parts, " "),
	}
}

func (e *Evaluator) isReputable(host string) bool {
	if host == "" {
		return false
	}
	if _, ok := e.reputableDomains[host]; ok {
		return true
	}
	for domainName := range e.reputableDomains {
		if strings.HasSuffix(host, "."+domainName) {
			return true
		}
	}
	return false
}

func lastLabel(host string) string {
	if host == "" {
		return ""
	}
	labels := strings.Split(host, ".")
	return labels[len(labels)-1]
}
