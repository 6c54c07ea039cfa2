package valueobjects

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

var (
	urlInTextPattern   = regexp.MustCompile(`(?i)https?://\S+`)
	trailingIDPattern  = regexp.MustCompile(`-\d+$`)
	versionTokenRegexp = regexp.MustCompile(`^v\d+$`)
	digitsOnly         = regexp.MustCompile(`^\d+$`)
)

// Hosted applicant-tracking boards put the company in the first path segment
var boardHosts = map[string]bool{
	"boards.greenhouse.io":     true,
	"job-boards.greenhouse.io": true,
	"jobs.lever.co":            true,
	"jobs.ashbyhq.com":         true,
	"apply.workable.com":       true,
}

var jobPathMarkers = map[string]bool{
	"careers":   true,
	"jobs":      true,
	"positions": true,
	"openings":  true,
}

// JobPosting is what can be inferred about a job from its posting URL
type JobPosting struct {
	Company string `json:"company,omitempty"`
	Role    string `json:"role,omitempty"`
	URL     string `json:"url"`
}

// FindURL returns the first http(s) URL in text, without trailing punctuation
func FindURL(text string) string {
	raw := urlInTextPattern.FindString(text)
	return strings.TrimRight(raw, ".,;:!?)\"'")
}

// ParseJobURL infers company and role from a posting URL.
// https://vercel.com/careers/product-engineer-v0-5466858004 yields
// company "Vercel" and role "Product Engineer V0".
func ParseJobURL(raw string) (JobPosting, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return JobPosting{}, fmt.Errorf("invalid job URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return JobPosting{}, fmt.Errorf("invalid job URL %q: expected an http(s) address", raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	segments := pathSegments(u.Path)

	posting := JobPosting{URL: strings.TrimSpace(raw)}
	if boardHosts[host] && len(segments) > 0 {
		posting.Company = capitalize(strings.ReplaceAll(segments[0], "-", " "))
		segments = segments[1:]
	} else {
		posting.Company = capitalize(companyLabel(host))
	}

	if segment := roleSegment(segments); segment != "" {
		posting.Role = humanizeSlug(segment)
	}
	return posting, nil
}

// companyLabel skips career-site subdomains such as jobs.netflix.com
func companyLabel(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) > 2 {
		switch labels[0] {
		case "jobs", "careers", "apply", "boards":
			return labels[1]
		}
	}
	return labels[0]
}

func pathSegments(path string) []string {
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func roleSegment(segments []string) string {
	for i, s := range segments {
		lower := strings.ToLower(s)
		if jobPathMarkers[lower] || strings.Contains(lower, "career") || strings.Contains(lower, "job") {
			if i+1 < len(segments) && !digitsOnly.MatchString(segments[i+1]) {
				return segments[i+1]
			}
		}
	}
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	if digitsOnly.MatchString(last) {
		return ""
	}
	if jobPathMarkers[strings.ToLower(last)] {
		return ""
	}
	return last
}

func humanizeSlug(slug string) string {
	slug = trailingIDPattern.ReplaceAllString(slug, "")
	var words []string
	for _, token := range strings.Split(slug, "-") {
		if token == "" {
			continue
		}
		if versionTokenRegexp.MatchString(strings.ToLower(token)) {
			words = append(words, strings.ToUpper(token))
			continue
		}
		words = append(words, capitalize(token))
	}
	return strings.Join(words, " ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
