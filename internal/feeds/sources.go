package feeds

import (
	"net/url"
	"strings"
	"unicode"

	"newsdesk/internal/core"
)

type hostName struct {
	host string
	name string
}

var yogonetRegions = []hostName{
	{"europe", "Yogonet Europe"},
	{"united-states", "Yogonet US"},
	{"latin-america", "Yogonet Latin America"},
	{"asia", "Yogonet Asia"},
	{"online-gaming", "Yogonet Online Gaming"},
}

var knownHosts = []hostName{
	{"europeangaming.eu", "European Gaming"},
	{"igamingbusiness.com", "iGaming Business"},
	{"cdcgamingreports.com", "CDC Gaming Reports"},
	{"casinobeats.com", "Casino Beats"},
	{"sbcnews.co.uk", "SBC News"},
	{"slotbeats.com", "Slot Beats"},
}

// SourceName derives a readable publisher name from a feed URL.
// Unknown hosts fall back to the capitalised first domain label.
func SourceName(feedURL string) string {
	if strings.Contains(feedURL, "yogonet.com") {
		for _, region := range yogonetRegions {
			if strings.Contains(feedURL, region.host) {
				return region.name
			}
		}
	} else {
		for _, known := range knownHosts {
			if strings.Contains(feedURL, known.host) {
				return known.name
			}
		}
	}

	parsed, err := url.Parse(feedURL)
	if err != nil || parsed.Host == "" {
		return feedURL
	}
	host := strings.Replace(parsed.Hostname(), "www.", "", 1)
	label, _, _ := strings.Cut(host, ".")
	return titleCase(label)
}

func titleCase(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Sources resolves configured feed URLs into named sources, preserving order.
func Sources(urls []string) []core.Source {
	sources := make([]core.Source, 0, len(urls))
	for _, u := range urls {
		sources = append(sources, core.Source{Name: SourceName(u), URL: u})
	}
	return sources
}

// SourceNames returns the distinct names of the given sources, in order.
func SourceNames(sources []core.Source) []string {
	seen := make(map[string]bool, len(sources))
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		if !seen[s.Name] {
			seen[s.Name] = true
			names = append(names, s.Name)
		}
	}
	return names
}
