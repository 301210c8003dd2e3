package entity

// NewsSource identifies one of the upstream sources the aggregator knows about.
// The set is closed: adding a source means adding a constant and a descriptor here.
type NewsSource int

const (
	IrishTimes NewsSource = iota + 1
	HackerNews
	Dou
)

type sourceDescriptor struct {
	source   NewsSource
	key      string
	name     string
	homepage string
}

// descriptors lists every source in display order.
var descriptors = []sourceDescriptor{
	{source: IrishTimes, key: "irishtimes", name: "The Irish Times", homepage: "https://www.irishtimes.com"},
	{source: HackerNews, key: "hackernews", name: "Hacker News", homepage: "https://news.ycombinator.com"},
	{source: Dou, key: "dou", name: "DOU", homepage: "https://dou.ua"},
}

// AllNewsSources returns every supported source in display order.
func AllNewsSources() []NewsSource {
	out := make([]NewsSource, len(descriptors))
	for i, d := range descriptors {
		out[i] = d.source
	}
	return out
}

// ParseNewsSource resolves a source key. Matching is exact: keys are lowercase and
// are neither trimmed nor case-folded.
func ParseNewsSource(key string) (NewsSource, error) {
	for _, d := range descriptors {
		if d.key == key {
			return d.source, nil
		}
	}
	return 0, &UnsupportedSourceError{Key: key}
}

// Key returns the stable lowercase key used for routing and storage.
func (s NewsSource) Key() string {
	if d, ok := s.descriptor(); ok {
		return d.key
	}
	return ""
}

// DisplayName returns the human readable source name.
func (s NewsSource) DisplayName() string {
	if d, ok := s.descriptor(); ok {
		return d.name
	}
	return ""
}

// Homepage returns the public front page of the source.
func (s NewsSource) Homepage() string {
	if d, ok := s.descriptor(); ok {
		return d.homepage
	}
	return ""
}

// IsValid reports whether s is one of the declared sources.
func (s NewsSource) IsValid() bool {
	_, ok := s.descriptor()
	return ok
}

func (s NewsSource) String() string {
	if key := s.Key(); key != "" {
		return key
	}
	return "unknown"
}

func (s NewsSource) descriptor() (sourceDescriptor, bool) {
	for _, d := range descriptors {
		if d.source == s {
			return d, true
		}
	}
	return sourceDescriptor{}, false
}
