package discovery

import (
	"net/url"
	"sort"
)

// Index maps canonical local filenames to the hrefs the landing page
// actually advertises for them. Only primitive values (filenames and
// absolute URLs) cross out of the parsed DOM; nodes never escape.
type Index struct {
	links map[string]url.URL
}

func NewIndex() Index {
	return Index{
		links: make(map[string]url.URL),
	}
}

func (i *Index) add(filename string, href url.URL) {
	i.links[filename] = href
}

// Lookup returns the advertised URL for a filename, if the landing
// page linked to it.
func (i *Index) Lookup(filename string) (url.URL, bool) {
	href, ok := i.links[filename]
	return href, ok
}

// Filenames returns every discovered filename in stable order.
func (i *Index) Filenames() []string {
	names := make([]string, 0, len(i.links))
	for name := range i.links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (i *Index) Len() int {
	return len(i.links)
}
