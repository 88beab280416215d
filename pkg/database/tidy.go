package database

import "strings"

// uninterestingSuffixes are derived-file suffixes that shadow a real store.
// Order matters: the first matching suffix wins.
var uninterestingSuffixes = []string{
	"-journal",
	"-uid",
	"-wal",
	"-shm",
}

// TidyStoreList removes shadow artifacts such as "-journal" files from a raw
// store listing. A name is dropped only when stripping a known suffix yields
// the name of a store that actually exists in the raw list; an orphaned
// journal with no live sibling is kept so that nothing silently disappears.
// Input order is preserved and duplicates are evaluated independently.
func TidyStoreList(raw []string) []string {
	present := make(map[string]struct{}, len(raw))
	for _, name := range raw {
		present[name] = struct{}{}
	}

	tidied := make([]string, 0, len(raw))
	for _, name := range raw {
		stripped := trimStoreSuffix(name)
		if stripped == name {
			tidied = append(tidied, name)
			continue
		}
		if _, shadows := present[stripped]; !shadows {
			tidied = append(tidied, name)
		}
	}
	return tidied
}

// trimStoreSuffix strips the first matching uninteresting suffix, or returns
// the name unchanged if none match.
func trimStoreSuffix(name string) string {
	for _, suffix := range uninterestingSuffixes {
		if strings.HasSuffix(name, suffix) {
			return strings.TrimSuffix(name, suffix)
		}
	}
	return name
}
