package normalize

import (
	"regexp"
	"strconv"
)

// Upstream metadata has no structured season/episode fields; French titles
// carry them as free text. These patterns recover them when present. The
// result is a display hint only and is never used as a grouping key.
var (
	seasonPattern    = regexp.MustCompile(`(?i)saison\s+(\d{1,3})`)
	episodeOfPattern = regexp.MustCompile(`\((\d{1,4})\s*/\s*\d{1,4}\)`)
	episodePattern   = regexp.MustCompile(`(?i)[eé]pisode\s+(\d{1,4})`)
)

// SeasonEpisode extracts season and episode numbers from free-text titles
// like "Les Pockemon Crew - Saison 2 (3/8)". Either value may be zero when
// only the other was found; ok is false when neither matched.
func SeasonEpisode(text string) (season, episode int, ok bool) {
	if m := seasonPattern.FindStringSubmatch(text); m != nil {
		season, _ = strconv.Atoi(m[1])
	}
	if m := episodeOfPattern.FindStringSubmatch(text); m != nil {
		episode, _ = strconv.Atoi(m[1])
	} else if m := episodePattern.FindStringSubmatch(text); m != nil {
		episode, _ = strconv.Atoi(m[1])
	}
	return season, episode, season > 0 || episode > 0
}
