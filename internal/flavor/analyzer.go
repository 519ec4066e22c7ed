// Package flavor derives descriptive tags from hop concentration and yeast scores.
package flavor

import "github.com/sells-group/brew-cli/internal/model"

// Concentration thresholds in grams of hops per litre of wort.
const (
	IntenseThreshold  = 5.0
	SubtleThreshold   = 1.0
	HoppyThreshold    = 2.0
	EsteryThreshold   = 60.0
	ButteryThreshold  = 20.0
	MaxTags           = 30
	hopBombTag        = "Hop Bomb"
	extremelyHoppyTag = "Extremely Hoppy"
)

// Analyzer produces hop-derived tags plus a few yeast markers.
type Analyzer struct {
	maxTags int
}

// NewAnalyzer creates an Analyzer with the default tag limit.
func NewAnalyzer() *Analyzer {
	return &Analyzer{maxTags: MaxTags}
}

// Analyze tags the recipe's hop bill by concentration and appends "Estery"
// and "Buttery" markers from the yeast scores. The result is de-duplicated,
// keeps insertion order and holds at most MaxTags entries.
func (a *Analyzer) Analyze(r *model.Recipe, esterScore, diacetylRisk float64) []string {
	var tags []string
	tags = a.hopTags(r, tags)

	if esterScore > EsteryThreshold {
		tags = append(tags, "Estery")
	}
	if diacetylRisk > ButteryThreshold {
		tags = append(tags, "Buttery")
	}

	return Dedupe(tags, a.maxTags)
}

func (a *Analyzer) hopTags(r *model.Recipe, tags []string) []string {
	if r.BatchLiters <= 0 {
		return tags
	}

	var total float64
	for _, item := range r.Hops() {
		concentration := item.Grams / r.BatchLiters
		total += concentration

		for _, base := range item.Hop.Flavors {
			switch {
			case concentration >= IntenseThreshold:
				tags = append(tags, "Intense "+base, hopBombTag)
			case concentration <= SubtleThreshold:
				tags = append(tags, "Hint of "+base)
			default:
				tags = append(tags, base)
			}
		}
	}

	if total > HoppyThreshold {
		tags = append(tags, extremelyHoppyTag)
	}
	return tags
}

// Dedupe drops repeated tags keeping the first occurrence. A positive limit
// truncates the result.
func Dedupe(tags []string, limit int) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Merge concatenates tag lists and de-duplicates them, capped at MaxTags.
func Merge(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		all = append(all, l...)
	}
	return Dedupe(all, MaxTags)
}
