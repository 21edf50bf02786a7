package record

import "github.com/davidahmann/jtrail/pkg/types"

// DeriveJudgment reports whether the evaluated paths demonstrate a
// judgment: at least two paths were considered, at least one was
// evaluated and rejected, and exactly one was selected. Zero or one
// paths, no rejected path, or anything other than a single selected
// path is not a judgment.
func DeriveJudgment(paths []types.EvaluatedPath) bool {
	if len(paths) < 2 {
		return false
	}

	selected := 0
	rejected := 0
	for _, p := range paths {
		if p.WasSelected {
			selected++
		} else {
			rejected++
		}
	}
	return selected == 1 && rejected >= 1
}
