package drift

import (
	"math"

	"github.com/ryanwaits/openpkg/docparse"
	"github.com/ryanwaits/openpkg/spec"
)

// Missing-signal labels, in the order they are reported.
const (
	MissingDescription = "description"
	MissingParams      = "params"
	MissingReturns     = "returns"
	MissingExamples    = "examples"
)

// Coverage scores one export on four independent binary signals, each worth
// 25 points: a description, a description for every parameter (vacuously
// satisfied with zero parameters), a documented return for signatures
// (vacuous with zero signatures), and at least one example.
func Coverage(ex *spec.Export, doc *docparse.Doc) (score int, missing []string) {
	if ex.Description == "" {
		missing = append(missing, MissingDescription)
	}
	if !paramsDocumented(ex) {
		missing = append(missing, MissingParams)
	}
	if len(ex.Signatures) > 0 && (doc == nil || doc.Returns == nil) {
		missing = append(missing, MissingReturns)
	}
	if len(ex.Examples) == 0 {
		missing = append(missing, MissingExamples)
	}
	return 100 - 25*len(missing), missing
}

func paramsDocumented(ex *spec.Export) bool {
	for _, sig := range ex.Signatures {
		for _, p := range sig.Params {
			if p.Description == "" {
				return false
			}
		}
	}
	return true
}

// PackageScore is the rounded mean of export scores; 100 when the package
// has no exports.
func PackageScore(scores []int) int {
	if len(scores) == 0 {
		return 100
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}
