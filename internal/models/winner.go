package models

// Winner is one judging result entry.
//
// Winners exist only as the output of a judging round (at most two per
// round) and are not persisted across a game reset.
type Winner struct {
	// GroupName is the name of the winning group, as reported by the judge.
	GroupName string

	// Justification is the judge's brief explanation for the pick.
	Justification string
}
