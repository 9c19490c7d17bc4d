package strategy

import "fmt"

// keyKind separates hard-total entries from pair entries
type keyKind int

const (
	totalKey keyKind = iota
	pairKey
)

// deviationKey identifies a (player hand, dealer up-value) pairing. For
// pair entries Value is the paired card value; otherwise the hard total.
type deviationKey struct {
	Kind   keyKind
	Value  int
	Dealer int
}

// Deviation is a count index overriding basic strategy. Action applies when
// TC >= Threshold, or when TC < Threshold if Below is set.
type Deviation struct {
	Threshold int
	Action    Action
	Below     bool
}

// fires reports whether the count crosses the index
func (d Deviation) fires(tc int) bool {
	if d.Below {
		return tc < d.Threshold
	}
	return tc >= d.Threshold
}

// InsuranceIndex is the true count at which insurance becomes profitable
const InsuranceIndex = 3

var deviations = map[deviationKey]Deviation{
	{totalKey, 16, 10}: {Threshold: 0, Action: Stand},
	{totalKey, 15, 10}: {Threshold: 4, Action: Stand},
	{pairKey, 10, 5}:   {Threshold: 5, Action: Split},
	{pairKey, 10, 6}:   {Threshold: 4, Action: Split},
	{totalKey, 10, 10}: {Threshold: 4, Action: Double},
	{totalKey, 12, 3}:  {Threshold: 2, Action: Stand},
	{totalKey, 12, 2}:  {Threshold: 3, Action: Stand},
	{totalKey, 11, 11}: {Threshold: 1, Action: Double},
	{totalKey, 9, 2}:   {Threshold: 1, Action: Double},
	{totalKey, 10, 11}: {Threshold: 4, Action: Double},
	{totalKey, 9, 7}:   {Threshold: 3, Action: Double},
	{totalKey, 16, 9}:  {Threshold: 5, Action: Stand},
	{totalKey, 13, 2}:  {Threshold: -1, Action: Hit, Below: true},
	{totalKey, 12, 4}:  {Threshold: 0, Action: Hit, Below: true},
	{totalKey, 12, 5}:  {Threshold: -2, Action: Hit, Below: true},
	{totalKey, 12, 6}:  {Threshold: -1, Action: Hit, Below: true},
	{totalKey, 13, 3}:  {Threshold: -2, Action: Hit, Below: true},
}

// lookupDeviation finds the index entry for the situation. Pairs that
// may be split use pair entries; pairs basic strategy splits are never
// played as totals. Soft hands have no entries.
func lookupDeviation(sit Situation) (Deviation, bool) {
	h := sit.Hand
	dealer := UpValue(sit.Upcard)

	if h.IsPair() && sit.Available.Has(Split) {
		value := h.Cards[0].Value()
		if d, ok := deviations[deviationKey{pairKey, value, dealer}]; ok {
			return d, true
		}
		if shouldSplit(value, dealer) {
			return Deviation{}, false
		}
	}
	if h.IsSoft() {
		return Deviation{}, false
	}
	d, ok := deviations[deviationKey{totalKey, h.Value(), dealer}]
	return d, ok
}

// Recommend returns the advised action. With counting on, a deviation
// whose action is currently legal takes precedence over basic strategy.
func Recommend(sit Situation) Action {
	if sit.Counting {
		if d, ok := lookupDeviation(sit); ok && d.fires(sit.TrueCount) && sit.Available.Has(d.Action) {
			return d.Action
		}
	}
	return Basic(sit)
}

// TakeInsurance reports whether insurance is worth taking at this count
func TakeInsurance(trueCount int) bool {
	return trueCount >= InsuranceIndex
}

// Explanation describes how the count bears on a decision
type Explanation struct {
	Applies   bool
	Action    Action
	Basic     Action
	Threshold int
	TrueCount int
	Below     bool
	Reason    string
}

// Explain reports whether a deviation would apply and why. It returns
// false when no index exists for the situation.
func Explain(sit Situation) (Explanation, bool) {
	d, ok := lookupDeviation(sit)
	if !ok {
		return Explanation{}, false
	}

	e := Explanation{
		Action:    d.Action,
		Basic:     Basic(sit),
		Threshold: d.Threshold,
		TrueCount: sit.TrueCount,
		Below:     d.Below,
	}

	cmp, neg := ">=", "<"
	if d.Below {
		cmp, neg = "<", ">="
	}

	switch {
	case !d.fires(sit.TrueCount):
		e.Reason = fmt.Sprintf("TC %+d %s %+d: basic %s", sit.TrueCount, neg, d.Threshold, e.Basic)
	case !sit.Available.Has(d.Action):
		e.Reason = fmt.Sprintf("TC %+d %s %+d but %s unavailable: basic %s", sit.TrueCount, cmp, d.Threshold, d.Action, e.Basic)
	default:
		e.Applies = true
		e.Reason = fmt.Sprintf("TC %+d %s %+d: %s instead of %s", sit.TrueCount, cmp, d.Threshold, d.Action, e.Basic)
	}
	return e, true
}
