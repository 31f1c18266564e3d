package schema

// CheckResult holds the results of a policy check.
type CheckResult struct {
	Passed            bool
	TotalTexts        int
	FailedTexts       []CheckFailedText
	ErroredTexts      []CheckFailedText
	FailTier          Tier
	MaxScore          float64
	MaxObserved       float64
	MaxObservedSource string
	AvgScore          float64
	TierCounts        map[Tier]int
}

// CheckFailedText represents a text that failed the policy check.
type CheckFailedText struct {
	Index  int
	Source string
	Score  float64
	Tier   Tier
	Reason string
}
