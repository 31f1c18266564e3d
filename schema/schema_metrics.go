package schema

// MetricDefinition describes one sub-metric for display purposes.
type MetricDefinition struct {
	Name        string       `json:"name" yaml:"name"`
	Family      Family       `json:"family" yaml:"family"`
	Description string       `json:"description" yaml:"description"`
	Formula     string       `json:"formula" yaml:"formula"`
	Strategy    NormStrategy `json:"strategy" yaml:"strategy"`
	Min         float64      `json:"min" yaml:"min"`
	Max         float64      `json:"max" yaml:"max"`
}

// FamilyDefinition describes one metric family and its weight.
type FamilyDefinition struct {
	Name    Family   `json:"name" yaml:"name"`
	Purpose string   `json:"purpose" yaml:"purpose"`
	Weight  float64  `json:"weight" yaml:"weight"`
	Metrics []string `json:"metrics" yaml:"metrics"`
}

// MetricsRenderModel contains all processed data needed for displaying metrics definitions.
type MetricsRenderModel struct {
	Title       string             `json:"title" yaml:"title"`
	Description string             `json:"description" yaml:"description"`
	Formula     string             `json:"formula" yaml:"formula"`
	Families    []FamilyDefinition `json:"families" yaml:"families"`
	Metrics     []MetricDefinition `json:"metrics" yaml:"metrics"`
	Thresholds  []Threshold        `json:"thresholds" yaml:"thresholds"`
}

// FamilyPurposes holds a one-line purpose for every family.
var FamilyPurposes = map[Family]string{
	ReadabilityFamily: "Classic readability formulas over sentence, word and syllable counts.",
	LinguisticFamily:  "Sentence structure and vocabulary breadth.",
	TranslationFamily: "Signals that make text hard to carry across languages.",
}

// MetricDescriptions holds the description and formula of every sub-metric.
var MetricDescriptions = map[string][2]string{
	FleschKincaid:       {"US grade level needed to read the text.", "0.39*W/S + 11.8*Syl/W - 15.59"},
	ColemanLiau:         {"Grade level from letters and sentences per 100 words.", "0.0588*L - 0.296*S - 15.8"},
	GunningFog:          {"Years of schooling needed on first reading.", "0.4*(W/S + 100*Complex/W)"},
	Smog:                {"Grade level from polysyllable density (3+ sentences).", "1.043*sqrt(Poly*30/S) + 3.1291"},
	FleschReadingEase:   {"Reading ease on a 0-100 scale; higher is easier.", "206.835 - 1.015*W/S - 84.6*Syl/W"},
	AvgSentenceLength:   {"Mean number of words per sentence.", "W/S"},
	LexicalDiversity:    {"Type/token ratio of lowercased words.", "unique(W)/W"},
	SyntacticComplexity: {"Mean estimated clause depth per sentence.", "mean(1 + subordinators + nesting)"},
	VocabularyRarity:    {"Share of words outside the common-word lexicon.", "rare(W)/W"},
	SemanticComplexity:  {"Magnitude of the text embedding.", "||embed(text)||"},
	IdiomaticDensity:    {"Idiom occurrences per three words.", "3*idioms/W"},
	DomainSpecificity:   {"Share of words outside the domain-common lexicon.", "specialized(W)/W"},
}
