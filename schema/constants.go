package schema

// Custom string types for type safety.
type (
	// Family identifies one of the fixed metric groups.
	Family string

	// Tier is a discrete complexity label assigned from the overall score.
	Tier string

	// NormStrategy is the rule that maps a raw sub-metric onto [0,1].
	NormStrategy string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching and analysis tracking.
	DatabaseBackend string

	// SplitMode controls how input files are cut into texts.
	SplitMode string
)

// All metric families, in aggregation order.
const (
	ReadabilityFamily Family = "readability"
	LinguisticFamily  Family = "linguistic"
	TranslationFamily Family = "translation"
)

// Default tiers.
const (
	LowTier      Tier = "low"
	MediumTier   Tier = "medium"
	HighTier     Tier = "high"
	VeryHighTier Tier = "very_high"
)

// All normalization strategies supported.
const (
	LinearClamp        NormStrategy = "linear_clamp"
	InverseLinearClamp NormStrategy = "inverse_linear_clamp"
	AlreadyBounded     NormStrategy = "already_bounded"
)

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	NDJSONOut  OutputMode = "ndjson"
	YAMLOut    OutputMode = "yaml"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis" // cache only
	NoneBackend       DatabaseBackend = "none"
)

// All split modes supported.
const (
	SplitFile      SplitMode = "file" // default
	SplitLine      SplitMode = "line"
	SplitParagraph SplitMode = "paragraph"
)

// Sub-metric names.
const (
	FleschKincaid     = "flesch_kincaid"
	ColemanLiau       = "coleman_liau"
	GunningFog        = "gunning_fog"
	Smog              = "smog"
	FleschReadingEase = "flesch_reading_ease"

	AvgSentenceLength   = "avg_sentence_length"
	LexicalDiversity    = "lexical_diversity"
	SyntacticComplexity = "syntactic_complexity"
	VocabularyRarity    = "vocabulary_rarity"

	SemanticComplexity = "semantic_complexity"
	IdiomaticDensity   = "idiomatic_density"
	DomainSpecificity  = "domain_specificity"
)

// OverallKey is the key of the overall score in flattened records.
const OverallKey = "overall_complexity"

// AllFamilies lists every family in the fixed aggregation order.
var AllFamilies = []Family{ReadabilityFamily, LinguisticFamily, TranslationFamily}

// ValidFamilies lists all valid families.
var ValidFamilies = map[Family]struct{}{
	ReadabilityFamily: {},
	LinguisticFamily:  {},
	TranslationFamily: {},
}

// ValidNormStrategies lists all valid normalization strategies.
var ValidNormStrategies = map[NormStrategy]struct{}{
	LinearClamp:        {},
	InverseLinearClamp: {},
	AlreadyBounded:     {},
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	NDJSONOut:  {},
	YAMLOut:    {},
	ParquetOut: {},
}

// ValidCacheBackends lists all valid cache backends.
var ValidCacheBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}

// ValidAnalysisBackends lists all valid analysis backends.
var ValidAnalysisBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ValidSplitModes lists all valid split modes.
var ValidSplitModes = map[SplitMode]struct{}{
	SplitFile:      {},
	SplitLine:      {},
	SplitParagraph: {},
}

// MetricFamilies maps every known sub-metric to the family that produces it.
var MetricFamilies = map[string]Family{
	FleschKincaid:       ReadabilityFamily,
	ColemanLiau:         ReadabilityFamily,
	GunningFog:          ReadabilityFamily,
	Smog:                ReadabilityFamily,
	FleschReadingEase:   ReadabilityFamily,
	AvgSentenceLength:   LinguisticFamily,
	LexicalDiversity:    LinguisticFamily,
	SyntacticComplexity: LinguisticFamily,
	VocabularyRarity:    LinguisticFamily,
	SemanticComplexity:  TranslationFamily,
	IdiomaticDensity:    TranslationFamily,
	DomainSpecificity:   TranslationFamily,
}

// GetDefaultFamilyWeights returns the default relative contribution of each family.
func GetDefaultFamilyWeights() FamilyWeights {
	return FamilyWeights{
		ReadabilityFamily: 0.3,
		LinguisticFamily:  0.4,
		TranslationFamily: 0.3,
	}
}

// GetDefaultThresholds returns the default tier thresholds, lowest first.
func GetDefaultThresholds() []Threshold {
	return []Threshold{
		{Tier: LowTier, LowerBound: 0},
		{Tier: MediumTier, LowerBound: 0.25},
		{Tier: HighTier, LowerBound: 0.45},
		{Tier: VeryHighTier, LowerBound: 0.65},
	}
}

// GetDefaultNormParams returns the default normalization parameters per sub-metric.
//
// Grade-level formulas share a 0-20 scale: 20 is graduate-level prose and the
// formulas rarely exceed it outside of pathological input. Reading ease uses
// its native 0-100 scale, inverted. Sentence length saturates at 30 words,
// which is where plain-language guides flag sentences as very hard.
func GetDefaultNormParams() map[string]NormParam {
	return map[string]NormParam{
		FleschKincaid:       {Strategy: LinearClamp, Min: 0, Max: 20},
		ColemanLiau:         {Strategy: LinearClamp, Min: 0, Max: 20},
		GunningFog:          {Strategy: LinearClamp, Min: 0, Max: 20},
		Smog:                {Strategy: LinearClamp, Min: 0, Max: 20},
		FleschReadingEase:   {Strategy: InverseLinearClamp, Min: 0, Max: 100},
		AvgSentenceLength:   {Strategy: LinearClamp, Min: 0, Max: 30},
		LexicalDiversity:    {Strategy: AlreadyBounded},
		SyntacticComplexity: {Strategy: LinearClamp, Min: 0, Max: 10},
		VocabularyRarity:    {Strategy: AlreadyBounded},
		SemanticComplexity:  {Strategy: LinearClamp, Min: 0, Max: 10},
		IdiomaticDensity:    {Strategy: AlreadyBounded},
		DomainSpecificity:   {Strategy: AlreadyBounded},
	}
}
