package validation

import "statflow/domain/analysis"

// RulesFor returns the ordered rule set of an analysis kind. Unknown kinds
// get the shared preamble only.
func RulesFor(kind analysis.Kind) []Rule {
	rules := []Rule{DataLoaded()}
	switch kind {
	case analysis.KindRegression:
		rules = append(rules,
			RequireTarget("Dependent variable selected"),
			RequireFeatures("Predictors selected", 2),
			DistinctRoles(),
			ColumnsPresent(),
			NumericTarget("Dependent variable is numeric"),
			NumericFeatures("Predictors are numeric"),
			MinSampleSize(10, 30),
			ObsPerPredictor(10, 5),
			ConstantPredictors(),
			Collinearity(0.9),
			MissingValues(),
		)
	case analysis.KindOutliers:
		rules = append(rules,
			RequireFeatures("Variables selected", 1),
			ColumnsPresent(),
			NumericFeatures("Variables are numeric"),
			MinSampleSize(5, 20),
			MissingValues(),
		)
	case analysis.KindCrosstab:
		rules = append(rules,
			RequireGroup("Row variable selected"),
			RequireTarget("Column variable selected"),
			DistinctRoles(),
			ColumnsPresent(),
			GroupLevels("Row variable categories", 2, 20),
			TargetLevels("Column variable categories", 2, 20),
			ExpectedFrequency(5),
			MissingValues(),
		)
	case analysis.KindGLM:
		rules = append(rules,
			RequireTarget("Response variable selected"),
			RequireFeatures("Predictors selected", 1),
			DistinctRoles(),
			ColumnsPresent(),
			FamilyLink(),
			TargetDomain(),
			NumericFeatures("Predictors are numeric"),
			MinSampleSize(20, 50),
			ObsPerPredictor(10, 5),
			Collinearity(0.9),
			MissingValues(),
		)
	case analysis.KindDiD:
		rules = append(rules,
			RequireTarget("Outcome selected"),
			RequireGroup("Treatment indicator selected"),
			RequireTime("Period indicator selected"),
			DistinctRoles(),
			ColumnsPresent(),
			NumericTarget("Outcome is numeric"),
			NumericFeatures("Covariates are numeric"),
			TwoGroups("Treatment is binary"),
			TwoPeriods("Period is binary"),
			DesignCells(),
			MinSampleSize(20, 50),
			ClusterCount(20),
			MissingValues(),
		)
	}
	return rules
}
