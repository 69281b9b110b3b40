package billing

// FeatureID identifies a metered feature in the billing provider.
type FeatureID string

// Metered features known to this service. The IDs must match the feature
// configuration in the billing provider exactly.
const (
	FeatureMessages     FeatureID = "messages"
	FeatureAnalysis     FeatureID = "analysis"
	FeatureReportExport FeatureID = "report-export"
)

// AllFeatures lists every metered feature in a stable order.
func AllFeatures() []FeatureID {
	return []FeatureID{
		FeatureMessages,
		FeatureAnalysis,
		FeatureReportExport,
	}
}

// IsValid checks whether the feature ID is one this service meters
func (f FeatureID) IsValid() bool {
	switch f {
	case FeatureMessages, FeatureAnalysis, FeatureReportExport:
		return true
	default:
		return false
	}
}

// String returns the feature ID as a string
func (f FeatureID) String() string {
	return string(f)
}

// DisplayName returns a human-readable name for the feature
func (f FeatureID) DisplayName() string {
	switch f {
	case FeatureMessages:
		return "AI Messages"
	case FeatureAnalysis:
		return "Brand Analyses"
	case FeatureReportExport:
		return "Report Exports"
	default:
		return string(f)
	}
}
