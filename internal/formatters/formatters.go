package formatters

import (
	"encoding/json"
	"fmt"
	"sort"

	"applytrack/internal/services"
	"applytrack/internal/session"
	"applytrack/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type names used as registry keys
const (
	TypeAny             = "any"
	TypeJobDescription  = "JobDescription"
	TypeResume          = "Resume"
	TypeCoverLetter     = "CoverLetter"
	TypeATSScore        = "ATSScore"
	TypeOptimization    = "OptimizationResult"
	TypeApplication     = "JobApplication"
	TypeApplicationList = "JobApplicationList"
	TypeDashboard       = "Dashboard"
	TypeAnalysisResult  = "AnalysisResult"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	for dataType, render := range renderers {
		registry.RegisterFormatter("text", dataType, &PageFormatter{dataType: dataType, style: textStyle, render: render})
		registry.RegisterFormatter("markdown", dataType, &PageFormatter{dataType: dataType, style: markdownStyle, render: render})
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.JobDescription, *types.JobDescription:
		return TypeJobDescription
	case types.Resume, *types.Resume:
		return TypeResume
	case types.CoverLetter, *types.CoverLetter:
		return TypeCoverLetter
	case types.ATSScore, *types.ATSScore:
		return TypeATSScore
	case services.OptimizationResult, *services.OptimizationResult:
		return TypeOptimization
	case types.JobApplication, *types.JobApplication:
		return TypeApplication
	case []types.JobApplication:
		return TypeApplicationList
	case session.Dashboard, *session.Dashboard:
		return TypeDashboard
	case session.AnalysisResult, *session.AnalysisResult:
		return TypeAnalysisResult
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// GlobalRegistry is the default formatter registry
var GlobalRegistry = NewFormatterRegistry()
