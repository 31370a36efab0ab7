package logging

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrorCategory says which part of the bot an error came from
type ErrorCategory string

const (
	ErrorCategoryCapture   ErrorCategory = "capture"   // Screen grabs
	ErrorCategoryInput     ErrorCategory = "input"     // Key and mouse injection
	ErrorCategoryTemplates ErrorCategory = "templates" // Reference images
	ErrorCategorySession   ErrorCategory = "session"   // Stalls and other session failures
	ErrorCategoryConfig    ErrorCategory = "config"
	ErrorCategoryDatabase  ErrorCategory = "database"
	ErrorCategorySystem    ErrorCategory = "system"
)

// ErrorSeverity picks the log level of a report
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// maxReports bounds the history shown in the progress window
const maxReports = 50

// ErrorReport is one reported failure
type ErrorReport struct {
	Timestamp time.Time
	Category  ErrorCategory
	Severity  ErrorSeverity
	Component string
	Message   string
	Error     error
}

// Recoverable is false for critical reports, which end the run
func (r *ErrorReport) Recoverable() bool {
	return r.Severity != ErrorSeverityCritical
}

// String formats the report as one line, e.g. "15:04:05 input: Key press failed: port closed"
func (r *ErrorReport) String() string {
	line := fmt.Sprintf("%s %s: %s", r.Timestamp.Local().Format("15:04:05"), r.Category, r.Message)
	if r.Error != nil {
		line += ": " + r.Error.Error()
	}
	return line
}

// ErrorReporter logs failures and keeps the most recent ones for display
type ErrorReporter struct {
	logger *Logger

	mu      sync.RWMutex
	reports []*ErrorReport
	counts  map[ErrorCategory]int
}

// NewErrorReporter creates a reporter logging under the "ErrorReporter" component
func NewErrorReporter() *ErrorReporter {
	return &ErrorReporter{
		logger: NewLogger("ErrorReporter"),
		counts: make(map[ErrorCategory]int),
	}
}

// SetLogger replaces the logger
func (er *ErrorReporter) SetLogger(logger *Logger) {
	er.logger = logger
}

// Report logs report at its severity and stores it
func (er *ErrorReporter) Report(report *ErrorReport) {
	if report.Timestamp.IsZero() {
		report.Timestamp = time.Now()
	}

	fields := map[string]interface{}{
		"category":  string(report.Category),
		"component": report.Component,
	}
	switch report.Severity {
	case ErrorSeverityCritical:
		er.logger.FatalWithContext(report.Message, report.Error, fields)
	case ErrorSeverityHigh:
		er.logger.ErrorWithContext(report.Message, report.Error, fields)
	case ErrorSeverityMedium:
		if report.Error != nil {
			fields["error"] = report.Error.Error()
		}
		er.logger.WarnWithContext(report.Message, fields)
	default:
		er.logger.InfoWithContext(report.Message, fields)
	}

	er.mu.Lock()
	defer er.mu.Unlock()
	er.reports = append(er.reports, report)
	if len(er.reports) > maxReports {
		er.reports = er.reports[len(er.reports)-maxReports:]
	}
	er.counts[report.Category]++
}

// ReportError reports a failure the bot can continue past
func (er *ErrorReporter) ReportError(category ErrorCategory, severity ErrorSeverity, component, message string, err error) {
	er.Report(&ErrorReport{
		Category:  category,
		Severity:  severity,
		Component: component,
		Message:   message,
		Error:     err,
	})
}

// ReportCriticalError reports a failure that stops the bot
func (er *ErrorReporter) ReportCriticalError(category ErrorCategory, component, message string, err error) {
	er.ReportError(category, ErrorSeverityCritical, component, message, err)
}

// GetRecentErrors returns up to n of the newest reports, oldest first
func (er *ErrorReporter) GetRecentErrors(n int) []*ErrorReport {
	er.mu.RLock()
	defer er.mu.RUnlock()

	if n > len(er.reports) {
		n = len(er.reports)
	}
	if n <= 0 {
		return nil
	}
	return append([]*ErrorReport(nil), er.reports[len(er.reports)-n:]...)
}

// Summary counts every report since startup by category, e.g. "capture=2 input=1".
// It is empty when nothing was reported.
func (er *ErrorReporter) Summary() string {
	er.mu.RLock()
	defer er.mu.RUnlock()

	parts := make([]string, 0, len(er.counts))
	for category, n := range er.counts {
		parts = append(parts, fmt.Sprintf("%s=%d", category, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
