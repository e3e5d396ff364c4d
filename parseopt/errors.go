package parseopt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pwkeep/pwkeep/internal/fuzzy"
)

// ErrorType represents the categories of parse failures.
// These categories drive suggestion logic, usage display and exit-code
// mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeUnknownOption   ErrorType = "unknown_option"
	ErrorTypeUnknownSwitch   ErrorType = "unknown_switch"
	ErrorTypeNonOption       ErrorType = "non_option"
	ErrorTypeAmbiguous       ErrorType = "ambiguous_option"
	ErrorTypeMissingValue    ErrorType = "missing_value"
	ErrorTypeValueForbidden  ErrorType = "value_forbidden"
	ErrorTypeInvalidNumeric  ErrorType = "invalid_numeric"
	ErrorTypeInvalidPath     ErrorType = "invalid_path"
	ErrorTypeConflictingMode ErrorType = "conflicting_mode"
	ErrorTypeDashTypo        ErrorType = "dash_typo"
	// ErrorTypeUsage is raised by the caller after parsing, when the
	// options are well formed but do not make a valid invocation.
	ErrorTypeUsage ErrorType = "usage"
)

// ErrHelpShown is returned by Parse after usage was printed on request.
var ErrHelpShown = errors.New("help shown")

// ParseError is a recoverable parse failure. Message is the complete
// human-readable diagnostic.
type ParseError struct {
	Type        ErrorType
	Message     string
	Option      string // option name as given, without dashes
	Other       string // second option for ambiguity and conflicts
	Value       string
	Suggestions []string
	Cause       error
}

func (e *ParseError) Error() string {
	return e.Message
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new ParseError with the given type and message
func NewParseError(errType ErrorType, message string) *ParseError {
	return &ParseError{
		Type:    errType,
		Message: message,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// FatalError is an unrecoverable failure, such as a number that does not fit
// its destination. The usage text is never printed for it.
type FatalError struct {
	Message string
	Cause   error
}

func (e *FatalError) Error() string {
	return e.Message
}

func (e *FatalError) Unwrap() error {
	return e.Cause
}

// ErrorHandler post-processes parse errors before they are reported: it adds
// fuzzy "did you mean" suggestions and decides whether usage is shown.
type ErrorHandler struct {
	suggestOptions bool
	maxDistance    int
	customHandlers map[ErrorType]func(*ParseError) *ParseError
	showUsage      map[ErrorType]bool
}

// NewErrorHandler creates a new error handler with defaults
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		suggestOptions: false,
		maxDistance:    2,
		customHandlers: make(map[ErrorType]func(*ParseError) *ParseError),
		showUsage: map[ErrorType]bool{
			ErrorTypeUnknownOption: true,
			ErrorTypeUnknownSwitch: true,
			ErrorTypeNonOption:     true,
			ErrorTypeAmbiguous:     true,
			ErrorTypeUsage:         true,
		},
	}
}

// SuggestOptions enables/disables long option suggestions for unknown options
func (eh *ErrorHandler) SuggestOptions(enabled bool) *ErrorHandler {
	eh.suggestOptions = enabled
	return eh
}

// MaxDistance sets the maximum edit distance for suggestions
func (eh *ErrorHandler) MaxDistance(distance int) *ErrorHandler {
	eh.maxDistance = distance
	return eh
}

// ShowUsage controls whether the usage text follows errors of the given type.
func (eh *ErrorHandler) ShowUsage(typ ErrorType, enabled bool) *ErrorHandler {
	eh.showUsage[typ] = enabled
	return eh
}

// Handle registers a custom handler for a specific error type
func (eh *ErrorHandler) Handle(typ ErrorType, handler func(*ParseError) *ParseError) *ErrorHandler {
	eh.customHandlers[typ] = handler
	return eh
}

// usageFor reports whether usage should be printed after err.
func (eh *ErrorHandler) usageFor(err *ParseError) bool {
	return eh.showUsage[err.Type]
}

// ProcessError applies custom handlers and suggestions to err.
func (eh *ErrorHandler) ProcessError(err *ParseError, options []Option) *ParseError {
	if handler, exists := eh.customHandlers[err.Type]; exists {
		err = handler(err)
	}

	switch err.Type { // exhaustive over ErrorType
	case ErrorTypeUnknownOption:
		if eh.suggestOptions {
			eh.addOptionSuggestions(err, options)
		}
	case ErrorTypeUnknownSwitch, ErrorTypeNonOption, ErrorTypeAmbiguous,
		ErrorTypeMissingValue, ErrorTypeValueForbidden, ErrorTypeInvalidNumeric,
		ErrorTypeInvalidPath, ErrorTypeConflictingMode, ErrorTypeDashTypo,
		ErrorTypeUsage:
		// No suggestions for these.
	}

	return err
}

func (eh *ErrorHandler) addOptionSuggestions(err *ParseError, options []Option) {
	name, _, _ := strings.Cut(err.Option, "=")
	names := make([]string, 0, len(options))
	for _, o := range visible(options) {
		if o.Kind == KindGroup || o.Long == "" || o.has(FlagHidden) {
			continue
		}
		names = append(names, o.Long)
	}
	for _, s := range fuzzy.FindSuggestions(name, names, eh.maxDistance, 3) {
		_ = err.WithSuggestion(fmt.Sprintf("did you mean '--%s'?", s))
	}
}
