package schema

import "fmt"

// ConfigurationError reports event tables that cannot be used as given,
// such as an entrant without a team or a team without a points total.
type ConfigurationError struct {
	Msg string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Msg, e.Err)
	}
	return "configuration error: " + e.Msg
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// DataUnavailableError reports that historical session data could not be retrieved.
type DataUnavailableError struct {
	Session SessionRef
	Err     error
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("historical data unavailable for %d %s %s: %v", e.Session.Season, e.Session.Event, e.Session.Session, e.Err)
}

func (e *DataUnavailableError) Unwrap() error { return e.Err }

// DataError reports model input that is missing or non-finite.
type DataError struct {
	Msg string
}

func (e *DataError) Error() string {
	return "data error: " + e.Msg
}

// NewConfigurationError creates a ConfigurationError from a format string.
func NewConfigurationError(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// NewDataError creates a DataError from a format string.
func NewDataError(format string, args ...any) error {
	return &DataError{Msg: fmt.Sprintf(format, args...)}
}
