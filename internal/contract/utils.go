package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Color variables for console output.
var (
	PodiumColor   = color.New(color.FgYellow, color.Bold) // top three finishers
	PointsColor   = color.New(color.FgGreen)              // finishers that score
	ChampionColor = color.New(color.FgMagenta, color.Bold)
	MutedColor    = color.New(color.FgHiBlack)
)

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Logger returns the shared logger used by every package.
func Logger() *logrus.Logger {
	return logger
}

// SetVerbose switches debug logging on or off.
func SetVerbose(verbose bool) {
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
		return
	}
	logger.SetLevel(logrus.InfoLevel)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	logger.WithError(err).Error("Fatal " + msg)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	logger.WithError(err).Warn(msg)
}

// LogInfo logs an informational message with optional structured fields.
func LogInfo(msg string, fields logrus.Fields) {
	logger.WithFields(fields).Info(msg)
}

// LogDebug logs a message only shown with --verbose.
func LogDebug(msg string, fields logrus.Fields) {
	logger.WithFields(fields).Debug(msg)
}

// GetPositionLabel returns the plain position label, e.g. "P1".
func GetPositionLabel(position int) string {
	return fmt.Sprintf("P%d", position)
}

// GetColorPosition returns a colored position label for console output.
// Podium places and points finishes stand out from the rest of the field.
func GetColorPosition(position, points int) string {
	text := GetPositionLabel(position)
	switch {
	case position <= 3:
		return PodiumColor.Sprint(text)
	case points > 0:
		return PointsColor.Sprint(text)
	default:
		return MutedColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path means stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for lap cache storage.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".podium_cache.db"
	}
	return filepath.Join(homeDir, ".podium_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for prediction run history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".podium_history.db"
	}
	return filepath.Join(homeDir, ".podium_history.db")
}

// TruncateName truncates a display name to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so at least one character of content survives.
func TruncateName(name string, maxWidth int) string {
	runes := []rune(name)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return name
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
