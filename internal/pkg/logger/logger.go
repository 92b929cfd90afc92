// internal/pkg/logger/logger.go
package logger

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/your-org/donate-storefront/internal/config"
)

// Categories group buffered entries for the admin log view
const (
	FieldCategory = "category"

	CategoryUserAction = "USER_ACTION"
	CategoryNavigation = "NAVIGATION"
	CategoryPurchase   = "PURCHASE"
	CategoryAPICall    = "API_CALL"
	CategoryValidation = "VALIDATION"
	CategoryAuth       = "AUTH"
	CategoryStore      = "STORE"
	CategoryHTTP       = "HTTP"
)

// New creates a logrus logger configured from the logging section
func New(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stdout)

	// Set log format based on config
	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.RFC3339,
		})
	}

	// Set log level
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// WithCategory returns an entry tagged with a log category
func WithCategory(log logrus.FieldLogger, category string) *logrus.Entry {
	return log.WithField(FieldCategory, category)
}

// APICall logs one upstream request, as an error when the status is 400 or above
func APICall(log logrus.FieldLogger, method, endpoint string, status int, duration time.Duration) {
	entry := WithCategory(log, CategoryAPICall).WithFields(logrus.Fields{
		"method":   method,
		"endpoint": endpoint,
		"status":   status,
		"duration": duration.Milliseconds(),
	})
	if status >= 400 || status == 0 {
		entry.Errorf("%s %s - %d", method, endpoint, status)
		return
	}
	entry.Infof("%s %s - %d", method, endpoint, status)
}

// UserAction logs something the user did
func UserAction(log logrus.FieldLogger, action string, fields logrus.Fields) {
	WithCategory(log, CategoryUserAction).WithFields(fields).Info(action)
}

// Purchase logs a placed order
func Purchase(log logrus.FieldLogger, orderNumber string, amount string) {
	WithCategory(log, CategoryPurchase).WithFields(logrus.Fields{
		"order_number": orderNumber,
		"amount":       amount,
	}).Infof("Purchase: %s for %s", orderNumber, amount)
}

// ValidationError logs rejected form input
func ValidationError(log logrus.FieldLogger, field string, errors []string) {
	WithCategory(log, CategoryValidation).WithFields(logrus.Fields{
		"field":  field,
		"errors": errors,
	}).Warnf("Validation error for field: %s", field)
}
