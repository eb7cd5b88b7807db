package logger

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// WithContext extracts request context for logging
func WithContext(c *gin.Context) Fields {
	fields := Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}

	if id, exists := c.Get("arrangement_id"); exists {
		fields["arrangement_id"] = id
	}

	return fields
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	logWithBreadcrumb(sentry.LevelInfo, "INFO", msg, fields)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	logWithBreadcrumb(sentry.LevelWarning, "WARN", msg, fields)
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	logWithBreadcrumb(sentry.LevelDebug, "DEBUG", msg, fields)
}

// Error logs an error message with structured fields and sends it to Sentry.
// A nil err is reported as a message event.
func Error(msg string, err error, fields Fields) {
	if err == nil {
		log.Printf("[ERROR] %s %v", msg, formatFields(fields))
	} else {
		log.Printf("[ERROR] %s: %v %v", msg, err, formatFields(fields))
	}

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelError)
		tagScope(scope, fields)
		if err == nil {
			hub.CaptureMessage(msg)
			return
		}
		hub.CaptureException(err)
	})
}

// LogRequest logs a finished HTTP request at a level chosen by its status code
func LogRequest(c *gin.Context, duration time.Duration, statusCode int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["duration_ms"] = duration.Milliseconds()
	fields["status_code"] = statusCode
	fields["request_id"] = c.GetString("request_id")
	fields["method"] = c.Request.Method
	fields["path"] = c.Request.URL.Path
	fields["client_ip"] = c.ClientIP()

	switch {
	case statusCode >= http.StatusInternalServerError:
		Error("Request failed with server error", nil, fields)
	case statusCode >= http.StatusBadRequest:
		Warn("Request failed with client error", fields)
	default:
		Info("Request completed", fields)
	}
}

// LogArrangement logs a finished arrangement run and records it as a Sentry span
func LogArrangement(ctx context.Context, model string, duration time.Duration, noteCounts map[int]int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	total := 0
	for _, n := range noteCounts {
		total += n
	}
	fields["model"] = model
	fields["duration_ms"] = duration.Milliseconds()
	fields["notes"] = total

	Info("Arrangement completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "arrangement.build")
		span.Description = model
		span.SetData("note_counts", noteCounts)
		span.Finish()
	}
}

func logWithBreadcrumb(level sentry.Level, tag, msg string, fields Fields) {
	log.Printf("[%s] %s %v", tag, msg, formatFields(fields))

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     string(level),
			Category: "log",
			Message:  msg,
			Data:     convertFieldsToMap(fields),
			Level:    level,
		}, nil)
	}
}

// tagScope attaches fields as context and promotes the filterable ones to tags
func tagScope(scope *sentry.Scope, fields Fields) {
	for key, value := range fields {
		scope.SetContext(key, map[string]interface{}{
			"value": value,
		})
	}
	for _, key := range []string{"request_id", "model", "route"} {
		if v, ok := fields[key].(string); ok {
			scope.SetTag(key, v)
		}
	}
}

// formatFields converts Fields to a readable string with sorted keys
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("{")
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteString("}")
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case float64:
		return fmt.Sprintf("%.2f", val)
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func convertFieldsToMap(fields Fields) map[string]interface{} {
	result := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		result[k] = v
	}
	return result
}
