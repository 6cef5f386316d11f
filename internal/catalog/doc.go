// Package catalog describes the configured serverless functions and renders
// their triggers for display.
//
// Trigger is a tagged union over Type:
//   - timer: Schedule (five-field crontab)
//   - http: Method, Endpoint
//   - unity_table: CheckInterval (seconds), optional TableConfig
//
// The formatting helpers (Classify, FormatSchedule, TableName, Details) are
// pure and never fail; unknown tags and malformed schedules degrade to a
// fallback instead of an error.
package catalog
