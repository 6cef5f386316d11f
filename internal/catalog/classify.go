package catalog

import (
	"fmt"
	"strconv"
	"strings"
)

// NotAvailable is rendered in place of absent optional fields.
const NotAvailable = "N/A"

// Category is the badge a trigger is displayed with.
type Category string

const (
	CategoryTimer      Category = "timer"
	CategoryHTTP       Category = "http"
	CategoryUnityTable Category = "unity_table"
	CategoryUnknown    Category = "unknown"
)

// Label returns the badge text.
func (c Category) Label() string {
	switch c {
	case CategoryTimer:
		return "Timer"
	case CategoryHTTP:
		return "HTTP"
	case CategoryUnityTable:
		return "Unity Table"
	default:
		return "Unknown"
	}
}

// Classify maps a trigger to its badge category. Unrecognized tags map to CategoryUnknown.
func Classify(t Trigger) Category {
	switch t.Type {
	case TriggerTimer:
		return CategoryTimer
	case TriggerHTTP:
		return CategoryHTTP
	case TriggerUnityTable:
		return CategoryUnityTable
	default:
		return CategoryUnknown
	}
}

// TableName returns "catalog.schema.name", or NotAvailable when the table config is absent.
func TableName(t Trigger) string {
	tc := t.TableConfig
	if tc == nil {
		return NotAvailable
	}
	return tc.Catalog + "." + tc.Schema + "." + tc.Name
}

// QuotedTableName returns the table name with each part backtick-quoted so
// names containing spaces survive in SQL. Empty when the table config is absent.
func QuotedTableName(t Trigger) string {
	tc := t.TableConfig
	if tc == nil {
		return ""
	}
	return quoteIdent(tc.Catalog) + "." + quoteIdent(tc.Schema) + "." + quoteIdent(tc.Name)
}

func quoteIdent(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// Detail is one label/value row of a trigger card.
type Detail struct {
	Label string
	Value string
}

// Details returns the rows shown for a trigger, in display order.
func Details(t Trigger) []Detail {
	switch Classify(t) {
	case CategoryTimer:
		return []Detail{
			{Label: "Schedule", Value: FormatSchedule(orNA(t.Schedule))},
			{Label: "Cron", Value: orNA(t.Schedule)},
		}
	case CategoryHTTP:
		return []Detail{
			{Label: "Method", Value: orNA(strings.ToUpper(t.Method))},
			{Label: "Endpoint", Value: orNA(t.Endpoint)},
		}
	case CategoryUnityTable:
		interval := NotAvailable
		if t.CheckInterval > 0 {
			interval = fmt.Sprintf("%ds", t.CheckInterval)
		}
		return []Detail{
			{Label: "Table", Value: TableName(t)},
			{Label: "Check interval", Value: interval},
		}
	default:
		return []Detail{
			{Label: "Type", Value: orNA(t.Type)},
		}
	}
}

func orNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// Summary renders the trigger as a single line for tables.
func Summary(t Trigger) string {
	switch Classify(t) {
	case CategoryTimer:
		return FormatSchedule(orNA(t.Schedule))
	case CategoryHTTP:
		return orNA(strings.ToUpper(t.Method)) + " " + orNA(t.Endpoint)
	case CategoryUnityTable:
		s := TableName(t)
		if t.CheckInterval > 0 {
			s += " every " + strconv.Itoa(t.CheckInterval) + "s"
		}
		return s
	default:
		return NotAvailable
	}
}
