package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		typ  string
		want Category
	}{
		{TriggerTimer, CategoryTimer},
		{TriggerHTTP, CategoryHTTP},
		{TriggerUnityTable, CategoryUnityTable},
		{"queue", CategoryUnknown},
		{"", CategoryUnknown},
		{"HTTP", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(Trigger{Type: tt.typ}))
		})
	}
}

func TestCategory_Label(t *testing.T) {
	assert.Equal(t, "Timer", CategoryTimer.Label())
	assert.Equal(t, "HTTP", CategoryHTTP.Label())
	assert.Equal(t, "Unity Table", CategoryUnityTable.Label())
	assert.Equal(t, "Unknown", Category("queue").Label())
}

func TestTableName(t *testing.T) {
	tr := Trigger{
		Type:        TriggerUnityTable,
		TableConfig: &TableConfig{Catalog: "main", Schema: "sales", Name: "orders"},
	}
	assert.Equal(t, "main.sales.orders", TableName(tr))
	assert.Equal(t, "`main`.`sales`.`orders`", QuotedTableName(tr))

	tr.TableConfig.Name = "daily orders"
	assert.Equal(t, "`main`.`sales`.`daily orders`", QuotedTableName(tr))

	tr.TableConfig.Name = "odd`name"
	assert.Equal(t, "`main`.`sales`.`odd``name`", QuotedTableName(tr))
}

func TestTableName_Absent(t *testing.T) {
	tr := Trigger{Type: TriggerUnityTable, CheckInterval: 60}

	assert.Equal(t, CategoryUnityTable, Classify(tr))
	assert.Equal(t, NotAvailable, TableName(tr))
	assert.Empty(t, QuotedTableName(tr))
	assert.Equal(t, []Detail{
		{Label: "Table", Value: "N/A"},
		{Label: "Check interval", Value: "60s"},
	}, Details(tr))
}

func TestDetails(t *testing.T) {
	tests := []struct {
		name    string
		trigger Trigger
		want    []Detail
	}{
		{
			name:    "timer",
			trigger: Trigger{Type: TriggerTimer, Schedule: "30 14 * * *"},
			want: []Detail{
				{Label: "Schedule", Value: "Every day at 2:30 PM"},
				{Label: "Cron", Value: "30 14 * * *"},
			},
		},
		{
			name:    "timer without schedule",
			trigger: Trigger{Type: TriggerTimer},
			want: []Detail{
				{Label: "Schedule", Value: "N/A"},
				{Label: "Cron", Value: "N/A"},
			},
		},
		{
			name:    "http",
			trigger: Trigger{Type: TriggerHTTP, Method: "post", Endpoint: "/api/v1/run"},
			want: []Detail{
				{Label: "Method", Value: "POST"},
				{Label: "Endpoint", Value: "/api/v1/run"},
			},
		},
		{
			name:    "http without endpoint",
			trigger: Trigger{Type: TriggerHTTP},
			want: []Detail{
				{Label: "Method", Value: "N/A"},
				{Label: "Endpoint", Value: "N/A"},
			},
		},
		{
			name: "unity table",
			trigger: Trigger{
				Type:          TriggerUnityTable,
				CheckInterval: 30,
				TableConfig:   &TableConfig{Catalog: "main", Schema: "default", Name: "events"},
			},
			want: []Detail{
				{Label: "Table", Value: "main.default.events"},
				{Label: "Check interval", Value: "30s"},
			},
		},
		{
			name:    "unknown",
			trigger: Trigger{Type: "queue"},
			want:    []Detail{{Label: "Type", Value: "queue"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Details(tt.trigger))
		})
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Every 5 minutes", Summary(Trigger{Type: TriggerTimer, Schedule: "*/5 * * * *"}))
	assert.Equal(t, "GET /hello", Summary(Trigger{Type: TriggerHTTP, Method: "get", Endpoint: "/hello"}))
	assert.Equal(t, "N/A every 60s", Summary(Trigger{Type: TriggerUnityTable, CheckInterval: 60}))
	assert.Equal(t, "N/A", Summary(Trigger{}))
}
