package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeflow/internal/domain"
)

func TestDefaultCatalog(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	require.Len(t, catalog, 9)

	byName := make(map[string]domain.Transformation)
	for _, tr := range catalog {
		byName[tr.Name] = tr
	}

	// Every silver table reads bronze and writes silver.
	for _, name := range []string{
		"silver_customers", "silver_geolocation", "silver_order_items",
		"silver_order_payments", "silver_order_reviews", "silver_orders",
		"silver_products", "silver_sellers",
	} {
		tr, ok := byName[name]
		require.True(t, ok, "missing transformation %s", name)
		assert.True(t, strings.HasPrefix(tr.Target, "silver."), "%s target %s", name, tr.Target)
		assert.Contains(t, tr.SQL, "bronze.")
		assert.Empty(t, tr.DependsOn)
	}

	gold, ok := byName["gold_f_orders"]
	require.True(t, ok)
	assert.Equal(t, "gold.f_orders", gold.Target)
	assert.ElementsMatch(t, []string{
		"silver_orders", "silver_customers", "silver_order_items", "silver_order_payments",
	}, gold.DependsOn)
	assert.NotContains(t, gold.SQL, "bronze.")
}

func TestDefaultCatalog_GoldRunsLast(t *testing.T) {
	catalog, err := DefaultCatalog()
	require.NoError(t, err)

	levels, err := ResolveExecutionOrder(catalog)
	require.NoError(t, err)
	require.Len(t, levels, 2)
	assert.Len(t, levels[0], 8)
	assert.Equal(t, []string{"gold_f_orders"}, levels[1])
}

func TestParseCatalog_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "not yaml", yaml: "{{nope"},
		{name: "empty", yaml: "transformations: []"},
		{name: "missing target", yaml: "transformations:\n  - name: a\n    sql: SELECT 1"},
		{name: "missing sql", yaml: "transformations:\n  - name: a\n    target: silver.a"},
		{name: "unknown dep", yaml: "transformations:\n  - name: a\n    target: silver.a\n    sql: SELECT 1\n    depends_on: [ghost]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
