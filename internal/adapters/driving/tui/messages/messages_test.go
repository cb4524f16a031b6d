package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/hybridq/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view ViewType
		want string
	}{
		{ViewMenu, "menu"},
		{ViewQuery, "query"},
		{ViewHistory, "history"},
		{ViewSchema, "schema"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.view.String())
		})
	}
}

func TestViewType_Ordering(t *testing.T) {
	assert.Equal(t, ViewType(0), ViewMenu)
	assert.Less(t, int(ViewQuery), int(ViewHelp))
}

func TestMessages_CarryPayloads(t *testing.T) {
	res := &domain.QueryResult{Query: "how many employees", Type: domain.QueryStructured}
	assert.Same(t, res, QueryCompleted{Result: res}.Result)

	err := errors.New("boom")
	assert.Equal(t, err, HistoryLoaded{Err: err}.Err)
	assert.Nil(t, SchemaLoaded{}.Catalog)
	assert.Equal(t, "q", QueryRequested{Query: "q"}.Query)
}
