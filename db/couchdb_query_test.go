package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMangoQuery_ToParams_Empty(t *testing.T) {
	q := MangoQuery{}
	assert.Empty(t, q.toParams())
}

func TestMangoQuery_ToParams_AllFields(t *testing.T) {
	q := MangoQuery{
		Fields: []string{"_id", "short_uri"},
		Sort:   []map[string]string{{"short_uri": "asc"}},
		Limit:  50,
		Skip:   10,
	}
	params := q.toParams()

	assert.Equal(t, []string{"_id", "short_uri"}, params["fields"])
	assert.Equal(t, []map[string]string{{"short_uri": "asc"}}, params["sort"])
	assert.Equal(t, 50, params["limit"])
	assert.Equal(t, 10, params["skip"])
}

func TestMangoQuery_ToParams_ZeroLimitAndSkipOmitted(t *testing.T) {
	q := MangoQuery{Fields: []string{"_id"}}
	params := q.toParams()

	_, hasLimit := params["limit"]
	_, hasSkip := params["skip"]
	assert.False(t, hasLimit)
	assert.False(t, hasSkip)
}
