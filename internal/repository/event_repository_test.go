package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courtside/scorekeeper/internal/model"
)

func TestLatestUnreversedQueryWithoutMadeFilter(t *testing.T) {
	q, args := latestUnreversedQuery(7, 23, model.EventShot, nil)
	assert.NotContains(t, q, "$.made")
	assert.Equal(t, []any{uint64(7), uint64(23), model.EventShot}, args)
}

func TestLatestUnreversedQueryMadeFilterBindsJSONText(t *testing.T) {
	// The detail column holds a JSON boolean.  A Go bool parameter
	// reaches MySQL as an integer, which never compares equal to a JSON
	// boolean, so the filter must unquote the scalar and match text.
	for _, made := range []bool{true, false} {
		v := made
		q, args := latestUnreversedQuery(7, 23, model.EventShot, &v)
		assert.Contains(t, q, `detail->>'$.made' = ?`)
		require.Len(t, args, 4)
		if made {
			assert.Equal(t, "true", args[3])
		} else {
			assert.Equal(t, "false", args[3])
		}
	}
}
