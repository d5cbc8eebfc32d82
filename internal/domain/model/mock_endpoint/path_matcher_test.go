package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPath(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		path       string
		matched    bool
		wantParams Params
	}{
		{
			name:       "exact literal match",
			pattern:    "/api/users",
			path:       "/api/users",
			matched:    true,
			wantParams: Params{},
		},
		{
			name:       "single param",
			pattern:    "/users/:id",
			path:       "/users/42",
			matched:    true,
			wantParams: Params{{Name: "id", Value: "42"}},
		},
		{
			name:    "segment count mismatch",
			pattern: "/users/:id",
			path:    "/users",
			matched: false,
		},
		{
			name:    "no wildcard suffix support",
			pattern: "/users/:id",
			path:    "/users/42/orders",
			matched: false,
		},
		{
			name:    "literal segment is case sensitive",
			pattern: "/Users/:id",
			path:    "/users/42",
			matched: false,
		},
		{
			name:    "multiple params in left-to-right order",
			pattern: "/users/:userId/orders/:orderId",
			path:    "/users/7/orders/1001",
			matched: true,
			wantParams: Params{
				{Name: "userId", Value: "7"},
				{Name: "orderId", Value: "1001"},
			},
		},
		{
			name:       "param binds raw segment text",
			pattern:    "/files/:name",
			path:       "/files/a%20b",
			matched:    true,
			wantParams: Params{{Name: "name", Value: "a%20b"}},
		},
		{
			name:       "trailing slash tolerated",
			pattern:    "/ping",
			path:       "/ping/",
			matched:    true,
			wantParams: Params{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchPath(tt.pattern, tt.path)
			assert.Equal(t, tt.matched, got.Matched)
			if tt.matched {
				assert.Equal(t, tt.wantParams, got.Params)
			}
		})
	}
}
