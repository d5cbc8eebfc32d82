package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchHeaders(t *testing.T) {
	tests := []struct {
		name     string
		required map[string]string
		actual   map[string]string
		want     bool
	}{
		{
			name:     "key is case insensitive",
			required: map[string]string{"X-Api-Key": "abc"},
			actual:   map[string]string{"x-api-key": "abc"},
			want:     true,
		},
		{
			name:     "value is case sensitive",
			required: map[string]string{"X-Api-Key": "abc"},
			actual:   map[string]string{"x-api-key": "ABC"},
			want:     false,
		},
		{
			name:     "missing header",
			required: map[string]string{"Authorization": "Bearer t"},
			actual:   map[string]string{"Content-Type": "application/json"},
			want:     false,
		},
		{
			name:     "empty required matches vacuously",
			required: map[string]string{},
			actual:   map[string]string{"Anything": "x"},
			want:     true,
		},
		{
			name: "subset of actual suffices",
			required: map[string]string{
				"X-Api-Key": "abc",
			},
			actual: map[string]string{
				"X-Api-Key":    "abc",
				"Content-Type": "application/json",
				"Accept":       "*/*",
			},
			want: true,
		},
		{
			name: "one mismatch fails the whole set",
			required: map[string]string{
				"X-Api-Key":    "abc",
				"Content-Type": "application/json",
			},
			actual: map[string]string{
				"X-Api-Key":    "abc",
				"Content-Type": "text/plain",
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchHeaders(tt.required, tt.actual))
		})
	}
}
