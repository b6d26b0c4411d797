package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeResult_MarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		want       string
	}{
		{name: "half", percentage: 50, want: "50.00"},
		{name: "rounded", percentage: 33.33, want: "33.33"},
		{name: "zero", percentage: 0, want: "0.00"},
		{name: "full", percentage: 100, want: "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := uuid.New()
			b, err := json.Marshal(GradeResult{ID: id, TotalQuestions: 2, TotalPoints: 2, Percentage: tt.percentage})
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(b, &got))
			assert.Equal(t, tt.want, got["percentage"])
			assert.Equal(t, id.String(), got["id"])
			assert.EqualValues(t, 2, got["totalPoints"])
			assert.Contains(t, got, "questionResults")
		})
	}
}
