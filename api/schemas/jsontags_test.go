package schemas_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xkilldash9x/snakepilot/api/schemas"
)

// TestStructJSONTags pins the wire names the decision service depends on.
func TestStructJSONTags(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name         string
		structRef    interface{}
		expectedTags map[string]string
	}{
		{
			name:      "Position",
			structRef: schemas.Position{},
			expectedTags: map[string]string{
				"X": "x",
				"Y": "y",
			},
		},
		{
			name:      "EntitySnapshot",
			structRef: schemas.EntitySnapshot{},
			expectedTags: map[string]string{
				"Angle":    "angle",
				"Speed":    "speed",
				"Boosted":  "boosted",
				"Segments": "parts",
			},
		},
		{
			name:      "SignalBundle",
			structRef: schemas.SignalBundle{},
			expectedTags: map[string]string{
				"Player":  "player",
				"Food":    "food",
				"Prey":    "prey",
				"Enemies": "enemies",
				"Score":   "score",
			},
		},
		{
			name:      "Action",
			structRef: schemas.Action{},
			expectedTags: map[string]string{
				"Angle": "angle",
				"Boost": "speedboost",
			},
		},
		{
			name:      "SessionRecord",
			structRef: schemas.SessionRecord{},
			expectedTags: map[string]string{
				"ID":         "id",
				"StartedAt":  "started_at",
				"EndedAt":    "ended_at",
				"FinalScore": "final_score",
				"Ticks":      "ticks",
				"Dispatched": "dispatched",
				"Dropped":    "dropped",
				"Failures":   "failures",
			},
		},
	}

	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			structType := reflect.TypeOf(tt.structRef)
			actualTags := make(map[string]string)

			// Embedded structs carry no tag and are skipped.
			for i := 0; i < structType.NumField(); i++ {
				field := structType.Field(i)
				if jsonTag := field.Tag.Get("json"); jsonTag != "" {
					actualTags[field.Name] = jsonTag
				}
			}

			assert.Equal(t, tt.expectedTags, actualTags, "JSON tags for struct %s do not match expectations", tt.name)
		})
	}
}
