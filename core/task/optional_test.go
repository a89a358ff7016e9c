package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptional_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantAssignee Optional[string]
		wantDue      Optional[time.Time]
	}{
		{name: "absent", body: `{}`},
		{
			name:         "explicit null",
			body:         `{"assigneeId":null,"dueDate":null}`,
			wantAssignee: OptionalNull[string](),
			wantDue:      OptionalNull[time.Time](),
		},
		{
			name:         "value",
			body:         `{"assigneeId":"stu","dueDate":"2026-01-02T00:00:00Z"}`,
			wantAssignee: OptionalFrom("stu"),
			wantDue:      OptionalFrom(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ut UpdateTask
			require.NoError(t, json.Unmarshal([]byte(tt.body), &ut))
			assert.Equal(t, tt.wantAssignee, ut.AssigneeID)
			assert.True(t, tt.wantDue.V.Equal(ut.DueDate.V))
			assert.Equal(t, tt.wantDue.Set, ut.DueDate.Set)
			assert.Equal(t, tt.wantDue.Valid, ut.DueDate.Valid)
		})
	}

	var ut UpdateTask
	assert.Error(t, json.Unmarshal([]byte(`{"assigneeId":12}`), &ut))
}

func TestOptional_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Optional[string] `json:"a"`
		B Optional[string] `json:"b"`
	}{A: OptionalFrom("x"), B: OptionalNull[string]()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"x","b":null}`, string(data))
}

func TestOptional_Ptr(t *testing.T) {
	assert.Nil(t, OptionalNull[string]().Ptr())
	assert.Nil(t, Optional[string]{}.Ptr())
	assert.Equal(t, "x", *OptionalFrom("x").Ptr())
}
