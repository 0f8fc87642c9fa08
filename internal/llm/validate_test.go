package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pointSchema = &Schema{
	Name: "test-point",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x": map[string]any{"type": "number"},
			"y": map[string]any{"type": "number"},
		},
		"required": []string{"x", "y"},
	},
}

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", ` {"a":1} `, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"one line", "```json{\"a\":1}```", `{"a":1}`},
		{"fence with json on first line", "```{\"a\":1}\n```", `{"a":1}`},
		{"text", "hello", "hello"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"valid", `{"x":1,"y":2}`, `{"x":1,"y":2}`, false},
		{"fenced", "```json\n{\"x\":1,\"y\":2}\n```", `{"x":1,"y":2}`, false},
		{"missing field", `{"x":1}`, "", true},
		{"wrong type", `{"x":"1","y":2}`, "", true},
		{"not json", `x=1`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateJSON(pointSchema, tt.in)
			if tt.wantErr {
				var inv *ErrInvalidResponse
				require.True(t, errors.As(err, &inv), "got %v", err)
				assert.Equal(t, tt.in, inv.Content)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMockValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{"x":1}`})
	_, err := mock.Generate(t.Context(), Request{Schema: pointSchema})
	var inv *ErrInvalidResponse
	assert.ErrorAs(t, err, &inv)

	_, err = mock.Generate(t.Context(), Request{})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)
}
