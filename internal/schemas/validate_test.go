package schemas

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hmhhmm/apex-insurance/internal/types"
)

func TestValidateJSON_ValidJSON(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "valid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	assert.NoError(t, err)
}

func TestValidateJSON_InvalidJSON_MissingField(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "invalid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_InvalidJSON_WrongType(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := filepath.Join("testdata", "type_mismatch.json")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok, "error should be ValidationError type")
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidateJSON_NonExistentSchema(t *testing.T) {
	schemaPath := "testdata/nonexistent_schema.json"
	jsonPath := filepath.Join("testdata", "valid_json.json")

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_NonExistentJSON(t *testing.T) {
	schemaPath := filepath.Join("testdata", "valid_schema.json")
	jsonPath := "testdata/nonexistent_json.json"

	err := ValidateJSON(schemaPath, jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	tmpDir := t.TempDir()
	malformedJSON := filepath.Join(tmpDir, "malformed.json")
	err := os.WriteFile(malformedJSON, []byte("{ invalid json }"), 0o644)
	require.NoError(t, err)

	schemaPath := filepath.Join("testdata", "valid_schema.json")

	valErr := ValidateJSON(schemaPath, malformedJSON)
	require.Error(t, valErr)
}

func TestValidateJSON_UserProfileSchema(t *testing.T) {
	schemaPath := ResolveSchemaPath("schemas/user_profile.schema.json")
	require.NotEmpty(t, schemaPath, "user profile schema should resolve from the package directory")

	tests := []struct {
		name      string
		content   string
		wantError bool
	}{
		{
			name:    "valid profile",
			content: `{"age": 30, "lifestyle": "Active", "exercise_frequency": "Often", "smoking_status": "No", "budget": 150, "selected_types": ["Health"]}`,
		},
		{
			name:      "missing required field",
			content:   `{"age": 30, "lifestyle": "Active", "exercise_frequency": "Often", "budget": 150, "selected_types": []}`,
			wantError: true,
		},
		{
			name:      "unknown lifestyle",
			content:   `{"age": 30, "lifestyle": "Couch", "exercise_frequency": "Often", "smoking_status": "No", "budget": 150, "selected_types": []}`,
			wantError: true,
		},
		{
			name:      "wrong type",
			content:   `{"age": "thirty", "lifestyle": "Active", "exercise_frequency": "Often", "smoking_status": "No", "budget": 150, "selected_types": []}`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonPath := filepath.Join(t.TempDir(), "profile.json")
			require.NoError(t, os.WriteFile(jsonPath, []byte(tt.content), 0o644))

			err := ValidateJSON(schemaPath, jsonPath)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var schemaErr *SchemaLoadError
			if errors.As(err, &schemaErr) {
				t.Fatalf("unexpected SchemaLoadError (schema loading failed): %v", schemaErr)
			}
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError, got %T", err)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func validBundle() *types.RecommendationBundle {
	return &types.RecommendationBundle{
		RiskValue: 35,
		TopRecommendations: []types.RecommendationResult{{
			PlanID:          "health-essential",
			PlanType:        "Health",
			MatchScore:      87,
			Reasoning:       "Strong match for your profile.",
			PriceAdjustment: 0,
			BasePrice:       49.99,
			AdjustedPrice:   49.99,
		}},
		OverallAnalysis: "Moderate risk.",
		RiskFactors:     []string{},
		SavingsTips:     []string{"Review your coverage annually."},
		NarrativeSource: types.NarrativeDeterministic,
	}
}

func TestValidateBundle(t *testing.T) {
	assert.NoError(t, ValidateBundle(validBundle()))
}

func TestValidateBundle_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(b *types.RecommendationBundle)
		field  string
	}{
		{"risk above range", func(b *types.RecommendationBundle) { b.RiskValue = 101 }, "risk_value"},
		{"score above cap", func(b *types.RecommendationBundle) { b.TopRecommendations[0].MatchScore = 100 }, "top_recommendations.0.match_score"},
		{"unknown adjustment", func(b *types.RecommendationBundle) { b.TopRecommendations[0].PriceAdjustment = 5 }, "top_recommendations.0.price_adjustment"},
		{"no tips", func(b *types.RecommendationBundle) { b.SavingsTips = []string{} }, "savings_tips"},
		{"nil risk factors", func(b *types.RecommendationBundle) { b.RiskFactors = nil }, "risk_factors"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBundle()
			tt.mutate(b)

			err := ValidateBundle(b)
			require.Error(t, err)
			validationErr, ok := err.(*ValidationError)
			require.True(t, ok, "error should be ValidationError, got %T", err)
			assert.Contains(t, validationErr.Error(), tt.field)
		})
	}
}

func TestValidateBundle_Nil(t *testing.T) {
	assert.Error(t, ValidateBundle(nil))
}

func TestValidateEmbedded_UnknownSchema(t *testing.T) {
	err := ValidateEmbedded("missing.schema.json", []byte(`{}`))
	var schemaErr *SchemaLoadError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "missing.schema.json", schemaErr.Path)
}

func TestValidateJSONString_Valid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"name": "test"}`

	err := ValidateJSONString(schemaContent, jsonContent)
	assert.NoError(t, err)
}

func TestValidateJSONString_Invalid(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["name"],
		"properties": {
			"name": {"type": "string"}
		}
	}`
	jsonContent := `{"age": 30}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "name")
	assert.Contains(t, errorMsg, "age")
}

func TestValidateJSON_NestedFieldValidation(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["person"],
		"properties": {
			"person": {
				"type": "object",
				"required": ["name"],
				"properties": {
					"name": {"type": "string"}
				}
			}
		}
	}`

	jsonContent := `{"person": {}}`

	err := ValidateJSONString(schemaContent, jsonContent)
	require.Error(t, err)

	validationErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Greater(t, len(validationErr.Errors), 0)
	// Check that the field path includes nested field
	found := false
	for _, fieldErr := range validationErr.Errors {
		if fieldErr.Field != "" {
			found = true
			break
		}
	}
	assert.True(t, found, "should include field path in error")
}

func TestValidateJSON_ArrayValidation(t *testing.T) {
	schemaContent := `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"properties": {
			"items": {
				"type": "array",
				"items": {"type": "string"},
				"minItems": 1
			}
		}
	}`

	err := ValidateJSONString(schemaContent, `{"items": []}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "items")
}
