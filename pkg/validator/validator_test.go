package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type businessInput struct {
	Name     string   `json:"name" validate:"required,min=2,max=100"`
	Email    string   `json:"email" validate:"omitempty,email"`
	Lat      *float64 `json:"lat" validate:"omitempty,latitude"`
	Rating   int      `json:"rating" validate:"gte=0,lte=5"`
	Status   string   `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	Untagged string   `validate:"omitempty,uuid"`
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	lat := 32.08
	err := Validate(businessInput{Name: "Cafe Tel Aviv", Email: "cafe@example.com", Lat: &lat, Rating: 4})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	fields := fieldsOf(t, Validate(businessInput{}))
	assert.Equal(t, "is required", fields["name"])
	assert.NotContains(t, fields, "Name")
}

func TestValidate_FallsBackToStructFieldName(t *testing.T) {
	fields := fieldsOf(t, Validate(businessInput{Name: "ok", Untagged: "nope"}))
	assert.Equal(t, "must be a valid UUID", fields["Untagged"])
}

func TestValidate_Messages(t *testing.T) {
	lat := 123.0
	fields := fieldsOf(t, Validate(businessInput{
		Name:   "x",
		Email:  "not-an-email",
		Lat:    &lat,
		Rating: 7,
		Status: "deleted",
	}))

	assert.Equal(t, "must be at least 2 characters", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be a valid latitude", fields["lat"])
	assert.Contains(t, fields["rating"], "5")
	assert.Contains(t, fields["status"], "one of")
}

type hoursInput struct {
	Open  string `json:"open" validate:"required,clock"`
	Close string `json:"close" validate:"required,clock"`
}

func TestValidate_Clock(t *testing.T) {
	assert.NoError(t, Validate(hoursInput{Open: "08:30", Close: "23:59"}))

	fields := fieldsOf(t, Validate(hoursInput{Open: "8:30", Close: "24:00"}))
	assert.Equal(t, "must be a time in HH:MM format", fields["open"])
	assert.Equal(t, "must be a time in HH:MM format", fields["close"])
}

type numericInput struct {
	Limit int `json:"limit" validate:"min=1,max=100"`
}

func TestValidate_NumericMinMaxMessage(t *testing.T) {
	fields := fieldsOf(t, Validate(numericInput{Limit: 500}))
	assert.Equal(t, "must be at most 100", fields["limit"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(businessInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'name'")
	assert.Contains(t, err.Error(), "is required")
}
