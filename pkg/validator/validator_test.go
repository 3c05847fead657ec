package validator

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	Name   string `json:"name" validate:"required,min=2"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone" validate:"required,phone"`
	Method string `json:"method" validate:"required,oneof=cash transfer"`
	Count  int    `validate:"gte=0,lte=10"`
}

func validForm() contactForm {
	return contactForm{Name: "Ana", Email: "ana@example.com", Phone: "+54 11 5555", Method: "cash"}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	return valErr.Fields()
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	f := validForm()
	f.Name = ""

	fields := fieldsOf(t, Validate(f))
	assert.Equal(t, "is required", fields["name"])
	assert.NotContains(t, fields, "Name")
}

func TestValidate_FallsBackToGoNameWithoutJSONTag(t *testing.T) {
	f := validForm()
	f.Count = 11

	fields := fieldsOf(t, Validate(f))
	assert.Contains(t, fields["Count"], "10")
}

func TestValidate_Phone(t *testing.T) {
	tests := []struct {
		phone string
		ok    bool
	}{
		{"12345678", true},
		{"+54 9 11 5555", true},
		{"123456789012345", true},
		{"1234567", false},
		{"1234567890123456", false},
		{"555-1234-99", false},
		{"phone-number", false},
	}

	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			f := validForm()
			f.Phone = tt.phone
			err := Validate(f)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, "must be 8 to 15 digits, spaces or '+'", fieldsOf(t, err)["phone"])
		})
	}
}

func TestValidate_MultipleFieldErrors(t *testing.T) {
	fields := fieldsOf(t, Validate(contactForm{Name: "A", Email: "nope", Phone: "1", Method: "card"}))

	assert.Equal(t, "must be at least 2 characters", fields["name"])
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Contains(t, fields, "phone")
	assert.Equal(t, "must be one of: cash transfer", fields["method"])
}

func TestValidationError_ErrorString(t *testing.T) {
	err := Validate(contactForm{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'name'")
	assert.Contains(t, err.Error(), "is required")
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"name":"Ana","email":"ana@example.com","phone":"12345678","method":"transfer"}`
	r := httptest.NewRequest("POST", "/", strings.NewReader(body))

	var f contactForm
	require.NoError(t, DecodeAndValidate(r, &f))
	assert.Equal(t, "transfer", f.Method)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader("{"))

	var f contactForm
	err := DecodeAndValidate(r, &f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
