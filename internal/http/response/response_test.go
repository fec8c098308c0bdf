package response

import (
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOKWithData(t *testing.T) {
	data := map[string]string{"key": "value"}
	resp := OKWithData(data)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, data, resp.Data)
}

func TestError(t *testing.T) {
	resp := Error("something went wrong")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "something went wrong", resp.Error)
}

func TestUpsell(t *testing.T) {
	resp := Upsell("multi_pet", "preview_upsell")

	assert.Equal(t, StatusError, resp.Status)
	assert.Equal(t, "multi_pet", resp.Feature)
	assert.Equal(t, "preview_upsell", resp.Mode)
	assert.NotEmpty(t, resp.Error)
}

func TestValidationError(t *testing.T) {
	type TestStruct struct {
		Name    string  `validate:"required"`
		Trigger string  `validate:"oneof=foreground manual"`
		Weight  float64 `validate:"gt=0"`
	}

	err := validator.New().Struct(TestStruct{Trigger: "push"})
	require.Error(t, err)

	resp := ValidationError(err.(validator.ValidationErrors))

	assert.Equal(t, StatusError, resp.Status)
	assert.Contains(t, resp.Error, "field Name is a required field")
	assert.Contains(t, resp.Error, "field Trigger must be one of: foreground manual")
	assert.Contains(t, resp.Error, "field Weight is out of range")
}
