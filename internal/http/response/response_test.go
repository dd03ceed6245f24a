package response

import (
	"strings"
	"testing"

	"github.com/go-playground/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/phytocheck/internal/models"
)

func TestOKWithData(t *testing.T) {
	resp := OKWithData(map[string]any{"x": 1})
	assert.Equal(t, StatusOK, resp.Status)
	assert.Empty(t, resp.Error)
	assert.Equal(t, map[string]any{"x": 1}, resp.Data)
}

func TestError(t *testing.T) {
	assert.Equal(t, ErrorResponse{Status: StatusError, Error: "boom"}, Error("boom"))
}

func TestValidationError(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name string
		req  models.DeviceRequest
		want string
	}{
		{name: "пустой идентификатор", req: models.DeviceRequest{}, want: "field DeviceID is a required field"},
		{name: "слишком длинный идентификатор", req: models.DeviceRequest{DeviceID: strings.Repeat("a", 256)}, want: "field DeviceID must be at most 255 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			require.Error(t, err)
			errs, ok := err.(validator.ValidationErrors)
			require.True(t, ok)

			resp := ValidationError(errs)
			assert.Equal(t, StatusError, resp.Status)
			assert.Equal(t, tt.want, resp.Error)
		})
	}
}
