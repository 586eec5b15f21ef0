package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title string `json:"title" validate:"required,notblank"`
	Type  string `json:"type" validate:"required,oneof=photo signature"`
}

func TestValidate(t *testing.T) {
	assert.Nil(t, Validate(&sample{Title: "Install", Type: "photo"}))

	errs := Validate(&sample{Title: "   ", Type: "video"})
	assert.Equal(t, "notblank", errs["title"])
	assert.Equal(t, "oneof", errs["type"])
}
