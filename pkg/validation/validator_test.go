package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type songInput struct {
	Title      string `json:"title" binding:"required" validate:"required"`
	Genre      string `json:"genre" validate:"genre"`
	Difficulty int    `json:"difficulty" validate:"difficulty"`
	Tier       string `json:"tier" validate:"omitempty,tier"`
	Password   string `json:"password" validate:"pwd"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestAliases(t *testing.T) {
	v := newValidator()

	ok := songInput{Title: "Evidências", Genre: "sertanejo", Difficulty: 3, Tier: "rare", Password: "12345678"}
	require.NoError(t, v.Struct(ok))

	bad := songInput{Genre: "jazz", Difficulty: 9, Tier: "mythic", Password: "short"}
	details := ToDetails(v.Struct(bad))

	assert.Equal(t, "is required", details["title"])
	assert.Equal(t, "must be one of: pop, rock, sertanejo, mpb, funk, rap, other", details["genre"])
	assert.Equal(t, "must be between 1 and 5", details["difficulty"])
	assert.Equal(t, "must be one of: basic, special, rare, legendary", details["tier"])
	assert.Equal(t, "must be 8 to 72 characters", details["password"])
}

func TestToDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ToDetails(nil))
	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(assert.AnError))
}
