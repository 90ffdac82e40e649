package handlers

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidSkillLevel(t *testing.T) {
	v := validator.New()
	require.NoError(t, v.RegisterValidation("skilllevel", ValidSkillLevel))

	type payload struct {
		Level string `validate:"skilllevel"`
	}

	for _, level := range []string{"beginner", "intermediate", "advanced", "expert"} {
		assert.NoError(t, v.Struct(payload{Level: level}), level)
	}

	assert.Error(t, v.Struct(payload{Level: "grandmaster"}))
	assert.Error(t, v.Struct(payload{Level: ""}))
}

func TestReviewRequestBounds(t *testing.T) {
	// Gin reads the binding tag rather than validator's default.
	v := validator.New()
	v.SetTagName("binding")

	check := func(req CreateReviewRequest) error {
		return v.Struct(req)
	}

	ok := CreateReviewRequest{RevieweeID: 2, Rating: 5, Comment: "Great session, highly recommend!"}
	assert.NoError(t, check(ok))

	shortComment := ok
	shortComment.Comment = "short"
	assert.Error(t, check(shortComment), "comments under 10 characters are rejected")

	badRating := ok
	badRating.Rating = 6
	assert.Error(t, check(badRating))

	badRating.Rating = 0
	assert.Error(t, check(badRating))
}
