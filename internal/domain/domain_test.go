package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}
	got, err := ParseRole("instructor")
	require.NoError(t, err)
	assert.Equal(t, RoleInstructor, got)

	_, err = ParseRole("root")
	assert.Error(t, err)
}

func TestRole_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Role Role `json:"role"`
	}{RoleAdmin})
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"Admin"}`, string(b))

	var out struct {
		Role Role `json:"role"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"role":"User"}`), &out))
	assert.Equal(t, RoleUser, out.Role)

	assert.Error(t, json.Unmarshal([]byte(`{"role":"Guest"}`), &out))
}

func TestRole_SQL(t *testing.T) {
	v, err := RoleInstructor.Value()
	require.NoError(t, err)
	assert.Equal(t, "Instructor", v)

	var r Role
	require.NoError(t, r.Scan([]byte("Admin")))
	assert.Equal(t, RoleAdmin, r)
	assert.Error(t, r.Scan(int64(3)))

	_, err = Role(0).Value()
	assert.Error(t, err)
}

func TestError_IsByKind(t *testing.T) {
	err := fmt.Errorf("get course: %w", NotFound("course not found"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrForbidden)
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "get course: course not found", err.Error())

	assert.ErrorIs(t, ErrEmailTaken, ErrConstraint)
	assert.Equal(t, KindUnhandled, KindOf(errors.New("boom")))
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("UNIQUE constraint failed")
	err := Constraint("duplicate", cause)
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, StateAbsent, StateOf(nil))
	assert.Equal(t, StateActive, StateOf(&Enrollment{IsActive: true}))
	assert.Equal(t, StateInactive, StateOf(&Enrollment{IsActive: false}))
}
