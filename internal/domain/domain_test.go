package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeCode(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "upper-cases", in: "abcd", want: "ABCD"},
		{name: "trims", in: "  CUP25 ", want: "CUP25"},
		{name: "sixteen chars", in: "ABCDEFGHIJKLMNOP", want: "ABCDEFGHIJKLMNOP"},
		{name: "empty", in: "", wantErr: true},
		{name: "too long", in: "ABCDEFGHIJKLMNOPQ", wantErr: true},
		{name: "punctuation", in: "AB-CD", wantErr: true},
		{name: "non ascii", in: "ÄBC", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeCode(tc.in, MaxCodeLen)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestIdentity(t *testing.T) {
	assert.Equal(t, "default", Host().Identifier())
	assert.Equal(t, "default", Viewer().Identifier())
	assert.Equal(t, "7", Lane(7).Identifier())
	assert.Equal(t, RoleClient, Lane(7).Role())

	n, ok := Lane(7).LaneNumber()
	assert.True(t, ok)
	assert.Equal(t, 7, n)

	_, ok = Host().LaneNumber()
	assert.False(t, ok)

	assert.False(t, Identity{}.Valid())
	assert.False(t, Lane(0).Valid())
	assert.True(t, Lane(1).Valid())

	id, err := IdentityFromSession(RoleClient, "12")
	require.NoError(t, err)
	assert.Equal(t, Lane(12), id)

	_, err = IdentityFromSession(RoleClient, "x")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAllowsSelfRegistration(t *testing.T) {
	assert.True(t, AllowsSelfRegistration("", false))
	assert.True(t, AllowsSelfRegistration("true", true))
	assert.True(t, AllowsSelfRegistration("yes", true))
	assert.False(t, AllowsSelfRegistration("false", true))
	assert.False(t, AllowsSelfRegistration("0", true))
	assert.False(t, AllowsSelfRegistration("", true))
}

func TestLaneShift(t *testing.T) {
	p := Participant{LaneNumber: 3, Shift: "B"}
	assert.Equal(t, "3B", p.LaneShift())
}
