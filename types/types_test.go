package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestJoinNameSkipsEmptyParts(t *testing.T) {
	assert.Equal(t, "Juan Dela Cruz", JoinName("Juan", nil, "Dela Cruz", nil))
	assert.Equal(t, "Juan Dela Cruz", JoinName("Juan", strPtr("  "), "Dela Cruz", strPtr("")))
	assert.Equal(t, "Juan Santos Dela Cruz Jr.", JoinName("Juan", strPtr("Santos"), "Dela Cruz", strPtr("Jr.")))
}

func TestDateJSON(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"1990-05-17"`), &d))
	assert.Equal(t, 1990, d.Year())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1990-05-17"`, string(out))

	var empty Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())
	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestDateAgeOn(t *testing.T) {
	d, err := ParseDate("2000-06-15")
	require.NoError(t, err)

	assert.Equal(t, 25, d.AgeOn(time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 26, d.AgeOn(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, Date{}.AgeOn(time.Now()))
}

func TestBusinessPermitActiveOn(t *testing.T) {
	until, err := ParseDate("2026-12-31")
	require.NoError(t, err)
	permit := BusinessPermit{ValidUntil: until}

	assert.True(t, permit.ActiveOn(time.Date(2026, 12, 31, 18, 0, 0, 0, time.UTC)))
	assert.False(t, permit.ActiveOn(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, BusinessPermit{}.ActiveOn(time.Now()))
}

func TestParseRecordType(t *testing.T) {
	rt, ok := ParseRecordType("RBI")
	assert.True(t, ok)
	assert.Equal(t, RecordInhabitant, rt)

	_, ok = ParseRecordType("problems")
	assert.False(t, ok)
}
