package ifcguid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromUUIDBoundaries(t *testing.T) {
	assert.Equal(t, strings.Repeat("0", Length), FromUUID(uuid.Nil))

	max := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")
	assert.Equal(t, "3"+strings.Repeat("$", Length-1), FromUUID(max))
}

func TestRoundTrip(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := uuid.New()
		guid := FromUUID(id)
		require.Len(t, guid, Length)

		back, err := ToUUID(guid)
		require.NoError(t, err)
		assert.Equal(t, id, back)
	}
}

func TestToUUIDRejects(t *testing.T) {
	for _, bad := range []string{
		"",
		"short",
		strings.Repeat("0", Length+1),
		"0000000000000000000-00",
		"4" + strings.Repeat("0", Length-1),
	} {
		_, err := ToUUID(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
		assert.False(t, Valid(bad), bad)
	}
	assert.True(t, Valid(New()))
}
