package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	BcryptCost = bcrypt.MinCost
	defer func() { BcryptCost = 12 }()

	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, CheckPassword(hash, "s3cret!"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestGenerateTemporaryPassword(t *testing.T) {
	for _, length := range []int{0, 8, 12, 20} {
		pw, err := GenerateTemporaryPassword(length)
		require.NoError(t, err)

		want := length
		if want < MinTemporaryPasswordLength {
			want = MinTemporaryPasswordLength
		}
		assert.Len(t, pw, want)
		assert.True(t, strings.ContainsAny(pw, lowerChars), "lowercase in %q", pw)
		assert.True(t, strings.ContainsAny(pw, upperChars), "uppercase in %q", pw)
		assert.True(t, strings.ContainsAny(pw, digitChars), "digit in %q", pw)
		assert.True(t, strings.ContainsAny(pw, symbolChars), "symbol in %q", pw)
		for _, r := range pw {
			assert.True(t, strings.ContainsRune(allChars, r), "unexpected %q", r)
		}
	}
}

func TestGenerateTemporaryPassword_NoFixedClassPositions(t *testing.T) {
	// With a fixed class order the first character would always be lowercase.
	sawNonLowerFirst := false
	for i := 0; i < 200 && !sawNonLowerFirst; i++ {
		pw, err := GenerateTemporaryPassword(12)
		require.NoError(t, err)
		sawNonLowerFirst = !strings.ContainsRune(lowerChars, rune(pw[0]))
	}
	assert.True(t, sawNonLowerFirst)
}

func TestHashToken(t *testing.T) {
	a := HashToken("abc")
	assert.Len(t, a, 64)
	assert.Equal(t, a, HashToken("abc"))
	assert.NotEqual(t, a, HashToken("abd"))

	tok, err := GenerateOpaqueToken(32)
	require.NoError(t, err)
	assert.Len(t, tok, 43)
}
