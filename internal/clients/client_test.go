package clients

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw     string
		want    Client
		wantErr bool
	}{
		{raw: "John Doe", want: Client{First: "john", Last: "doe"}},
		{raw: "  Jane   Marie\tSmith ", want: Client{First: "jane", Middle: "marie", Last: "smith"}},
		{raw: "JOHN DOE", want: Client{First: "john", Last: "doe"}},
		{raw: "Cher", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "a b c d", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClientStringRoundTrips(t *testing.T) {
	for _, raw := range []string{"john doe", "jane marie smith"} {
		c := MustParse(raw)
		assert.Equal(t, raw, c.String())
		again, err := Parse(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, again)
	}
}

func TestParseComposesDecomposedNames(t *testing.T) {
	composed := MustParse("José Núñez")
	decomposed := MustParse(norm.NFD.String("José Núñez"))
	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "josé núñez", decomposed.String())

	reg := NewRegistry()
	_, err := reg.Add("José Núñez")
	require.NoError(t, err)
	_, err = reg.Add(norm.NFD.String("José Núñez"))
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestClientToken(t *testing.T) {
	c := MustParse("jane marie smith")
	assert.Equal(t, "jane", c.Token(RoleFirst))
	assert.Equal(t, "marie", c.Token(RoleMiddle))
	assert.Equal(t, "smith", c.Token(RoleLast))
	assert.Empty(t, MustParse("john doe").Token(RoleMiddle))
	assert.True(t, Client{}.IsZero())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "John Doe", DisplayName(MustParse("john doe")))
	assert.Equal(t, "Jane Marie Smith", DisplayName(MustParse("JANE marie smith")))
	assert.Equal(t, "Ann-Marie Doe", DisplayName(MustParse("ann-marie doe")))
}

func TestBaseFolderName(t *testing.T) {
	tests := map[string]string{
		"john doe":         "Doe_John",
		"jane marie smith": "Smith_Marie_Jane",
		"ann/marie doe":    "Doe_Ann-Marie",
		"john. doe":        "Doe_John",
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, BaseFolderName(MustParse(raw)))
		})
	}
}

func TestNamesAreDeterministic(t *testing.T) {
	list := []Client{MustParse("john doe"), MustParse("jane marie smith"), MustParse("john. doe")}
	first := AssignFolderNames(list)
	for range 5 {
		assert.Equal(t, first, AssignFolderNames(list))
	}
	for _, c := range list {
		assert.Equal(t, DisplayName(c), DisplayName(c))
		assert.Equal(t, BaseFolderName(c), BaseFolderName(c))
	}
}

func TestAssignFolderNamesCollisions(t *testing.T) {
	john := MustParse("john doe")
	got := AssignFolderNames([]Client{john, john, MustParse("jane smith"), john})
	assert.Equal(t, []string{"Doe_John", "Doe_John_2", "Smith_Jane", "Doe_John_3"}, got)
}

func TestAssignFolderNamesSkipsTakenSuffix(t *testing.T) {
	// "john_2 doe" already owns Doe_John_2, so the second plain john doe
	// moves on to _3.
	got := AssignFolderNames([]Client{MustParse("john doe"), MustParse("john_2 doe"), MustParse("john. doe")})
	assert.Equal(t, []string{"Doe_John", "Doe_John_2", "Doe_John_3"}, got)
}

func TestAssignFolderNamesIgnoresCase(t *testing.T) {
	got := AssignFolderNames([]Client{MustParse("john doe"), MustParse("john d?oe")})
	require.Len(t, got, 2)
	assert.Equal(t, "Doe_John", got[0])
	assert.Equal(t, "doe_john_2", strings.ToLower(got[1]))
}

func TestAssignFolderNamesSanitisedCollision(t *testing.T) {
	got := AssignFolderNames([]Client{MustParse("ann/marie doe"), MustParse("ann-marie doe")})
	assert.Equal(t, []string{"Doe_Ann-Marie", "Doe_Ann-Marie_2"}, got)
}
