package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileCaptures(t *testing.T) {
	c, err := Compile("profile-{id}")
	require.NoError(t, err)
	require.Equal(t, []string{"id"}, c.Params)

	params, ok := c.Match("profile-42")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"id": "42"}, params)

	params, ok = c.Match("profile-4x")
	require.True(t, ok)
	assert.Equal(t, "4x", params["id"])
}

func TestCompileRejectsNonAlphanumeric(t *testing.T) {
	c, err := Compile("profile-{id}")
	require.NoError(t, err)

	_, ok := c.Match("profile-4 2")
	assert.False(t, ok, "space inside a capture must not match")

	_, ok = c.Match("profile-")
	assert.False(t, ok, "empty capture must not match")
}

func TestCompileAnchoring(t *testing.T) {
	c, err := Compile("page-{n}")
	require.NoError(t, err)

	_, ok := c.Match("xpage-3")
	assert.False(t, ok, "leading characters must not match")

	_, ok = c.Match("page-3-extra")
	assert.False(t, ok, "trailing characters must not match")
}

func TestCompileMultipleParams(t *testing.T) {
	c, err := Compile("vote-{poll}-{choice}")
	require.NoError(t, err)
	require.Equal(t, []string{"poll", "choice"}, c.Params)

	params, ok := c.Match("vote-weather-sunny")
	require.True(t, ok)
	assert.Equal(t, "weather", params["poll"])
	assert.Equal(t, "sunny", params["choice"])
}

func TestCompileLiteralOnly(t *testing.T) {
	c, err := Compile("queue_join")
	require.NoError(t, err)
	assert.Empty(t, c.Params)

	params, ok := c.Match("queue_join")
	require.True(t, ok)
	assert.Empty(t, params)

	_, ok = c.Match("queue_join2")
	assert.False(t, ok)
}

func TestCompileEscapesRegexMeta(t *testing.T) {
	c, err := Compile("menu.{item}+extra")
	require.NoError(t, err)

	_, ok := c.Match("menuX{item}Yextra")
	assert.False(t, ok)

	params, ok := c.Match("menu.abc+extra")
	require.True(t, ok)
	assert.Equal(t, "abc", params["item"])
}

func TestCompileInvalidParamName(t *testing.T) {
	for _, p := range []string{"bad-{}", "bad-{a b}", "bad-{a-b}", "bad-{a.b}"} {
		_, err := Compile(p)
		assert.ErrorIs(t, err, ErrInvalidParamName, p)
	}
}

func TestCompileUnclosedBraceIsLiteral(t *testing.T) {
	c, err := Compile("open-{rest")
	require.NoError(t, err)
	assert.Empty(t, c.Params)

	_, ok := c.Match("open-{rest")
	assert.True(t, ok)
}

func TestNoCrossMatching(t *testing.T) {
	a := MustCompile("ban-{user}")
	b := MustCompile("kick-{user}")

	_, ok := a.Match("kick-42")
	assert.False(t, ok)
	_, ok = b.Match("ban-42")
	assert.False(t, ok)
}
