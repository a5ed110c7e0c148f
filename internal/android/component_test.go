package android

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComponent(t *testing.T) {
	cases := []struct {
		id, pkg string
		want    Component
	}{
		{"com.example.app/com.example.app.MySvc", "", Component{"com.example.app", "com.example.app.MySvc"}},
		{"com.example.app/.MySvc", "", Component{"com.example.app", "com.example.app.MySvc"}},
		{"com.example.app.MySvc", "com.example.app", Component{"com.example.app", "com.example.app.MySvc"}},
		{".MySvc", "com.example.app", Component{"com.example.app", "com.example.app.MySvc"}},
		{"org.other.Svc", "com.example.app", Component{"com.example.app", "org.other.Svc"}},
	}
	for _, tc := range cases {
		got, err := ParseComponent(tc.id, tc.pkg)
		require.NoError(t, err, tc.id)
		assert.Equal(t, tc.want, got, tc.id)
	}

	for _, bad := range []string{"MySvc", "com.example.app/", "/.Svc", ""} {
		_, err := ParseComponent(bad, "")
		assert.Error(t, err, bad)
	}
}

func TestComponentStrings(t *testing.T) {
	c := Component{Package: "com.example.app", Class: "com.example.app.svc.Worker$Inner"}
	assert.Equal(t, "com.example.app/com.example.app.svc.Worker$Inner", c.FlattenToString())
	assert.Equal(t, "com.example.app/.svc.Worker$Inner", c.ShortString())
	assert.Equal(t, "Inner", c.SimpleName())

	other := Component{Package: "com.example.app", Class: "org.lib.Svc"}
	assert.Equal(t, other.FlattenToString(), other.ShortString())
	assert.Equal(t, "Svc", other.SimpleName())
}
