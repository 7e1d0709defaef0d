// internal/i18n/i18n_test.go
package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeLoadsCataloguesFromPath(t *testing.T) {
	require.NoError(t, Initialize("id", "./locales"))

	assert.NotEqual(t, KeyAuthRequired, T("id", KeyAuthRequired))
	assert.NotEqual(t, KeyAuthRequired, T("en", KeyAuthRequired))

	// Unknown language falls back to the default catalogue.
	assert.Equal(t, T("id", KeyAuthRequired), T("fr", KeyAuthRequired))

	// Unknown key passes through untouched.
	assert.Equal(t, "no.such.key", T("id", "no.such.key"))

	assert.ElementsMatch(t, []string{"id", "en"}, GetSupportedLanguages())
}

func TestInitializeFailsOnMissingCatalogue(t *testing.T) {
	bare := &I18n{translations: make(map[string]map[string]string), defaultLang: "id"}
	assert.Error(t, bare.LoadTranslations(t.TempDir()))
}
