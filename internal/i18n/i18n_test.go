// internal/i18n/i18n_test.go
package i18n

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeLocale(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadTranslationsFromConfiguredPath(t *testing.T) {
	dir := t.TempDir()
	writeLocale(t, dir, "en.json", `{"cart.empty": "Your cart is empty"}`)
	writeLocale(t, dir, "es.json", `{"cart.empty": "Tu carrito esta vacio"}`)

	i := &I18n{
		translations: make(map[string]map[string]string),
		defaultLang:  "en",
	}
	require.NoError(t, i.LoadTranslations(dir))

	assert.Equal(t, "Your cart is empty", i.T("en", "cart.empty"))
	assert.Equal(t, "Tu carrito esta vacio", i.T("es", "cart.empty"))

	// Unknown languages fall back to the default; unknown keys echo the key.
	assert.Equal(t, "Your cart is empty", i.T("fr", "cart.empty"))
	assert.Equal(t, "missing.key", i.T("en", "missing.key"))
}

func TestLoadTranslationsMissingFile(t *testing.T) {
	i := &I18n{
		translations: make(map[string]map[string]string),
		defaultLang:  "en",
	}
	assert.Error(t, i.LoadTranslations(t.TempDir()))
}
