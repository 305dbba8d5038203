package unit_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lab-preauth/internal/pkg/i18n"
)

func TestI18nLoading(t *testing.T) {
	localePath := filepath.Join("..", "..", "locales")

	err := i18n.LoadTranslations(localePath)
	require.NoError(t, err)

	assert.Equal(t, "Under Review", i18n.Translate("en", "status.under_review"))
	assert.Equal(t, "Approved", i18n.Translate("en", "status.approved"))
	assert.Equal(t, "Hormones", i18n.Translate("en", "category.hormones"))

	assert.Equal(t, "قيد المراجعة", i18n.Translate("ar", "status.under_review"))
	assert.Equal(t, "مرفوض", i18n.Translate("ar", "status.rejected"))
	assert.Equal(t, "مراجع", i18n.Translate("ar", "role.reviewer"))

	// Unknown locale falls back to English, unknown key echoes the key.
	assert.Equal(t, "Draft", i18n.Translate("fr", "status.draft"))
	assert.Equal(t, "status.unknown", i18n.Translate("en", "status.unknown"))
}
