package console

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/product-compare/internal/compare"
	"github.com/maltedev/product-compare/internal/models"
)

func testState() *compare.State {
	return compare.NewState(
		[]models.Product{
			{ID: "1", SKU: "M1", Title: "Momo Shoe", Price: 1290, Platform: models.PlatformMomo},
			{ID: "2", SKU: "M2", Title: "Momo Hat", Price: 500, Platform: models.PlatformMomo},
		},
		[]models.Product{
			{ID: "1", SKU: "P1", Title: "Red Shoe", Price: 1200, Platform: models.PlatformPchome},
			{ID: "2", SKU: "P2", Title: "Blue Shoe", Price: 980, Platform: models.PlatformPchome},
			{ID: "3", SKU: "P3", Title: "Red Hat", Price: 450, Platform: models.PlatformPchome},
		},
	)
}

func TestSessionInitialRenderHasNoSelection(t *testing.T) {
	s := NewSession(testState())
	assert.Equal(t, compare.AllMomo, s.MomoIndex())
	assert.Equal(t, 0, s.SelectedCount())
}

func TestSessionSetMomoIndexResetsAndSelectsFirst(t *testing.T) {
	s := NewSession(testState())
	_, err := s.Toggle(models.PlatformPchome, "3")
	require.NoError(t, err)
	require.NoError(t, s.SetUncertainty("3", "40"))

	require.NoError(t, s.SetMomoIndex("2"))
	assert.Equal(t, "2", s.MomoIndex())
	assert.Equal(t, 1, s.SelectedCount())

	_, ok := s.Uncertainty("3")
	assert.False(t, ok)

	export, err := s.BuildExport()
	require.NoError(t, err)
	require.Len(t, export.Request.MomoProducts, 1)
	assert.Equal(t, "M2", export.Request.MomoProducts[0].SKU)
}

func TestSessionInvalidMomoIndexFallsBack(t *testing.T) {
	s := NewSession(testState())

	err := s.SetMomoIndex("9")
	assert.ErrorIs(t, err, compare.ErrInvalidMomoIndex)
	assert.Equal(t, compare.AllMomo, s.MomoIndex())
	assert.Equal(t, 1, s.SelectedCount())
}

func TestSessionToggleUnknownCard(t *testing.T) {
	s := NewSession(testState())

	_, err := s.Toggle(models.PlatformMomo, "3")
	assert.ErrorIs(t, err, ErrCardNotRendered)
	assert.ErrorIs(t, s.SetChecked(models.PlatformPchome, "99", true), ErrCardNotRendered)
}

func TestSessionUncertainty(t *testing.T) {
	s := NewSession(testState())

	require.NoError(t, s.SetUncertainty("1", "100"))
	v, ok := s.Uncertainty("1")
	assert.True(t, ok)
	assert.Equal(t, 100, v)

	assert.ErrorIs(t, s.SetUncertainty("1", "101"), compare.ErrUncertaintyOutOfRange)
	_, ok = s.Uncertainty("1")
	assert.False(t, ok)

	view, err := s.View()
	require.NoError(t, err)
	assert.Equal(t, "", view.Rows[0].Uncertainty)
	assert.NotEmpty(t, view.Rows[0].UncertaintyError)

	require.NoError(t, s.SetUncertainty("1", ""))
	view, err = s.View()
	require.NoError(t, err)
	assert.Empty(t, view.Rows[0].UncertaintyError)
}

func TestSessionExportWithoutSelection(t *testing.T) {
	s := NewSession(testState())
	_, err := s.BuildExport()
	assert.ErrorIs(t, err, compare.ErrNoSelection)
}

func TestSessionNoticeIsOneShot(t *testing.T) {
	s := NewSession(testState())
	s.Flash(NoticeSuccess, "done")

	view, err := s.View()
	require.NoError(t, err)
	require.NotNil(t, view.Notice)
	assert.Equal(t, "done", view.Notice.Text)

	view, err = s.View()
	require.NoError(t, err)
	assert.Nil(t, view.Notice)
}

func TestSessionApplyUncertaintyInputs(t *testing.T) {
	s := NewSession(testState())
	require.NoError(t, s.SetUncertainty("2", "30"))

	err := s.ApplyUncertaintyInputs(url.Values{
		"uncertainty_1":  {" 80 "},
		"uncertainty_3":  {"abc"},
		"uncertainty_99": {"10"},
	})
	assert.ErrorIs(t, err, compare.ErrUncertaintyOutOfRange)

	v, ok := s.Uncertainty("1")
	assert.True(t, ok)
	assert.Equal(t, 80, v)

	v, ok = s.Uncertainty("2")
	assert.True(t, ok)
	assert.Equal(t, 30, v)

	_, ok = s.Uncertainty("3")
	assert.False(t, ok)
	_, ok = s.Uncertainty("99")
	assert.False(t, ok)

	require.NoError(t, s.ApplyUncertaintyInputs(url.Values{"uncertainty_2": {""}}))
	_, ok = s.Uncertainty("2")
	assert.False(t, ok)
}
