package console

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/product-compare/internal/backend"
	"github.com/maltedev/product-compare/internal/compare"
	"github.com/maltedev/product-compare/internal/models"
)

func newTestServer(t *testing.T) (*Server, *MockBackend, http.Handler) {
	t.Helper()
	b := new(MockBackend)
	srv, err := NewServer(testState(), b, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return srv, b, srv.Routes()
}

func do(t *testing.T, h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func page(t *testing.T, h http.Handler, target string) *goquery.Document {
	t.Helper()
	rec := do(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func TestIndexRendersDOMContract(t *testing.T) {
	_, _, h := newTestServer(t)
	doc := page(t, h, "/")

	for _, id := range []string{
		"tableBody", "momoIndexSelect", "exportButton", "momoCount", "pchomeCount",
		"selectedCount", "clearProductsButton", "clearMomoButton", "clearPchomeButton", "searchInput",
	} {
		assert.Equal(t, 1, doc.Find("#"+id).Length(), id)
	}

	assert.Equal(t, "2", doc.Find("#momoCount").Text())
	assert.Equal(t, "3", doc.Find("#pchomeCount").Text())
	assert.Equal(t, "0", doc.Find("#selectedCount").Text())

	assert.Equal(t, 3, doc.Find("#tableBody tr").Length())
	assert.Equal(t, 5, doc.Find(`input[name="selected_products"]`).Length())
	assert.Equal(t, 1, doc.Find("#uncertainty_3").Length())
	assert.Equal(t, "pchome", doc.Find("#pchome_2").AttrOr("data-platform", ""))
	assert.Equal(t, 1, doc.Find("#momo-card-1").Length())
	assert.Equal(t, 1, doc.Find("#tableBody tr").Eq(2).Find(".empty-card").Length())
	assert.Equal(t, 3, doc.Find("#momoIndexSelect option").Length())
}

func TestIndexEmbedsCatalogPayloads(t *testing.T) {
	_, _, h := newTestServer(t)
	doc := page(t, h, "/")

	var momo []models.Product
	require.NoError(t, json.Unmarshal([]byte(doc.Find("#momo-data").Text()), &momo))
	assert.Len(t, momo, 2)

	var pchome []models.Product
	require.NoError(t, json.Unmarshal([]byte(doc.Find("#pchome-data").Text()), &pchome))
	assert.Equal(t, "Red Hat", pchome[2].Title)

	var maxLength int
	require.NoError(t, json.Unmarshal([]byte(doc.Find("#max-length-data").Text()), &maxLength))
	assert.Equal(t, 3, maxLength)

	assert.True(t, strings.HasPrefix(doc.Find("#momo-data").Text(), "[{"))
	assert.Equal(t, "3", doc.Find("#max-length-data").Text())
}

func TestPayloadTitleCannotCloseScriptTag(t *testing.T) {
	state := compare.NewState(
		[]models.Product{{ID: "1", SKU: "M1", Title: "Momo", Platform: models.PlatformMomo}},
		[]models.Product{{ID: "1", SKU: "P1", Title: `Shoe </script><b>"x" & y`, Platform: models.PlatformPchome}},
	)
	srv, err := NewServer(state, new(MockBackend), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	doc := page(t, srv.Routes(), "/")

	assert.Equal(t, 1, doc.Find("#pchome-data").Length())
	assert.Equal(t, 1, doc.Find("#max-length-data").Length())

	var pchome []models.Product
	require.NoError(t, json.Unmarshal([]byte(doc.Find("#pchome-data").Text()), &pchome))
	require.Len(t, pchome, 1)
	assert.Equal(t, `Shoe </script><b>"x" & y`, pchome[0].Title)
}

func TestToggleCardTwice(t *testing.T) {
	_, _, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/select/pchome/2", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := page(t, h, "/")
	assert.True(t, doc.Find("#pchome-card-2").HasClass("selected"))
	_, checked := doc.Find("#pchome_2").Attr("checked")
	assert.True(t, checked)
	assert.Equal(t, "1", doc.Find("#selectedCount").Text())

	do(t, h, http.MethodPost, "/select/pchome/2", url.Values{})
	doc = page(t, h, "/")
	assert.False(t, doc.Find("#pchome-card-2").HasClass("selected"))
	assert.Equal(t, "0", doc.Find("#selectedCount").Text())
}

func TestToggleRejectsUnknownCard(t *testing.T) {
	_, _, h := newTestServer(t)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/select/momo/99", url.Values{}).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/select/amazon/1", url.Values{}).Code)
}

func TestSetCheckedForm(t *testing.T) {
	srv, _, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/select", url.Values{"platform": {"momo"}, "id": {"1"}, "checked": {"true"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	do(t, h, http.MethodPost, "/select", url.Values{"platform": {"momo"}, "id": {"1"}, "checked": {"true"}})
	assert.Equal(t, 1, srv.Session().SelectedCount())

	do(t, h, http.MethodPost, "/select", url.Values{"platform": {"momo"}, "id": {"1"}})
	assert.Equal(t, 0, srv.Session().SelectedCount())
}

func TestSelectAllAndUnselectAll(t *testing.T) {
	srv, _, h := newTestServer(t)

	do(t, h, http.MethodPost, "/select-all", url.Values{})
	assert.Equal(t, 5, srv.Session().SelectedCount())

	do(t, h, http.MethodPost, "/unselect-all", url.Values{})
	assert.Equal(t, 0, srv.Session().SelectedCount())
}

func TestRenderSingleMomo(t *testing.T) {
	_, _, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/render", url.Values{"momo_index": {"2"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := page(t, h, "/")
	assert.Equal(t, 3, doc.Find(`#tableBody .product-title:contains("Momo Hat")`).Length())
	assert.Equal(t, "1", doc.Find("#selectedCount").Text())
	assert.Equal(t, "2", doc.Find("#momoIndexSelect option[selected]").AttrOr("value", ""))
}

func TestRenderInvalidMomoIndexShowsError(t *testing.T) {
	_, _, h := newTestServer(t)

	do(t, h, http.MethodPost, "/render", url.Values{"momo_index": {"abc"}})

	doc := page(t, h, "/")
	assert.Equal(t, 1, doc.Find(".message.error").Length())
	assert.Equal(t, "all", doc.Find("#momoIndexSelect option[selected]").AttrOr("value", ""))
}

func TestSearchFiltersAndHighlights(t *testing.T) {
	_, _, h := newTestServer(t)

	doc := page(t, h, "/?q=red")
	rows := doc.Find("#tableBody tr")
	_, hidden0 := rows.Eq(0).Attr("hidden")
	_, hidden1 := rows.Eq(1).Attr("hidden")
	_, hidden2 := rows.Eq(2).Attr("hidden")
	assert.False(t, hidden0)
	assert.True(t, hidden1)
	assert.False(t, hidden2)
	assert.Equal(t, "2 / 3", doc.Find("#searchCount").Text())
	assert.Equal(t, "Red", doc.Find("#pchome-card-1 mark.highlight").Text())
	assert.Equal(t, 0, doc.Find("#momo-card-1 mark").Length())

	doc = page(t, h, "/?q=")
	assert.Equal(t, "3 / 3", doc.Find("#searchCount").Text())
}

func TestUncertaintyValidation(t *testing.T) {
	srv, _, h := newTestServer(t)

	for _, raw := range []string{"0", "101", "abc"} {
		do(t, h, http.MethodPost, "/uncertainty/1", url.Values{"uncertainty": {raw}})
		doc := page(t, h, "/")
		assert.Equal(t, "", doc.Find("#uncertainty_1").AttrOr("value", "x"), raw)
		assert.Equal(t, 1, doc.Find(".message.error").Length(), raw)
	}

	for _, raw := range []string{"1", "100"} {
		do(t, h, http.MethodPost, "/uncertainty/1", url.Values{"uncertainty": {raw}})
		doc := page(t, h, "/")
		assert.Equal(t, raw, doc.Find("#uncertainty_1").AttrOr("value", ""))
	}

	v, ok := srv.Session().Uncertainty("1")
	assert.True(t, ok)
	assert.Equal(t, 100, v)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/uncertainty/42", url.Values{"uncertainty": {"5"}}).Code)
}

func TestExportWithoutSelectionSkipsBackend(t *testing.T) {
	_, b, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/export", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := page(t, h, "/")
	assert.Contains(t, doc.Find(".message.error").Text(), "請先勾選至少一個商品")
	b.AssertNotCalled(t, "SaveSelection", mock.Anything, mock.Anything)
}

func TestExportDownloadsReport(t *testing.T) {
	_, b, h := newTestServer(t)

	var sent *models.SaveRequest
	b.On("SaveSelection", mock.Anything, mock.AnythingOfType("*models.SaveRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*models.SaveRequest) }).
		Return(ok(), nil).Once()

	do(t, h, http.MethodPost, "/select/momo/1", url.Values{})
	do(t, h, http.MethodPost, "/select/pchome/1", url.Values{})
	do(t, h, http.MethodPost, "/select/pchome/3", url.Values{})
	do(t, h, http.MethodPost, "/uncertainty/3", url.Values{"uncertainty": {"70"}})

	rec := do(t, h, http.MethodPost, "/export", url.Values{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "selected_products.txt")
	assert.Contains(t, rec.Body.String(), "connect: M1")

	require.NotNil(t, sent)
	require.Len(t, sent.Products, 2)
	assert.Equal(t, "M1", sent.Products[0].Connect)
	assert.Equal(t, 70, sent.Products[1].UncertaintyProblem)
	assert.Equal(t, 2, sent.MomoProducts[0].Num)

	doc := page(t, h, "/")
	assert.Contains(t, doc.Find(".message.success").Text(), "已匯出 3 個商品")
	b.AssertExpectations(t)
}

func TestExportBackendFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rejected", &backend.RejectedError{Endpoint: backend.PathSave, Message: "db down"}, "儲存到資料庫失敗"},
		{"unreachable", errors.New("connection refused"), unreachableMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, b, h := newTestServer(t)
			b.On("SaveSelection", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			do(t, h, http.MethodPost, "/select/pchome/1", url.Values{})
			rec := do(t, h, http.MethodPost, "/export", url.Values{})
			assert.Equal(t, http.StatusSeeOther, rec.Code)

			doc := page(t, h, "/")
			assert.Contains(t, doc.Find(".message.error").Text(), tt.want)
		})
	}
}

func TestMaintenanceRequiresConfirmation(t *testing.T) {
	_, b, h := newTestServer(t)

	doc := page(t, h, "/maintenance/clear-momo")
	assert.Contains(t, doc.Find("#confirmPrompt").Text(), "momo_products")

	rec := do(t, h, http.MethodPost, "/maintenance/clear-momo", url.Values{})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/maintenance/clear-momo", rec.Header().Get("Location"))
	b.AssertNotCalled(t, "ClearMomoProducts", mock.Anything)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/maintenance/unknown", nil).Code)
}

func TestMaintenanceConfirmed(t *testing.T) {
	_, b, h := newTestServer(t)
	b.On("ClearProducts", mock.Anything).Return(ok(), nil).Once()

	rec := do(t, h, http.MethodPost, "/maintenance/clear-products", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := page(t, h, "/")
	assert.Contains(t, doc.Find(".message.success").Text(), "已清空")
	b.AssertExpectations(t)
}

func TestMaintenancePartialFailureIsReported(t *testing.T) {
	_, b, h := newTestServer(t)
	b.On("ClearPchomeProducts", mock.Anything).Return(ok(), nil).Once()
	b.On("InitializePchome", mock.Anything).Return(nil, errors.New("timeout")).Once()

	do(t, h, http.MethodPost, "/maintenance/clear-pchome", url.Values{"confirm": {"yes"}})

	doc := page(t, h, "/")
	assert.Equal(t, 0, doc.Find(".message.success").Length())
	assert.Contains(t, doc.Find(".message.error").Text(), "已清空")
	b.AssertExpectations(t)
}

func TestLabelDeleteFlow(t *testing.T) {
	_, b, h := newTestServer(t)

	doc := page(t, h, "/labels/delete")
	assert.Equal(t, 1, doc.Find("#deleteLabelForm").Length())

	rec := do(t, h, http.MethodPost, "/labels/delete/confirm", url.Values{"mode": {"index"}, "index": {"5"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/labels/delete/confirm", url.Values{"mode": {"index"}, "index": {"1"}})
	require.Equal(t, http.StatusOK, rec.Code)
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, doc.Find("#confirmPrompt").Text(), "Momo Shoe")
	assert.Equal(t, "M1", doc.Find(`input[name="sku"]`).AttrOr("value", ""))

	b.On("DeleteLabeledProduct", mock.Anything, "M1").
		Return(&models.Response{Success: true, Deleted: &models.DeletedCounts{MomoProducts: 1, Products: 2}}, nil).Once()

	rec = do(t, h, http.MethodPost, "/labels/delete", url.Values{"sku": {"M1"}, "confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc = page(t, h, "/")
	assert.Contains(t, doc.Find(".message.success").Text(), "2 筆")
	b.AssertExpectations(t)
}

func TestLabelDeleteUnknownSKUUsesGenericPrompt(t *testing.T) {
	_, b, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/labels/delete/confirm", url.Values{"mode": {"sku"}, "sku": {"ZZZ"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ZZZ")

	rec = do(t, h, http.MethodPost, "/labels/delete/confirm", url.Values{"mode": {"sku"}, "sku": {""}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/labels/delete", url.Values{"sku": {"ZZZ"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	b.AssertNotCalled(t, "DeleteLabeledProduct", mock.Anything, mock.Anything)
}

func TestUncertaintyInputsBelongToExportForm(t *testing.T) {
	_, _, h := newTestServer(t)
	doc := page(t, h, "/")

	assert.Equal(t, "/export", doc.Find("#exportForm").AttrOr("action", ""))

	input := doc.Find("#uncertainty_3")
	assert.Equal(t, "exportForm", input.AttrOr("form", ""))
	assert.Equal(t, "uncertainty_3", input.AttrOr("name", ""))

	save := doc.Find(`button[formaction="/uncertainty/3"]`)
	assert.Equal(t, "exportForm", save.AttrOr("form", ""))
}

func TestRowSaveReadsOnlyItsOwnField(t *testing.T) {
	srv, _, h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/uncertainty/3", url.Values{
		"uncertainty_3": {"55"},
		"uncertainty_1": {"9"},
	})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	v, ok := srv.Session().Uncertainty("3")
	assert.True(t, ok)
	assert.Equal(t, 55, v)

	_, ok = srv.Session().Uncertainty("1")
	assert.False(t, ok)
}

func TestExportReadsUnsavedUncertaintyInputs(t *testing.T) {
	_, b, h := newTestServer(t)

	var sent *models.SaveRequest
	b.On("SaveSelection", mock.Anything, mock.AnythingOfType("*models.SaveRequest")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*models.SaveRequest) }).
		Return(ok(), nil).Once()

	do(t, h, http.MethodPost, "/select/momo/1", url.Values{})
	do(t, h, http.MethodPost, "/select/pchome/1", url.Values{})
	do(t, h, http.MethodPost, "/select/pchome/3", url.Values{})

	rec := do(t, h, http.MethodPost, "/export", url.Values{
		"uncertainty_1": {""},
		"uncertainty_2": {"15"},
		"uncertainty_3": {"70"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, sent)
	require.Len(t, sent.Products, 2)
	assert.Equal(t, 0, sent.Products[0].UncertaintyProblem)
	assert.Equal(t, 70, sent.Products[1].UncertaintyProblem)

	doc := page(t, h, "/")
	assert.Equal(t, "70", doc.Find("#uncertainty_3").AttrOr("value", ""))
	assert.Equal(t, "15", doc.Find("#uncertainty_2").AttrOr("value", ""))
	b.AssertExpectations(t)
}

func TestExportRejectsInvalidUncertaintyInput(t *testing.T) {
	_, b, h := newTestServer(t)

	do(t, h, http.MethodPost, "/select/pchome/1", url.Values{})
	rec := do(t, h, http.MethodPost, "/export", url.Values{"uncertainty_1": {"101"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	doc := page(t, h, "/")
	assert.Contains(t, doc.Find(".message.error").Text(), compare.ErrUncertaintyOutOfRange.Error())
	assert.Equal(t, "", doc.Find("#uncertainty_1").AttrOr("value", "x"))
	assert.NotEmpty(t, doc.Find(".field-error").Text())
	b.AssertNotCalled(t, "SaveSelection", mock.Anything, mock.Anything)
}
