package ui

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"sheetview/adapters/excel"
	"sheetview/adapters/render"
	"sheetview/app"
	"sheetview/internal/session"
	"sheetview/internal/testkit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	viewer := app.NewViewerService(
		excel.NewLoader(excel.DefaultExcelConfig()),
		excel.NewExporter(),
		render.NewRenderer(480, 240),
		session.NewManager(8, time.Minute),
		app.ViewerConfig{PreviewRows: 5},
	)
	srv, err := NewServer(viewer, Config{
		GinMode:          "test",
		MaxUploadBytes:   1 << 20,
		AllowedTypes:     []string{".xlsx"},
		UploadRatePerMin: 600,
		UploadBurst:      100,
		ChartWidth:       480,
		ChartHeight:      240,
	})
	require.NoError(t, err)
	return srv
}

func uploadRequest(t *testing.T, fileName string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// upload posts the city/sales workbook and returns the new session id
func upload(t *testing.T, srv *Server) string {
	t.Helper()
	w := serve(srv, uploadRequest(t, "sales.xlsx", testkit.MustWorkbook(t, testkit.CitySalesRows())))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, ok := decode(t, w)["session_id"].(string)
	require.True(t, ok)
	return id
}

func htmx(req *http.Request) *http.Request {
	req.Header.Set("HX-Request", "true")
	return req
}

func TestUpload_JSON(t *testing.T) {
	srv := newTestServer(t)
	w := serve(srv, uploadRequest(t, "sales.xlsx", testkit.MustWorkbook(t, testkit.CitySalesRows())))

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "sales.xlsx", body["file_name"])
	assert.Equal(t, float64(3), body["rows"])
	assert.Len(t, body["columns"], 2)
	assert.True(t, strings.HasPrefix(body["url"].(string), "/s/"))
}

func TestUpload_HTMXRedirects(t *testing.T) {
	srv := newTestServer(t)
	req := htmx(uploadRequest(t, "sales.xlsx", testkit.MustWorkbook(t, testkit.CitySalesRows())))
	w := serve(srv, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("HX-Redirect"), "/s/"))
}

func TestUpload_Rejections(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, uploadRequest(t, "sales.csv", []byte("city,sales\nNY,10\n")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, w)["code"])

	w = serve(srv, uploadRequest(t, "broken.xlsx", []byte("not a workbook")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "PARSE_ERROR", decode(t, w)["code"])

	w = serve(srv, htmx(uploadRequest(t, "broken.xlsx", []byte("not a workbook"))))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "could not be read as a spreadsheet")
}

func TestIndexPage(t *testing.T) {
	srv := newTestServer(t)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="file"`)
	assert.Contains(t, w.Body.String(), "</html>")
}

func TestSessionPage(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/s/"+id, nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Data summary")
	assert.Contains(t, body, "11.666667")
	// default filter is the first column's first value
	assert.Contains(t, body, "Rows: 2")
	assert.Contains(t, body, "/s/"+id+"/export.xlsx?column=city&amp;value=NY")
	assert.Contains(t, body, "htmx:afterSwap from:#filter-value")
	assert.Contains(t, body, `<option value="line">Line Chart</option>`)
}

func TestSessionPage_Unknown(t *testing.T) {
	srv := newTestServer(t)
	w := serve(srv, httptest.NewRequest(http.MethodGet, "/s/"+uuid.NewString(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "upload the file again")

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/nope/columns", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode(t, w)["code"])
}

func TestValuesAndFilter(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, htmx(httptest.NewRequest(http.MethodGet, "/s/"+id+"/values?column=city", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `<option value="NY">NY</option><option value="LA">LA</option>`, strings.TrimSpace(w.Body.String()))

	w = serve(srv, htmx(httptest.NewRequest(http.MethodGet, "/s/"+id+"/filter?column=city&value=LA", nil)))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rows: 1")
	assert.Contains(t, w.Body.String(), "/s/"+id+"/export.xlsx?column=city&amp;value=LA")

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/filter?column=city&value=NY", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, float64(2), body["count"])
	assert.Equal(t, []interface{}{[]interface{}{"NY", float64(10)}, []interface{}{"NY", float64(20)}}, body["rows"])
}

func TestFilter_UnknownValue(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, htmx(httptest.NewRequest(http.MethodGet, "/s/"+id+"/filter?column=city&value=SF", nil)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "does not occur")

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/filter?column=town&value=NY", nil))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "UNKNOWN_COLUMN", decode(t, w)["code"])
}

func plotRequest(id string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/s/"+id+"/plot", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestPlot_HTMXRendersImage(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	form := url.Values{"x": {"city"}, "y": {"sales"}, "kind": {"bar"}, "column": {"city"}, "value": {"NY"}}
	w := serve(srv, htmx(plotRequest(id, form)))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "data:image/png;base64,")
	assert.Contains(t, body, "Bar Chart of sales by city")
	assert.Contains(t, body, "city == NY")
}

func TestPlot_NotNumericBanner(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	form := url.Values{"x": {"sales"}, "y": {"city"}, "kind": {"line"}}
	w := serve(srv, htmx(plotRequest(id, form)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "The column &#39;city&#39; is not a numerical type")
	assert.NotContains(t, w.Body.String(), "<img")

	w = serve(srv, plotRequest(id, form))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "NOT_NUMERIC", decode(t, w)["code"])
}

func TestPlot_BadRequests(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, plotRequest(id, url.Values{"x": {"city"}, "y": {"sales"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(srv, plotRequest(id, url.Values{"x": {"city"}, "y": {"sales"}, "kind": {"pie"}}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_INPUT", decode(t, w)["code"])
}

func TestPlot_JSON(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, plotRequest(id, url.Values{"x": {"city"}, "y": {"sales"}, "kind": {"line"}}))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "line", body["kind"])
	assert.Equal(t, false, body["no_data"])
	assert.Equal(t, render.ContentTypePNG, body["content_type"])
	assert.NotEmpty(t, body["image_base64"])
}

func TestChartPNG(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/s/"+id+"/chart.png?x=city&y=sales&kind=bar", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, render.ContentTypePNG, w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestAPISeries(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/series?x=city&y=sales&kind=line", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["duplicate_index"])
	assert.Equal(t, float64(3), body["plottable"])
	assert.Len(t, body["points"], 3)
}

func TestAPISummaryAndPreview(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/summary", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode(t, w)["rows"])

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/preview?n=1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["rows"], 1)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/api/sessions/"+id+"/preview?n=zero", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExport(t *testing.T) {
	srv := newTestServer(t)
	id := upload(t, srv)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/s/"+id+"/export.xlsx?column=city&value=NY", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, excel.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales-filtered.xlsx")
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestHealthzAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = serve(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sheetview_active_sessions")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "10.0", formatNumber(10))
	assert.Equal(t, "7.637626", formatNumber(7.6376261582597333))
	assert.Equal(t, "NaN", formatNumber(math.NaN()))
}
