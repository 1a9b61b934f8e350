package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/mrcode/nightscout-report/internal/chart"
	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/server"
)

type fakeReports struct {
	today     string
	requested []string
	err       error
}

func (f *fakeReports) Today() string {
	return f.today
}

func (f *fakeReports) Report(_ context.Context, date string) (*models.ReportData, error) {
	f.requested = append(f.requested, date)
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReportData{
		Date:               date,
		ChartTimeLabels:    []string{"09:00"},
		ChartGlucoseValues: []int{120},
		Rows: []models.ReportRow{
			{Time: "09:02", Glucose: "120 →", CIR: "15", Carbs: "45g", Predicted: "3", Actual: "3", InsulinType: "N", Food: "rice"},
		},
		DailySummary: models.DailySummary{AverageGlucose: 120, TotalBolusInsulin: 3, TotalCarbs: 45, CarbToInsulinRatio: "15.0"},
	}, nil
}

type fakeStatus struct {
	err error
}

func (f *fakeStatus) GetStatus(context.Context) (*models.ServerStatus, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.ServerStatus{Status: "ok", Name: "test-nightscout"}, nil
}

func decodeError(rec *httptest.ResponseRecorder) string {
	var body server.ErrorResponse
	Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
	return body.Error
}

var _ = Describe("Handlers", func() {
	var (
		reports *fakeReports
		status  *fakeStatus
		e       *echo.Echo
	)

	get := func(target string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	BeforeEach(func() {
		settings := models.DefaultSettings()
		settings.NightscoutURL = "https://ns.example.com"

		reports = &fakeReports{today: "2024-03-01"}
		status = &fakeStatus{}
		handler := server.NewHandler(reports, status, chart.New(settings).WithSize(320, 120), settings, zap.NewNop())
		e = server.NewEcho(handler, nil, zap.NewNop())
	})

	Describe("GET /api/report", func() {
		It("returns the report for the requested date", func() {
			rec := get("/api/report?date=2024-02-14")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(reports.requested).To(Equal([]string{"2024-02-14"}))

			var body map[string]any
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveKeyWithValue("date", "2024-02-14"))
			Expect(body).To(HaveKeyWithValue("tcir", "15.0"))
			Expect(body).To(HaveKeyWithValue("avg_bg", BeNumerically("==", 120)))
			Expect(body).To(HaveKey("table_data"))
		})

		It("defaults to today", func() {
			rec := get("/api/report")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(reports.requested).To(Equal([]string{"2024-03-01"}))
		})

		It("returns an error object when the report fails", func() {
			reports.err = errors.New(`invalid date "yesterday", want YYYY-MM-DD`)

			rec := get("/api/report?date=yesterday")

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeError(rec)).To(ContainSubstring("invalid date"))
		})
	})

	Describe("GET /api/report/chart.png", func() {
		It("returns a PNG image", func() {
			rec := get("/api/report/chart.png?date=2024-02-14")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(echo.HeaderContentType)).To(Equal("image/png"))
			Expect(rec.Body.Bytes()).To(HavePrefix("\x89PNG"))
		})
	})

	Describe("GET /", func() {
		It("serves the page with today preselected", func() {
			rec := get("/")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get(echo.HeaderContentType)).To(ContainSubstring("text/html"))
			Expect(rec.Body.String()).To(ContainSubstring(`value="2024-03-01"`))
		})
	})

	Describe("GET /heartbeat", func() {
		It("returns 200", func() {
			Expect(get("/heartbeat").Code).To(Equal(http.StatusOK))
		})
	})

	Describe("GET /api/status", func() {
		It("proxies the upstream status", func() {
			rec := get("/api/status")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`"name":"test-nightscout"`))
		})

		It("returns 502 when upstream fails", func() {
			status.err = errors.New("API error 401: Unauthorized")

			rec := get("/api/status")

			Expect(rec.Code).To(Equal(http.StatusBadGateway))
			Expect(decodeError(rec)).To(Equal("API error 401: Unauthorized"))
		})
	})

	Describe("errors", func() {
		It("renders unknown routes as an error object", func() {
			rec := get("/nope")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
			Expect(decodeError(rec)).To(Equal("Not Found"))
		})

		It("recovers from panics", func() {
			e.GET("/panic", func(echo.Context) error {
				panic("boom")
			})

			rec := get("/panic")

			Expect(rec.Code).To(Equal(http.StatusInternalServerError))
			Expect(decodeError(rec)).To(ContainSubstring("boom"))
		})

		It("sets a request id", func() {
			rec := get("/heartbeat")

			Expect(rec.Header().Get(echo.HeaderXRequestID)).To(HaveLen(36))
		})
	})
})
