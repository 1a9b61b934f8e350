package server_test

import (
	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/fx"

	"github.com/mrcode/nightscout-report/internal/models"
	"github.com/mrcode/nightscout-report/internal/server"
)

var _ = Describe("Bootstrap", func() {
	Describe("Fx App", func() {
		var app *fx.App
		var components server.Components

		BeforeEach(func() {
			settings := models.DefaultSettings()
			settings.NightscoutURL = "https://ns.example.com"
			Expect(settings.Validate()).To(Succeed())

			init := func(c server.Components) {
				components = c
			}
			opts := append([]fx.Option{}, server.Modules...)
			opts = append(opts, fx.Supply(settings), fx.Invoke(init), fx.NopLogger)

			app = fx.New(opts...)
			Expect(app).ToNot(BeNil())
		})

		AfterEach(func() {
			components = server.Components{}
		})

		It("builds the DI graph successfully", func() {
			Expect(app.Err()).ToNot(HaveOccurred())
		})

		It("instantiates the web server with its routes", func() {
			Expect(components.Echo).ToNot(BeNil())

			paths := map[string]bool{}
			for _, route := range components.Echo.Routes() {
				if route.Method == echo.GET {
					paths[route.Path] = true
				}
			}
			Expect(paths).To(HaveKey("/"))
			Expect(paths).To(HaveKey("/heartbeat"))
			Expect(paths).To(HaveKey("/api/report"))
			Expect(paths).To(HaveKey("/api/report/chart.png"))
			Expect(paths).To(HaveKey("/api/status"))
		})

		It("uses the configured listen address", func() {
			Expect(components.Settings.ListenAddr).To(Equal(":5000"))
		})
	})
})
