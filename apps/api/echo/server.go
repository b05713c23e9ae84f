package echoapi

import (
	"context"
	"net/http"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/analytics"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
)

type (
	Options struct {
		Conf           *core.Config
		Logger         core.Logger
		SignalShutdown func()
		Validate       *validator.Validate
		Translator     ut.Translator
		NowFunc        func() time.Time // mockable

		RequestSvc  request.Service
		ChartSource analytics.Source
		Comparisons *analytics.Comparisons
		Catalog     *i18n.Catalog
		Calendar    dates.Calendar
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.NowFunc == nil {
		opts.NowFunc = time.Now
	}
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.opts.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{conf.FrontendBaseURL},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(jwtConfig(conf.SecretKey))

	registerRequestAPI(v1, jwt, s.opts)
	registerChartAPI(v1, jwt, s.opts)
	registerCalendarAPI(v1, jwt, s.opts)
	registerI18nAPI(v1, jwt, s.opts)
}

func (s *server) Start() error {
	return s.app.Start(s.opts.Conf.Server.Address)
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.opts.Conf.AppName+" API!")
}

// now reads the clock in the school's time zone.
func (o *Options) now() time.Time {
	return o.NowFunc().In(o.Conf.Location())
}
