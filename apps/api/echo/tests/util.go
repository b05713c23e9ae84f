package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ahmedtelkodsh/geniussmart/apps/api/echo"
	"github.com/ahmedtelkodsh/geniussmart/assets"
	"github.com/ahmedtelkodsh/geniussmart/core"
	"github.com/ahmedtelkodsh/geniussmart/core/analytics"
	"github.com/ahmedtelkodsh/geniussmart/core/comparison"
	"github.com/ahmedtelkodsh/geniussmart/core/dates"
	"github.com/ahmedtelkodsh/geniussmart/core/i18n"
	"github.com/ahmedtelkodsh/geniussmart/core/request"
	"github.com/ahmedtelkodsh/geniussmart/services/email"
	"github.com/ahmedtelkodsh/geniussmart/services/logger"
	"github.com/ahmedtelkodsh/geniussmart/storage/database/inmem"
)

var (
	// Saturday; the week runs from Sunday 2026-10-11
	clock = time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	manager = core.Session{ID: "m-1", Name: "Nadia Karim", Role: RoleManager}
	teacher = core.Session{ID: "t-1", Name: "Amira Hassan", Role: RoleTeacher}
	other   = core.Session{ID: "m-2", Name: "Hala Youssef", Role: RoleManager}

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
)

type fixture struct {
	app         Server
	conf        *core.Config
	repo        request.Repository
	mailSvc     *emailsvc.ConsoleServiceMock
	comparisons *analytics.Comparisons
}

func setup(t *testing.T) *fixture {
	conf := &core.Config{
		AppName:   "Genius Smart",
		TestMode:  true,
		SecretKey: "test-secret",
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour, DisableReqLogs: true},
	}
	logger := logsvc.NewRollbarLogger(logsvc.NewStdLogger(false), conf, "test")
	core.ParseEmailTemplates(assets.FS, "http://localhost:3000", logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	request.InitValidators(validate, translator)

	catalog, err := i18n.NewCatalog()
	require.NoError(t, err)

	// set up DB & repos
	repo := inmemdb.NewRequestRepository(inmemdb.Open())

	// set up services
	nowFunc := func() time.Time { return clock }
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	source := analytics.NewRequestSource(repo, time.UTC)
	comparisons := analytics.NewComparisons(
		comparison.NewSessions(nowFunc),
		source,
		logger,
		analytics.Options{FetchTimeout: time.Second, RetryDelay: 10 * time.Millisecond},
	)
	t.Cleanup(comparisons.Close)

	// set up server
	app := NewServer(&Options{
		Conf:        conf,
		Logger:      logger,
		Validate:    validate,
		Translator:  translator,
		NowFunc:     nowFunc,
		RequestSvc:  request.NewServiceMock(repo, mailSvc, nowFunc),
		ChartSource: source,
		Comparisons: comparisons,
		Catalog:     catalog,
		Calendar:    dates.NewCalendar(time.Sunday, time.Friday, time.Saturday),
	})
	return &fixture{app: app, conf: conf, repo: repo, mailSvc: mailSvc, comparisons: comparisons}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (f *fixture) serve(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	f.app.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) run(t *testing.T, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.serve(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, sess core.Session, email ...string) string {
	var mail string
	if len(email) > 0 {
		mail = email[0]
	}
	token, err := GenerateToken(NewClaims(conf, sess.ID, sess.Name, mail, sess.Role), conf.SecretKey)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, rec *httptest.ResponseRecorder, obj interface{}) {
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), obj), rec.Body.String())
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
