package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/cycle"
	"github.com/trezcool/kelasi/core/instructor"
	"github.com/trezcool/kelasi/core/lead"
	"github.com/trezcool/kelasi/core/meeting"
	"github.com/trezcool/kelasi/core/registration"
	"github.com/trezcool/kelasi/core/schedule"
	"github.com/trezcool/kelasi/core/staff"
	calendarsvc "github.com/trezcool/kelasi/services/calendar"
	confsvc "github.com/trezcool/kelasi/services/conferencing"
	emailsvc "github.com/trezcool/kelasi/services/email"
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
	testutil "github.com/trezcool/kelasi/tests"
)

var (
	conf *core.Config

	staffRepo       staff.Repository
	cycleRepo       cycle.Repository
	meetingRepo     meeting.Repository
	regRepo         registration.Repository
	leadRepo        lead.Repository
	instructorRepo  instructor.Repository
	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T, holidays ...string) Server {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	staffRepo = dummydb.NewStaffRepository(db)
	cycleRepo = dummydb.NewCycleRepository(db)
	meetingRepo = dummydb.NewMeetingRepository(db)
	regRepo = dummydb.NewRegistrationRepository(db)
	leadRepo = dummydb.NewLeadRepository(db)
	instructorRepo = dummydb.NewInstructorRepository(db)

	conf = testutil.NewTestConfig()

	validate := validator.New()
	translator := newTestTranslator()
	core.InitValidators(validate, translator)
	cycle.InitValidators(validate, translator)
	staff.InitValidators(validate, translator)

	scheduleSvc := schedule.NewService(
		db,
		cycleRepo, meetingRepo, regRepo, leadRepo, instructorRepo,
		calendarsvc.NewDummyService(holidays...),
		confsvc.NewDummyService(),
		emailsvc.NewConsoleServiceMock(conf),
		conf, nopLogger{},
	)
	staffSvc := staff.NewService(staffRepo)

	return NewServer(
		ServerDeps{
			Conf:           conf,
			Logger:         nopLogger{},
			ScheduleSvc:    scheduleSvc,
			StaffSvc:       staffSvc,
			Validate:       validate,
			Translator:     translator,
			DisableReqLogs: true,
		},
	)
}

func newTestTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
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

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, stf staff.Staff) string {
	t.Helper()
	token, err := GenerateToken(GetStaffClaims(stf, conf), conf)
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
	return assert.ObjectsAreEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %s; wantData %s", rec.Body.Bytes(), tt.wantData)
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decodeBody() failed: %v; body %s", err, rec.Body.Bytes())
	}
}
