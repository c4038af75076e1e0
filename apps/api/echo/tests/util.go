package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/apps/api/echo"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/account"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/i18n"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/learning"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/core/registration"
	appfs "github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/fs"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/services/email"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/services/logger"
	"github.com/mishra-aashu/Kind-Heart-s-Sangam-Foundation/storage/database/inmem"
)

var (
	conf    *core.Config
	db      *inmemdb.DB
	regRepo registration.Repository
	accRepo account.Repository
	mailSvc *emailsvc.ConsoleService
	i18nMgr *i18n.Manager

	errMissingToken = httpErr{Error: "missing or malformed jwt"}

	siteFS = fstest.MapFS{
		"index.html": {Data: []byte(`<html><head></head><body><h1 data-translate="hero.title">Hungry</h1></body></html>`)},
		"notes.txt":  {Data: []byte("not a page")},
	}

	contentFS = fstest.MapFS{
		"lessons/nutrition-basics.md": {Data: []byte("# Global Nutrition\n\nHunger affects **millions**.\n")},
		"flashcards/nutrition.md":     {Data: []byte("## What is wasting?\n\nLow weight for height.\n\n## What is stunting?\n\nLow height for age.\n")},
	}
)

func setup(t *testing.T) *Server {
	conf = core.NewTestConfig()
	conf.Debug = false
	log := logsvc.NewZeroLogger(io.Discard, conf)

	// set up DB & repos
	db = inmemdb.NewDB()
	regRepo = inmemdb.NewRegistrationRepository(db)
	accRepo = inmemdb.NewAccountRepository(db)
	lrnRepo := inmemdb.NewLearningRepository(db)

	// set up i18n & validation
	catalog, err := i18n.NewCatalog(appfs.FS)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	i18nMgr, err = i18n.NewManager(catalog, conf.I18n.DefaultLanguage)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	translator, err := catalog.Translator(i18n.English)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	validate := validator.New()
	core.InitValidators(validate, translator)
	account.InitValidators(validate, translator)

	// set up services
	core.ParseEmailTemplates(appfs.FS, conf, log)
	mailSvc = emailsvc.NewConsoleServiceMock(conf, log)
	accSvc := account.NewService(accRepo)

	// set up server
	return NewServer(ServerDeps{
		Conf:            conf,
		Logger:          log,
		Validate:        validate,
		I18n:            i18nMgr,
		RegistrationSvc: registration.NewService(regRepo, validate, mailSvc, log),
		AccountSvc:      accSvc,
		LearningSvc:     learning.NewService(lrnRepo, accSvc, learning.NewContentStore(contentFS), conf.Learning, log),
		SiteFS:          siteFS,
		DisableReqLogs:  true,
	})
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
	extra    interface{}
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

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, acc account.Account) string {
	token, err := GenerateToken(GetAccountClaims(acc, conf), conf)
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

func unmarshal(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
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
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
