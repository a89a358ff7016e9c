package echoapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/kazi/apps/api/echo"
	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/user"
	"github.com/trezcool/kazi/fs"
	"github.com/trezcool/kazi/tests"
)

var (
	errUnauthorized = ErrorResponse{Error: "Unauthorized"}
	errForbidden    = ErrorResponse{Error: "Forbidden", Message: "You do not have permission to modify this task"}
	errTaskNotFound = ErrorResponse{Error: "Task not found"}
)

func setup(t *testing.T, conf ...*core.Config) (*testutil.Stack, *Server) {
	st := testutil.NewInmemStack(t, conf...)
	core.ParseEmailTemplates(appfs.FS, "templates/email", st.Logger)

	app := NewServer(
		"",  /* addr */
		nil, /* shutdown */
		&Deps{
			Conf:           st.Conf,
			Logger:         st.Logger,
			Validate:       st.Validate,
			Translator:     st.Translator,
			UserSvc:        st.UserSvc,
			Sessions:       st.Sessions,
			TaskSvc:        st.TaskSvc,
			InsightSvc:     st.InsightSvc,
			Limiter:        st.Limiter,
			DisableReqLogs: true,
		},
	)
	return st, app
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
		req.AddCookie(&http.Cookie{Name: "auth-token", Value: token})
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, st *testutil.Stack, usr user.User) string {
	token, err := st.Sessions.Generate(usr.ID)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == "auth-token" {
			return c
		}
	}
	return nil
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// unmarshalData decodes the `data` of the response envelope into data (a pointer).
func unmarshalData(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) {
	unmarshalInto(t, rec, &Response{Data: data})
}

func unmarshalInto(t *testing.T, rec *httptest.ResponseRecorder, resp *Response) {
	if err := json.Unmarshal(rec.Body.Bytes(), resp); err != nil {
		t.Fatalf("unmarshalInto() failed: %v", err)
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
	return assert.ObjectsAreEqualValues(j1, j2), nil
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

func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
