package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/trezcool/shule/apps/api/echo"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/plan"
	"github.com/trezcool/shule/core/user"
	testutil "github.com/trezcool/shule/tests"
)

func Test_userApi_login(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Login Test School")
	testutil.CreateTeacher(t, planSvc, sch.ID, plan.NewTeacher{
		Name:     "Khalid",
		Username: "khalid22",
		Password: "v3rys3cret",
	})

	loginBody := func(schoolID, uname, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{SchoolID: schoolID, Username: uname, Password: pwd})
	}
	authFailed := marchallObj(t, httpErr{Error: "authentication failed"})

	tests := []httpTest{
		{
			name: "Empty body", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"username": "this field is required",
				"password": "this field is required",
			}),
		},
		{name: "Admin OK", body: loginBody("", "admin", "sikrit-admin"), wantCode: http.StatusOK},
		{name: "Admin username is case-insensitive", body: loginBody("", "ADMIN", "sikrit-admin"), wantCode: http.StatusOK},
		{name: "Operator OK", body: loginBody("", "operator", "sikrit-operator"), wantCode: http.StatusOK},
		{name: "Admin wrong password", body: loginBody("", "admin", "nope"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "Teacher OK", body: loginBody(sch.ID, "khalid22", "v3rys3cret"), wantCode: http.StatusOK},
		{name: "Teacher needs school", body: loginBody("", "khalid22", "v3rys3cret"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "Teacher wrong school", body: loginBody("not-a-school", "khalid22", "v3rys3cret"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "Teacher wrong password", body: loginBody(sch.ID, "khalid22", "nope"), wantCode: http.StatusBadRequest, wantData: authFailed},
		{name: "Unknown user", body: loginBody(sch.ID, "ghost", "v3rys3cret"), wantCode: http.StatusBadRequest, wantData: authFailed},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("empty token returned")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Refresh Test School")
	tch := testutil.CreateTeacher(t, planSvc, sch.ID, plan.NewTeacher{
		Name:     "Mona",
		Username: "mona1990",
		Password: "v3rys3cret",
	})

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   tch.ID,
			Audience:  "Shule",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     tch.Username,
		SchoolID:     sch.ID,
		IsTeacher:    true,
		Roles:        []string{user.RoleTeacher},
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: teacherToken(t, sch.ID, tch), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/users/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the new token; just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %v", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal(): %v", err)
				}
				if respData.Token == "" {
					t.Error("empty token returned")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_me(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Me Test School")
	tch := testutil.CreateTeacher(t, planSvc, sch.ID, plan.NewTeacher{
		Name:     "Sami",
		Username: "sami2000",
		Password: "v3rys3cret",
	})

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin", token: getToken(t, adminAccount), wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Account{ID: "admin", Username: "admin", Roles: []string{user.RoleAdmin}}),
		},
		{
			name: "Teacher", token: teacherToken(t, sch.ID, tch), wantCode: http.StatusOK,
			wantData: marchallObj(t, user.Account{ID: tch.ID, Username: tch.Username, SchoolID: sch.ID, Roles: []string{user.RoleTeacher}}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/v1/users/me"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
