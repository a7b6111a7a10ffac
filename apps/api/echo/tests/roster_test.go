package tests

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trezcool/shule/core/roster"
	testutil "github.com/trezcool/shule/tests"
)

func Test_rosterApi_classes(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Classes School")
	adminToken := getToken(t, adminAccount)
	base := "/v1/schools/" + sch.ID + "/classes"

	cg := testutil.CreateClass(t, rosterSvc, sch.ID, "الخامس - أ")

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: base, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "List", method: http.MethodGet, path: base, token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, cg)},
		{
			name: "Create requires a name", method: http.MethodPost, path: base, token: adminToken,
			body:     marchallObj(t, roster.NewClass{Grade: "الخامس"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "this field is required"}),
		},
		{name: "Retrieve", method: http.MethodGet, path: base + "/" + cg.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, cg)},
		{name: "Retrieve unknown", method: http.MethodGet, path: base + "/nope", token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Destroy unknown", method: http.MethodDelete, path: base + "/nope", token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// rename then delete; enrolled students keep their soft reference
	updated := cg
	updated.Name = "الخامس - ب"
	req, rec := newAuthRequest(http.MethodPut, base+"/"+cg.ID, adminToken, marchallObj(t, updated))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, updated)}, rec)

	req, rec = newAuthRequest(http.MethodDelete, base+"/"+cg.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("destroy failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
}

func Test_rosterApi_students(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Students School")
	adminToken := getToken(t, adminAccount)
	base := "/v1/schools/" + sch.ID + "/students"

	cg := testutil.CreateClass(t, rosterSvc, sch.ID, "الأول - أ")
	st1 := testutil.CreateStudent(t, rosterSvc, sch.ID, roster.NewStudent{Name: "أحمد محمد", ParentPhone: "0501111111", ClassID: cg.ID})
	st2 := testutil.CreateStudent(t, rosterSvc, sch.ID, roster.NewStudent{Name: "سالم خالد"})

	tests := []httpTest{
		{name: "Auth required", method: http.MethodGet, path: base, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "List", method: http.MethodGet, path: base, token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, st1, st2)},
		{name: "Filter by class", method: http.MethodGet, path: base + "?class=" + cg.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, st1)},
		{name: "Filter by unknown class", method: http.MethodGet, path: base + "?class=nope", token: adminToken, wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...)},
		{
			name: "Create rejects letterless name", method: http.MethodPost, path: base, token: adminToken,
			body:     marchallObj(t, roster.NewStudent{Name: "12345"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"name": "a name must contain at least one Arabic or Latin letter"}),
		},
		{name: "Retrieve", method: http.MethodGet, path: base + "/" + st1.ID, token: adminToken, wantCode: http.StatusOK, wantData: marchallObj(t, st1)},
		{name: "Retrieve unknown", method: http.MethodGet, path: base + "/nope", token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// move st2 into the class, then drop them
	st2.ClassID = cg.ID
	req, rec := newAuthRequest(http.MethodPut, base+"/"+st2.ID, adminToken, marchallObj(t, st2))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, st2)}, rec)

	req, rec = newAuthRequest(http.MethodDelete, base+"/"+st2.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("destroy failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
}

func Test_rosterApi_importTemplate(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Template School")

	req, rec := newAuthRequest(http.MethodGet, "/v1/schools/"+sch.ID+"/students/import-template", getToken(t, adminAccount))
	app.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %v", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "students-template.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if rec.Body.String() != roster.CSVTemplate {
		t.Errorf("unexpected template body: %q", rec.Body.String())
	}
}

func newImportRequest(t *testing.T, path, token, filename, content string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile(): %v", err)
	}
	if _, err = fw.Write([]byte(content)); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func Test_rosterApi_import(t *testing.T) {
	sch := testutil.CreateSchool(t, schoolSvc, "Import School")
	adminToken := getToken(t, adminAccount)
	path := "/v1/schools/" + sch.ID + "/students/import"

	csv := "اسم الطالب,جوال ولي الأمر,الصف,الفصل\n" +
		"أحمد محمد,0501111111,الثالث,أ\n" +
		"سالم خالد,0502222222,الثالث,أ\n" +
		"منى علي,0503333333,الثالث,ب\n" +
		"123,0504444444,الثالث,ب\n" // no letters, skipped

	req, rec := newImportRequest(t, path, adminToken, "roster.csv", csv)
	app.ServeHTTP(rec, req)
	tt := httpTest{
		wantCode: http.StatusOK,
		wantData: marchallObj(t, roster.Report{ClassesAdded: 2, StudentsAdded: 3, RowsSkipped: 1}),
	}
	checkCodeAndData(t, tt, rec)

	// a second pass over the same file adds nothing
	req, rec = newImportRequest(t, path, adminToken, "roster.csv", csv)
	app.ServeHTTP(rec, req)
	tt.wantData = marchallObj(t, roster.Report{RowsSkipped: 4})
	checkCodeAndData(t, tt, rec)

	// the synthesized classes are queryable
	req2, rec2 := newAuthRequest(http.MethodGet, "/v1/schools/"+sch.ID+"/classes", adminToken)
	app.ServeHTTP(rec2, req2)
	var classes []roster.ClassGroup
	if err := json.Unmarshal(rec2.Body.Bytes(), &classes); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(classes) != 2 {
		t.Fatalf("classes = %d; want 2", len(classes))
	}

	// missing file part
	req, rec = newAuthRequest(http.MethodPost, path, adminToken)
	app.ServeHTTP(rec, req)
	tt = httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"file": "a roster file is required"}),
	}
	checkCodeAndData(t, tt, rec)
}
