package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	. "github.com/trezcool/mahudhurio/apps/api/echo"
	"github.com/trezcool/mahudhurio/core/staff"
	"github.com/trezcool/mahudhurio/tests"
)

func Test_staffApi_login(t *testing.T) {
	app := setup(t)
	path := "/v1/staff/login"

	testutil.CreateStaff(t, stfRepo, "Active Teacher", "teacher", "teacher@test.cd", "pa$$word!", staff.TeacherRoles, true)
	testutil.CreateStaff(t, stfRepo, "Gone Teacher", "gone", "gone@test.cd", "pa$$word!", staff.TeacherRoles, false)

	tests := []httpTest{
		{
			name:     "empty body",
			body:     []byte("{}"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": "this field is required", "password": "this field is required"}),
		},
		{
			name:     "unknown account",
			body:     marchallObj(t, LoginRequest{Username: "nobody", Password: "pa$$word!"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     marchallObj(t, LoginRequest{Username: "teacher", Password: "nope"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marchallObj(t, LoginRequest{Username: "gone", Password: "pa$$word!"}),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("login ok", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, marchallObj(t, LoginRequest{Username: "teacher", Password: "pa$$word!"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if resp.Token == "" {
			t.Error("expected a token")
		}
	})

	t.Run("email works as username", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, path, marchallObj(t, LoginRequest{Username: "teacher@test.cd", Password: "pa$$word!"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
	})
}

func Test_staffApi_query(t *testing.T) {
	app := setup(t)
	path := "/v1/staff"

	admin := testutil.CreateStaff(t, stfRepo, "Admin", "admin1", "admin@test.cd", "pa$$word!", staff.AdminRoles, true)
	teacher := testutil.CreateStaff(t, stfRepo, "Teacher", "teacher", "teacher@test.cd", "pa$$word!", staff.TeacherRoles, true)

	tests := []httpTest{
		{
			name:     "auth required",
			wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, errMissingToken),
		},
		{
			name:     "admin required",
			token:    getToken(t, teacher),
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, errForbidden),
		},
		{
			name:     "all members",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []staff.Staff{admin, teacher}),
		},
		{
			name:     "search matches name",
			path:     path + "?search=teach",
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []staff.Staff{teacher}),
		},
		{
			name:     "role filter",
			path:     path + "?role=" + staff.RoleAdminPrincipal,
			token:    getToken(t, admin),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, []staff.Staff{admin}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := path
			if tt.path != "" {
				p = tt.path
			}
			req, rec := newAuthRequest(http.MethodGet, p, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_staffApi_create(t *testing.T) {
	app := setup(t)
	path := "/v1/staff/register"

	admin := testutil.CreateStaff(t, stfRepo, "Admin", "admin1", "admin@test.cd", "pa$$word!", staff.AdminRoles, true)
	teacher := testutil.CreateStaff(t, stfRepo, "Teacher", "teacher", "teacher@test.cd", "pa$$word!", staff.TeacherRoles, true)

	newStaff := staff.NewStaff{
		Name:            "New Teacher",
		Username:        "newteacher",
		Email:           "new@test.cd",
		Password:        "V3ry-S3cret!",
		PasswordConfirm: "V3ry-S3cret!",
		Roles:           staff.TeacherRoles,
	}

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, teacher), marchallObj(t, newStaff))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)}, rec)
	})

	t.Run("create ok", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), marchallObj(t, newStaff))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var created staff.Staff
		if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
			t.Fatalf("unmarshalling response failed: %v", err)
		}
		if created.Username != "newteacher" || !created.IsTeacher() {
			t.Errorf("unexpected staff: %+v", created)
		}
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		dup := newStaff
		dup.Email = "other@test.cd"
		req, rec := newAuthRequest(http.MethodPost, path, getToken(t, admin), marchallObj(t, dup))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"username": staff.ErrUsernameExists.Error()}),
		}, rec)
	})
}

func Test_staffApi_queryRoles(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateStaff(t, stfRepo, "Admin", "admin1", "admin@test.cd", "pa$$word!", staff.AdminRoles, true)

	req, rec := newAuthRequest(http.MethodGet, "/v1/staff/roles", getToken(t, admin))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, staff.Roles)}, rec)
}
