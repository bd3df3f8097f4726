package staff_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/staff"
	dummydb "github.com/trezcool/kelasi/storage/database/dummy"
	testutil "github.com/trezcool/kelasi/tests"
)

func setup(t *testing.T) (*staff.Service, staff.Repository) {
	t.Helper()
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	repo := dummydb.NewStaffRepository(db)
	return staff.NewService(repo), repo
}

func Test_Service_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	stf, err := svc.Create(ctx, staff.NewStaff{
		Name:     "  Jane Awa ",
		Email:    "Jane@Test.CD",
		Password: "LeP@ssw0rd",
		Roles:    []string{staff.RoleScheduler},
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if stf.Name != "Jane Awa" {
		t.Errorf("Name = %q; want %q", stf.Name, "Jane Awa")
	}
	if stf.Email != "jane@test.cd" {
		t.Errorf("Email = %q; want %q", stf.Email, "jane@test.cd")
	}
	if !stf.IsActive {
		t.Error("new staff should be active")
	}
	if err = stf.CheckPassword("LeP@ssw0rd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// duplicate email is a validation error
	_, err = svc.Create(ctx, staff.NewStaff{Name: "Clone", Email: "jane@test.cd", Password: "LeP@ssw0rd"})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Create() error = %v; want *core.ValidationError", err)
	}
}

func Test_Service_Authenticate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateStaff(t, repo, "Jane", "jane@test.cd", "LeP@ssw0rd", nil, true)
	testutil.CreateStaff(t, repo, "Gone", "gone@test.cd", "LeP@ssw0rd", nil, false)

	tests := []struct {
		name    string
		email   string
		pwd     string
		wantErr error
	}{
		{name: "unknown email", email: "who@test.cd", pwd: "LeP@ssw0rd", wantErr: staff.ErrNotFound},
		{name: "wrong password", email: "jane@test.cd", pwd: "nope", wantErr: staff.ErrNotFound},
		{name: "deactivated account", email: "gone@test.cd", pwd: "LeP@ssw0rd", wantErr: staff.ErrNotFound},
		{name: "ok", email: "jane@test.cd", pwd: "LeP@ssw0rd"},
		{name: "email is case-insensitive", email: "JANE@test.cd", pwd: "LeP@ssw0rd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stf, err := svc.Authenticate(ctx, tt.email, tt.pwd)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && stf.LastLogin.IsZero() {
				t.Error("Authenticate() did not stamp LastLogin")
			}
		})
	}
}

func Test_Service_SetPassword(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	stf := testutil.CreateStaff(t, repo, "Jane", "jane@test.cd", "0ldP@ssword", nil, true)

	if _, err := svc.SetPassword(ctx, "who@test.cd", "NewP@ssw0rd"); errors.Cause(err) != staff.ErrNotFound {
		t.Fatalf("SetPassword() error = %v, wantErr %v", err, staff.ErrNotFound)
	}

	before := time.Now().UTC()
	updated, err := svc.SetPassword(ctx, stf.Email, "NewP@ssw0rd")
	if err != nil {
		t.Fatalf("SetPassword() failed: %v", err)
	}
	if err = updated.CheckPassword("NewP@ssw0rd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if updated.UpdatedAt.Before(before.Truncate(time.Second)) {
		t.Errorf("UpdatedAt = %v; not refreshed", updated.UpdatedAt)
	}
}
