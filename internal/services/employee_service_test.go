package services

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/trattoria-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateEmployee(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEmployeeService(db).(*employeeService)
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, NewEmployee{
		Username:  "giulia",
		Password:  "s3cret",
		FirstName: "Giulia",
		Role:      models.RoleWaiter,
		Phone:     "555-0101",
	})
	require.NoError(t, err)
	require.NotNil(t, employee.User)
	assert.Equal(t, "giulia", employee.User.Username)
	assert.True(t, employee.User.CheckPassword("s3cret"))
	assert.Equal(t, "2026-03-02", time.Time(employee.HireDate).Format("2006-01-02"))

	_, err = svc.CreateEmployee(ctx, NewEmployee{Username: "giulia", Password: "x", Role: models.RoleWaiter})
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	_, err = svc.CreateEmployee(ctx, NewEmployee{Username: "chef", Password: "x", Role: "chef"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.CreateEmployee(ctx, NewEmployee{Username: "", Password: "x", Role: models.RoleWaiter})
	assert.ErrorIs(t, err, ErrMissingCredentials)

	employees, err := svc.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)
}

func TestUpdateEmployee(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEmployeeService(db)
	ctx := context.Background()

	employee, err := svc.CreateEmployee(ctx, NewEmployee{Username: "luca", Password: "old", Role: models.RoleWaiter})
	require.NoError(t, err)

	updated, err := svc.UpdateEmployee(ctx, employee.ID, EmployeeUpdate{
		Email:    ptr("luca@trattoria.test"),
		Role:     ptr(models.RoleAdministrator),
		Password: ptr("new"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, updated.Role)
	assert.Equal(t, "luca@trattoria.test", updated.User.Email)
	assert.True(t, updated.User.CheckPassword("new"))
	assert.False(t, updated.User.CheckPassword("old"))

	_, err = svc.UpdateEmployee(ctx, employee.ID, EmployeeUpdate{Role: ptr("owner")})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.UpdateEmployee(ctx, 999, EmployeeUpdate{})
	assert.ErrorIs(t, err, ErrEmployeeNotFound)
}

func TestDeleteEmployeeKeepsOrders(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	orders, _ := newTestOrderService(db)
	svc := NewEmployeeService(db)
	ctx := context.Background()

	order, err := orders.CreateOrder(ctx, actorFor(f.waiter), f.table1.ID, []OrderItem{{DishID: f.carbonara.ID, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteEmployee(ctx, f.waiter.Employee.ID))

	var users int64
	db.Model(&models.User{}).Where("id = ?", f.waiter.ID).Count(&users)
	assert.Zero(t, users)

	var kept models.Order
	require.NoError(t, db.First(&kept, order.ID).Error)
	assert.Nil(t, kept.WaiterID)

	assert.ErrorIs(t, svc.DeleteEmployee(ctx, f.waiter.Employee.ID), ErrEmployeeNotFound)
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	svc := NewUserService(db)
	ctx := context.Background()

	user, err := svc.Authenticate(ctx, "dilan", "dilan-pass")
	require.NoError(t, err)
	assert.Equal(t, f.waiter.ID, user.ID)
	assert.Equal(t, models.RoleWaiter, user.Role())

	_, err = svc.Authenticate(ctx, "dilan", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "dilan-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, " ", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	byID, err := svc.GetUserByID(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdministrator, byID.Role())

	_, err = svc.GetUserByID(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestCurrentRole(t *testing.T) {
	db := setupTestDB(t)
	f := seedFixture(t, db)
	users := NewUserService(db)
	employees := NewEmployeeService(db)
	ctx := context.Background()

	role, active, err := users.CurrentRole(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.True(t, active)
	assert.Equal(t, models.RoleAdministrator, role)

	_, err = employees.UpdateEmployee(ctx, f.admin.Employee.ID, EmployeeUpdate{Role: ptr(models.RoleWaiter)})
	require.NoError(t, err)
	role, _, err = users.CurrentRole(ctx, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleWaiter, role)

	require.NoError(t, employees.DeleteEmployee(ctx, f.waiter.Employee.ID))
	_, active, err = users.CurrentRole(ctx, f.waiter.ID)
	require.NoError(t, err)
	assert.False(t, active)
}
