package service

import (
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/testutil"
	"go-rbacadmin/pkg/crypto"

	"github.com/stretchr/testify/suite"
)

type userSuite struct{ serviceSuite }

func TestUserService(t *testing.T) { suite.Run(t, new(userSuite)) }

func (s *userSuite) TestCreateDefaultPassword() {
	u, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "13812345678", Name: "张三"})
	s.Require().NoError(err)
	s.True(crypto.VerifyPassword("123456", u.Password))

	s.users.DefaultPassword = PasswordFromTelephone
	u, err = s.users.Create(s.ctx, CreateUserParams{Telephone: "13912345678", Name: "李四"})
	s.Require().NoError(err)
	s.True(crypto.VerifyPassword("345678", u.Password))

	_, err = s.users.Create(s.ctx, CreateUserParams{Telephone: "13912345678", Name: "dup"})
	s.Equal(errs.KindConflict, errs.KindOf(err))
	s.Equal("telephone", errs.FieldOf(err))
}

func (s *userSuite) TestUpdateTelephoneConflictAndPassword() {
	a, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "13800000031", Name: "a", Password: "Abc12345"})
	s.Require().NoError(err)
	_, err = s.users.Create(s.ctx, CreateUserParams{Telephone: "13800000032", Name: "b"})
	s.Require().NoError(err)

	err = s.users.Update(s.ctx, a.ID, UpdateUserParams{Telephone: testutil.Ptr("13800000032")})
	s.Equal(errs.KindConflict, errs.KindOf(err))

	s.Require().NoError(s.users.Update(s.ctx, a.ID, UpdateUserParams{Telephone: testutil.Ptr("13800000031"), Nickname: testutil.Ptr("aa")}))
	got, err := s.users.Users.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("aa", got.Nickname)
	s.True(crypto.VerifyPassword("Abc12345", got.Password), "password kept when omitted")

	s.Require().NoError(s.users.Update(s.ctx, a.ID, UpdateUserParams{Password: testutil.Ptr("New12345")}))
	got, err = s.users.Users.FindByID(s.ctx, a.ID)
	s.Require().NoError(err)
	s.True(crypto.VerifyPassword("New12345", got.Password))
}

func (s *userSuite) TestRolesReplacedAndInfo() {
	r1 := s.role("r1", false)
	r2 := s.role("r2", true)
	dept := testutil.MustDepartment(s.T(), s.db, model.Department{Name: "研发"})
	u, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "13800000033", Name: "u", RoleIDs: []int64{r1.ID}, DeptIDs: []int64{dept.ID}})
	s.Require().NoError(err)

	info, err := s.users.Info(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(info.IsAdmin)
	s.Len(info.Departments, 1)

	ids := []int64{r2.ID}
	s.Require().NoError(s.users.Update(s.ctx, u.ID, UpdateUserParams{RoleIDs: &ids}))
	info, err = s.users.Info(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(info.IsAdmin)
	s.Require().Len(info.Roles, 1)
	s.Equal("r2", info.Roles[0].RoleKey)

	bad := []int64{r1.ID, 4040}
	err = s.users.Update(s.ctx, u.ID, UpdateUserParams{RoleIDs: &bad, Name: testutil.Ptr("changed")})
	s.Equal(errs.KindNotFound, errs.KindOf(err))
	info, err = s.users.Info(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("u", info.Name, "whole update rolled back")
}

func (s *userSuite) TestListOrderAndFilters() {
	for i, n := range []string{"carol", "alice", "bob"} {
		_, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "1380000004" + string(rune('0'+i)), Name: n, IsStaff: n != "bob"})
		s.Require().NoError(err)
	}
	res, err := s.users.List(s.ctx, ListUsersParams{OrderBy: "name", Order: "asc"})
	s.Require().NoError(err)
	s.EqualValues(3, res.Total)
	s.Equal("alice", res.Items[0].Name)
	s.NotNil(res.Items[0].Roles)

	res, err = s.users.List(s.ctx, ListUsersParams{IsStaff: testutil.Ptr(false)})
	s.Require().NoError(err)
	s.Require().Len(res.Items, 1)
	s.Equal("bob", res.Items[0].Name)

	_, err = s.users.List(s.ctx, ListUsersParams{OrderBy: "password"})
	s.Equal(errs.KindInvalidArgument, errs.KindOf(err))
}

func (s *userSuite) TestDelete() {
	r := s.role("r", false)
	u, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "13800000050", Name: "u", RoleIDs: []int64{r.ID}})
	s.Require().NoError(err)

	err = s.users.Delete(s.ctx, u.ID, u.ID)
	s.Equal(errs.KindForbidden, errs.KindOf(err))

	s.Require().NoError(s.users.Delete(s.ctx, 999, u.ID))
	var n int64
	s.Require().NoError(s.db.Model(&model.UserRole{}).Where("user_id = ?", u.ID).Count(&n).Error)
	s.Zero(n)
	err = s.users.Delete(s.ctx, 999, u.ID)
	s.Equal(errs.KindNotFound, errs.KindOf(err))
}

func (s *userSuite) TestResetOwnPassword() {
	u, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "13800000060", Name: "u"})
	s.Require().NoError(err)

	err = s.users.ResetOwnPassword(s.ctx, u.ID, ResetPasswordParams{Password: "Abc12345", PasswordTwo: "Abc12346"})
	s.Equal("password_two", errs.FieldOf(err))
	err = s.users.ResetOwnPassword(s.ctx, u.ID, ResetPasswordParams{Password: "abcdefgh", PasswordTwo: "abcdefgh"})
	s.Equal(errs.KindInvalidArgument, errs.KindOf(err))
	s.Equal("password", errs.FieldOf(err))

	s.Require().NoError(s.users.ResetOwnPassword(s.ctx, u.ID, ResetPasswordParams{Password: "Abc12345", PasswordTwo: "Abc12345"}))
	got, err := s.users.Users.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(got.IsResetPassword)
	s.True(crypto.VerifyPassword("Abc12345", got.Password))
}
