package service

import (
	"testing"

	"go-rbacadmin/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type authSuite struct{ serviceSuite }

func TestAuthService(t *testing.T) { suite.Run(t, new(authSuite)) }

func (s *authSuite) staff(tel string, disabled bool) {
	_, err := s.users.Create(s.ctx, CreateUserParams{Telephone: tel, Name: "staff", Password: "Abc12345", IsStaff: true, Disabled: disabled})
	s.Require().NoError(err)
}

func (s *authSuite) TestLoginStoresSession() {
	s.staff("13800000070", false)
	res, err := s.auth.Login(s.ctx, LoginParams{Telephone: "13800000070", Password: "Abc12345"}, "10.0.0.1")
	s.Require().NoError(err)
	s.Equal("bearer", res.TokenType)
	s.False(res.IsResetPassword)
	s.Equal("13800000070", res.User.Telephone)

	claims, err := s.auth.Authenticate(s.ctx, res.AccessToken)
	s.Require().NoError(err)
	s.Equal(res.User.ID, claims.UserID)
	s.True(s.mr.Exists("jwt:jti:" + claims.ID))
	ttl := s.mr.TTL("jwt:jti:" + claims.ID)
	s.Greater(ttl.Seconds(), 0.0)

	u, err := s.users.Users.FindByID(s.ctx, res.User.ID)
	s.Require().NoError(err)
	s.Equal("10.0.0.1", u.LastIP)
	s.NotNil(u.LastLoginAt)
}

func (s *authSuite) TestLoginFailures() {
	s.staff("13800000071", false)
	s.staff("13800000072", true)
	_, err := s.users.Create(s.ctx, CreateUserParams{Telephone: "13800000073", Name: "guest", Password: "Abc12345"})
	s.Require().NoError(err)

	cases := []struct {
		name string
		p    LoginParams
		kind errs.Kind
	}{
		{"wrong password", LoginParams{Telephone: "13800000071", Password: "nope"}, errs.KindUnauthorized},
		{"unknown user", LoginParams{Telephone: "13899999999", Password: "Abc12345"}, errs.KindUnauthorized},
		{"frozen", LoginParams{Telephone: "13800000072", Password: "Abc12345"}, errs.KindUnauthorized},
		{"non staff on admin", LoginParams{Telephone: "13800000073", Password: "Abc12345", Platform: PlatformAdmin}, errs.KindForbidden},
		{"bad method", LoginParams{Telephone: "13800000071", Password: "Abc12345", Method: "1"}, errs.KindInvalidArgument},
		{"bad platform", LoginParams{Telephone: "13800000071", Password: "Abc12345", Platform: "9"}, errs.KindInvalidArgument},
	}
	for _, tc := range cases {
		_, err := s.auth.Login(s.ctx, tc.p, "")
		s.Equal(tc.kind, errs.KindOf(err), tc.name)
	}

	_, err = s.auth.Login(s.ctx, LoginParams{Telephone: "13800000073", Password: "Abc12345", Platform: PlatformApp}, "")
	s.NoError(err, "app platform allows non staff")
}

func (s *authSuite) TestLogoutRevokes() {
	s.staff("13800000074", false)
	res, err := s.auth.Login(s.ctx, LoginParams{Telephone: "13800000074", Password: "Abc12345"}, "")
	s.Require().NoError(err)
	claims, err := s.auth.Authenticate(s.ctx, res.AccessToken)
	s.Require().NoError(err)

	s.Require().NoError(s.auth.Logout(s.ctx, claims.ID))
	_, err = s.auth.Authenticate(s.ctx, res.AccessToken)
	s.Equal(errs.KindUnauthorized, errs.KindOf(err))
}

func (s *authSuite) TestAuthenticateRejects() {
	_, err := s.auth.Authenticate(s.ctx, "garbage")
	s.Equal(errs.KindUnauthorized, errs.KindOf(err))

	s.staff("13800000075", false)
	res, err := s.auth.Login(s.ctx, LoginParams{Telephone: "13800000075", Password: "Abc12345"}, "")
	s.Require().NoError(err)
	s.Require().NoError(s.users.Update(s.ctx, res.User.ID, UpdateUserParams{Disabled: boolPtr(true)}))
	_, err = s.auth.Authenticate(s.ctx, res.AccessToken)
	s.Equal(errs.KindUnauthorized, errs.KindOf(err))
}

func (s *authSuite) TestRegister() {
	_, err := s.auth.Register(s.ctx, RegisterParams{Name: "n", Telephone: "13800000076", Password: "abc", PasswordTwo: "abc"})
	s.Equal(errs.KindInvalidArgument, errs.KindOf(err))

	info, err := s.auth.Register(s.ctx, RegisterParams{Name: "n", Telephone: "13800000076", Password: "Abc12345", PasswordTwo: "Abc12345"})
	s.Require().NoError(err)
	s.False(info.IsStaff)

	// 注册用户不能进后台
	_, err = s.auth.Login(s.ctx, LoginParams{Telephone: "13800000076", Password: "Abc12345"}, "")
	s.Equal(errs.KindForbidden, errs.KindOf(err))
}

func boolPtr(b bool) *bool { return &b }
