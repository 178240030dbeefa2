package service

import (
	"context"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/repository/dao"
	redisrepo "go-rbacadmin/internal/repository/redis"
	"go-rbacadmin/internal/security/jwt"
	"go-rbacadmin/pkg/crypto"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	PlatformAdmin = "0"
	PlatformApp   = "1"

	LoginMethodPassword = "0"
)

// AuthService 登录 / 注册 / 会话。token 的 jti 写入 redis，登出即删除
type AuthService struct {
	Users     *dao.UserDAO
	UserSvc   *UserService
	JWT       *jwt.Manager
	Redis     *redisrepo.Client
	JTIPrefix string
	// StaffOnly 为 true 时后台平台只允许员工登录
	StaffOnly bool
	Log       *logging.Logger
}

func NewAuthService(u *dao.UserDAO, us *UserService, j *jwt.Manager, r *redisrepo.Client, jtiPrefix string, staffOnly bool, l *logging.Logger) *AuthService {
	return &AuthService{Users: u, UserSvc: us, JWT: j, Redis: r, JTIPrefix: jtiPrefix, StaffOnly: staffOnly, Log: l}
}

func (s *AuthService) tracer() trace.Tracer { return otel.Tracer("service.auth") }

type LoginParams struct {
	Telephone string `json:"telephone" binding:"required"`
	Password  string `json:"password" binding:"required"`
	Method    string `json:"method"`
	Platform  string `json:"platform"`
}

type LoginResult struct {
	AccessToken     string    `json:"access_token"`
	TokenType       string    `json:"token_type"`
	User            *UserInfo `json:"user"`
	IsResetPassword bool      `json:"is_reset_password"`
}

func (s *AuthService) Login(ctx context.Context, p LoginParams, ip string) (*LoginResult, error) {
	ctx, span := s.tracer().Start(ctx, "AuthService.Login")
	defer span.End()
	if p.Method == "" {
		p.Method = LoginMethodPassword
	}
	if p.Platform == "" {
		p.Platform = PlatformAdmin
	}
	if p.Method != LoginMethodPassword {
		return nil, errs.InvalidArgument("method", "login method %q not supported", p.Method)
	}
	if p.Platform != PlatformAdmin && p.Platform != PlatformApp {
		return nil, errs.InvalidArgument("platform", "platform %q not supported", p.Platform)
	}
	u, err := s.Users.FindByTelephone(ctx, p.Telephone)
	if err != nil {
		return nil, err
	}
	if u == nil || !crypto.VerifyPassword(p.Password, u.Password) {
		s.Log.WithContext(ctx).Info("login_failed", zap.String("reason", "credentials"), zap.String("ip", ip))
		return nil, errs.Unauthorized("incorrect telephone or password")
	}
	if u.Disabled {
		return nil, errs.Unauthorized("account frozen")
	}
	if s.StaffOnly && p.Platform == PlatformAdmin && !u.IsStaff {
		return nil, errs.Forbidden("only staff can sign in to the admin panel")
	}
	jti := uuid.NewString()
	token, err := s.JWT.Generate(u.ID, jti)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "sign token")
	}
	if err := s.Redis.SetTTL(ctx, s.JTIPrefix+jti, u.ID, s.JWT.ExpireDuration()); err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "store session")
	}
	if err := s.UserSvc.RecordLogin(ctx, u.ID, ip); err != nil {
		s.Log.WithContext(ctx).Warn("login_record_failed", zap.Int64("uid", u.ID), zap.Error(err))
	}
	info, err := s.UserSvc.Info(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	s.Log.WithContext(ctx).Info("login_success", zap.Int64("uid", u.ID), zap.String("ip", ip))
	return &LoginResult{AccessToken: token, TokenType: "bearer", User: info, IsResetPassword: u.IsResetPassword}, nil
}

type RegisterParams struct {
	Name        string `json:"name" binding:"required,max=50"`
	Telephone   string `json:"telephone" binding:"required,len=11,numeric"`
	Password    string `json:"password" binding:"required"`
	PasswordTwo string `json:"password_two" binding:"required"`
}

// Register 自助注册，不赋予员工身份
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*UserInfo, error) {
	ctx, span := s.tracer().Start(ctx, "AuthService.Register")
	defer span.End()
	if err := checkNewPassword(p.Password, p.PasswordTwo); err != nil {
		return nil, err
	}
	u, err := s.UserSvc.Create(ctx, CreateUserParams{Telephone: p.Telephone, Password: p.Password, Name: p.Name, IsStaff: false})
	if err != nil {
		return nil, err
	}
	return s.UserSvc.Info(ctx, u.ID)
}

// Logout 删除 jti，token 立即失效
func (s *AuthService) Logout(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	return s.Redis.Del(ctx, s.JTIPrefix+jti)
}

// Authenticate 校验 token 签名、有效期、会话与账号状态
func (s *AuthService) Authenticate(ctx context.Context, token string) (*jwt.Claims, error) {
	ctx, span := s.tracer().Start(ctx, "AuthService.Authenticate")
	defer span.End()
	claims, err := s.JWT.Parse(token)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnauthorized, err, "invalid token")
	}
	ok, err := s.Redis.Exists(ctx, s.JTIPrefix+claims.ID)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "check session")
	}
	if !ok {
		return nil, errs.Unauthorized("session revoked")
	}
	u, err := s.Users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.Unauthorized("user no longer exists")
	}
	if u.Disabled {
		return nil, errs.Unauthorized("account frozen")
	}
	return claims, nil
}
