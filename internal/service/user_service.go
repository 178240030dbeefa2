package service

import (
	"context"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/pkg/crypto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PasswordFromTelephone account.default_password 取该值时使用手机号后 6 位
const PasswordFromTelephone = "0"

// 允许排序的列
var userOrderColumns = map[string]struct{}{
	"id": {}, "created_at": {}, "updated_at": {}, "name": {}, "last_login_at": {},
}

type UserService struct {
	DB              *gorm.DB
	Users           *dao.UserDAO
	Assoc           *dao.AssociationDAO
	Perm            *PermissionService
	Log             *logging.Logger
	DefaultPassword string
}

func NewUserService(db *gorm.DB, u *dao.UserDAO, a *dao.AssociationDAO, p *PermissionService, defaultPassword string, l *logging.Logger) *UserService {
	return &UserService{DB: db, Users: u, Assoc: a, Perm: p, Log: l, DefaultPassword: defaultPassword}
}

func (s *UserService) tracer() trace.Tracer { return otel.Tracer("service.user") }

type RoleBrief struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	RoleKey string `json:"role_key"`
}

type UserItem struct {
	model.User
	Roles []RoleBrief `json:"roles"`
}

// UserInfo 当前用户详情
type UserInfo struct {
	model.User
	IsAdmin     bool               `json:"is_admin"`
	Roles       []RoleBrief        `json:"roles"`
	Departments []model.Department `json:"departments"`
}

func briefs(roles []model.Role) []RoleBrief {
	out := make([]RoleBrief, 0, len(roles))
	for _, r := range roles {
		out = append(out, RoleBrief{ID: r.ID, Name: r.Name, RoleKey: r.RoleKey})
	}
	return out
}

type ListUsersParams struct {
	Name      string `form:"name"`
	Telephone string `form:"telephone"`
	Disabled  *bool  `form:"disabled"`
	IsStaff   *bool  `form:"is_staff"`
	OrderBy   string `form:"order_by"`
	Order     string `form:"order" binding:"omitempty,oneof=asc desc"`
	PageParams
}

func (s *UserService) List(ctx context.Context, p ListUsersParams) (*ListResult[UserItem], error) {
	ctx, span := s.tracer().Start(ctx, "UserService.List")
	defer span.End()
	if p.OrderBy != "" {
		if _, ok := userOrderColumns[p.OrderBy]; !ok {
			return nil, errs.InvalidArgument("order_by", "cannot order by %q", p.OrderBy)
		}
	}
	users, total, err := s.Users.List(ctx, dao.UserFilter{
		Name: p.Name, Telephone: p.Telephone, Disabled: p.Disabled, IsStaff: p.IsStaff,
		OrderBy: p.OrderBy, Desc: p.Order == "desc", Page: p.toDAO(),
	})
	if err != nil {
		return nil, err
	}
	items := make([]UserItem, 0, len(users))
	for _, u := range users {
		items = append(items, UserItem{User: u, Roles: briefs(u.Roles)})
	}
	return &ListResult[UserItem]{Items: items, Total: total}, nil
}

func (s *UserService) Info(ctx context.Context, id int64) (*UserInfo, error) {
	ctx, span := s.tracer().Start(ctx, "UserService.Info")
	defer span.End()
	u, err := s.Users.FindWithGraph(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("user %d not found", id)
	}
	depts := u.Departments
	if depts == nil {
		depts = []model.Department{}
	}
	return &UserInfo{User: *u, IsAdmin: u.IsAdmin(), Roles: briefs(u.Roles), Departments: depts}, nil
}

// InitialPassword 管理员新建用户未给密码时使用
func (s *UserService) InitialPassword(telephone string) string {
	if s.DefaultPassword == PasswordFromTelephone && len(telephone) >= 6 {
		return telephone[len(telephone)-6:]
	}
	return s.DefaultPassword
}

type CreateUserParams struct {
	Telephone string  `json:"telephone" binding:"required,len=11,numeric"`
	Password  string  `json:"password" binding:"omitempty,max=64"`
	Name      string  `json:"name" binding:"required,max=50"`
	Nickname  string  `json:"nickname" binding:"max=50"`
	Gender    string  `json:"gender" binding:"max=8"`
	Avatar    string  `json:"avatar" binding:"max=500"`
	Disabled  bool    `json:"disabled"`
	IsStaff   bool    `json:"is_staff"`
	RoleIDs   []int64 `json:"role_ids"`
	DeptIDs   []int64 `json:"dept_ids"`
}

func (s *UserService) Create(ctx context.Context, p CreateUserParams) (*model.User, error) {
	ctx, span := s.tracer().Start(ctx, "UserService.Create")
	defer span.End()
	taken, err := s.Users.TelephoneTaken(ctx, p.Telephone, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.Conflict("telephone", "telephone %s already registered", p.Telephone)
	}
	plain := p.Password
	if plain == "" {
		plain = s.InitialPassword(p.Telephone)
	}
	hashed, err := crypto.HashPassword(plain)
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "hash password")
	}
	u := &model.User{
		Telephone: p.Telephone, Password: hashed, Name: p.Name, Nickname: p.Nickname,
		Gender: p.Gender, Avatar: p.Avatar, Disabled: p.Disabled, IsStaff: p.IsStaff,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Users.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		if err := s.Assoc.Set(ctx, tx, dao.UserRoles, u.ID, p.RoleIDs); err != nil {
			return err
		}
		return s.Assoc.Set(ctx, tx, dao.UserDepartments, u.ID, p.DeptIDs)
	})
	if err != nil {
		return nil, err
	}
	s.Log.WithContext(ctx).Info("user_created", zap.Int64("new_user_id", u.ID))
	return u, nil
}

// UpdateUserParams password 为空不修改
type UpdateUserParams struct {
	Telephone *string  `json:"telephone" binding:"omitempty,len=11,numeric"`
	Password  *string  `json:"password" binding:"omitempty,max=64"`
	Name      *string  `json:"name" binding:"omitempty,max=50"`
	Nickname  *string  `json:"nickname" binding:"omitempty,max=50"`
	Gender    *string  `json:"gender" binding:"omitempty,max=8"`
	Avatar    *string  `json:"avatar" binding:"omitempty,max=500"`
	Disabled  *bool    `json:"disabled"`
	IsStaff   *bool    `json:"is_staff"`
	RoleIDs   *[]int64 `json:"role_ids"`
	DeptIDs   *[]int64 `json:"dept_ids"`
}

func (p UpdateUserParams) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Telephone != nil {
		cols["telephone"] = *p.Telephone
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Nickname != nil {
		cols["nickname"] = *p.Nickname
	}
	if p.Gender != nil {
		cols["gender"] = *p.Gender
	}
	if p.Avatar != nil {
		cols["avatar"] = *p.Avatar
	}
	if p.Disabled != nil {
		cols["disabled"] = *p.Disabled
	}
	if p.IsStaff != nil {
		cols["is_staff"] = *p.IsStaff
	}
	return cols
}

func (s *UserService) Update(ctx context.Context, id int64, p UpdateUserParams) error {
	ctx, span := s.tracer().Start(ctx, "UserService.Update")
	defer span.End()
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return errs.NotFound("user %d not found", id)
	}
	if p.Telephone != nil && *p.Telephone != u.Telephone {
		taken, err := s.Users.TelephoneTaken(ctx, *p.Telephone, id)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("telephone", "telephone %s already registered", *p.Telephone)
		}
	}
	cols := p.columns()
	if p.Password != nil && *p.Password != "" {
		hashed, err := crypto.HashPassword(*p.Password)
		if err != nil {
			return errs.Wrap(errs.KindInternal, err, "hash password")
		}
		cols["password"] = hashed
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Users.WithTx(tx).Updates(ctx, id, cols); err != nil {
			return err
		}
		if p.RoleIDs != nil {
			if err := s.Assoc.Set(ctx, tx, dao.UserRoles, id, *p.RoleIDs); err != nil {
				return err
			}
		}
		if p.DeptIDs != nil {
			if err := s.Assoc.Set(ctx, tx, dao.UserDepartments, id, *p.DeptIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateUsers(ctx, "user", id)
	return nil
}

// Delete 不能删除自己；关联先清空再物理删除
func (s *UserService) Delete(ctx context.Context, operatorID, id int64) error {
	ctx, span := s.tracer().Start(ctx, "UserService.Delete")
	defer span.End()
	if operatorID == id {
		return errs.Forbidden("cannot delete the current account")
	}
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u == nil {
		return errs.NotFound("user %d not found", id)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Assoc.Clear(ctx, tx, dao.UserRoles, id); err != nil {
			return err
		}
		if err := s.Assoc.Clear(ctx, tx, dao.UserDepartments, id); err != nil {
			return err
		}
		return s.Users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateUsers(ctx, "user", id)
	s.Log.WithContext(ctx).Info("user_deleted", zap.Int64("deleted_user_id", id))
	return nil
}

type ResetPasswordParams struct {
	Password    string `json:"password" binding:"required"`
	PasswordTwo string `json:"password_two" binding:"required"`
}

// ResetOwnPassword 用户修改自己的密码，需满足强度规则
func (s *UserService) ResetOwnPassword(ctx context.Context, uid int64, p ResetPasswordParams) error {
	ctx, span := s.tracer().Start(ctx, "UserService.ResetOwnPassword")
	defer span.End()
	if err := checkNewPassword(p.Password, p.PasswordTwo); err != nil {
		return err
	}
	hashed, err := crypto.HashPassword(p.Password)
	if err != nil {
		return errs.Wrap(errs.KindInternal, err, "hash password")
	}
	return s.Users.UpdatePassword(ctx, uid, hashed, true)
}

func checkNewPassword(pwd, again string) error {
	if pwd != again {
		return errs.InvalidArgument("password_two", "passwords do not match")
	}
	if err := crypto.ValidatePasswordStrength(pwd); err != nil {
		return errs.InvalidArgument("password", "%s", err.Error())
	}
	return nil
}

// RecordLogin 登录成功后更新 last_ip / last_login_at
func (s *UserService) RecordLogin(ctx context.Context, id int64, ip string) error {
	return s.Users.UpdateLogin(ctx, id, ip, time.Now())
}

func (s *UserService) Count(ctx context.Context) (int64, error) { return s.Users.Count(ctx) }
