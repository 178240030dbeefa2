package service

import (
	"context"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"
	redisrepo "go-rbacadmin/internal/repository/redis"
	"go-rbacadmin/internal/security/jwt"
	"go-rbacadmin/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

// serviceSuite 每个用例独立的 sqlite + miniredis
type serviceSuite struct {
	suite.Suite
	ctx   context.Context
	db    *gorm.DB
	mr    *miniredis.Miniredis
	cache *cache.LayeredCache

	perm  *PermissionService
	menus *MenuService
	depts *DepartmentService
	roles *RoleService
	users *UserService
	dicts *DictService
	auth  *AuthService
	seed  *SeedService
}

func (s *serviceSuite) SetupTest() {
	t := s.T()
	s.ctx = context.Background()
	s.db = testutil.NewDB(t)
	s.mr = miniredis.RunT(t)
	rc := redisrepo.New(redisrepo.Config{Addr: s.mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	s.cache = cache.NewLayered(cache.NewMemory(), cache.NewRedisAdapter(rc))
	lg := logging.Nop()

	menuDAO := dao.NewMenuDAO(s.db)
	userDAO := dao.NewUserDAO(s.db)
	assoc := dao.NewAssociationDAO(s.db)
	s.perm = NewPermissionService(userDAO, menuDAO, assoc, s.cache.Shared(), time.Minute, lg)
	s.menus = NewMenuService(s.db, menuDAO, assoc, s.perm, s.cache, time.Minute, lg)
	s.depts = NewDepartmentService(s.db, dao.NewDepartmentDAO(s.db), assoc, s.cache, time.Minute, lg)
	s.roles = NewRoleService(s.db, dao.NewRoleDAO(s.db), menuDAO, assoc, s.perm, lg)
	s.users = NewUserService(s.db, userDAO, assoc, s.perm, "123456", lg)
	s.dicts = NewDictService(s.db, dao.NewDictDAO(s.db), s.cache, time.Minute, lg)
	s.auth = NewAuthService(userDAO, s.users, jwt.NewManager("0123456789abcdef", 3600, "rbacadmin"), rc, "jwt:jti:", true, lg)
	s.seed = NewSeedService(s.db, lg)

	// 占住 ProtectedRoleID，用例里新建的角色都可修改
	protected := testutil.MustRole(t, s.db, model.Role{Name: "super", RoleKey: "super", IsAdmin: true})
	s.Require().Equal(ProtectedRoleID, protected.ID)
}

func (s *serviceSuite) menu(m model.Menu) model.Menu { return testutil.MustMenu(s.T(), s.db, m) }

func (s *serviceSuite) role(key string, admin bool, menus ...model.Menu) model.Role {
	r := testutil.MustRole(s.T(), s.db, model.Role{Name: key, RoleKey: key, IsAdmin: admin})
	for _, m := range menus {
		testutil.Link(s.T(), s.db, &model.RoleMenu{RoleID: r.ID, MenuID: m.ID})
	}
	return r
}

func (s *serviceSuite) user(tel string, roles ...model.Role) model.User {
	u := testutil.MustUser(s.T(), s.db, model.User{Telephone: tel, Name: "u" + tel[len(tel)-2:]})
	for _, r := range roles {
		testutil.Link(s.T(), s.db, &model.UserRole{UserID: u.ID, RoleID: r.ID})
	}
	return u
}
