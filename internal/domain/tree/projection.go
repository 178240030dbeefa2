package tree

import "go-rbacadmin/internal/domain/model"

type MenuNode struct {
	model.Menu
	Children []MenuNode `json:"children"`
}

type DepartmentNode struct {
	model.Department
	Children []DepartmentNode `json:"children"`
}

type OptionNode struct {
	Value    int64        `json:"value"`
	Label    string       `json:"label"`
	Order    int          `json:"order"`
	Children []OptionNode `json:"children"`
}

type RouterMeta struct {
	Title      string `json:"title"`
	Icon       string `json:"icon"`
	HideInMenu bool   `json:"hideInMenu"`
	AffixTab   bool   `json:"affixTab"`
	Order      int    `json:"order"`
	KeepAlive  bool   `json:"keepAlive"`
}

type RouterNode struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Path      string       `json:"path"`
	Component string       `json:"component"`
	Redirect  string       `json:"redirect"`
	Index     int          `json:"index"`
	Meta      RouterMeta   `json:"meta"`
	Children  []RouterNode `json:"children"`
}

func FullMenus(menus []model.Menu) ([]MenuNode, error) {
	return Build(menus, func(m model.Menu, ch []MenuNode) MenuNode {
		return MenuNode{Menu: m, Children: ch}
	})
}

func MenuOptions(menus []model.Menu) ([]OptionNode, error) {
	return Build(menus, func(m model.Menu, ch []OptionNode) OptionNode {
		return OptionNode{Value: m.ID, Label: m.Title, Order: m.Order, Children: ch}
	})
}

// Routers 前端动态路由
func Routers(menus []model.Menu) ([]RouterNode, error) {
	return Build(menus, func(m model.Menu, ch []RouterNode) RouterNode {
		return RouterNode{
			ID:        m.ID,
			Name:      m.Name,
			Path:      m.Path,
			Component: m.Component,
			Redirect:  m.Redirect,
			Index:     m.Order,
			Meta: RouterMeta{
				Title:      m.Title,
				Icon:       m.Icon,
				HideInMenu: m.Hidden,
				AffixTab:   m.Affix,
				Order:      m.Order,
				KeepAlive:  !m.NoCache,
			},
			Children: ch,
		}
	})
}

func FullDepartments(depts []model.Department) ([]DepartmentNode, error) {
	return Build(depts, func(d model.Department, ch []DepartmentNode) DepartmentNode {
		return DepartmentNode{Department: d, Children: ch}
	})
}

func DepartmentOptions(depts []model.Department) ([]OptionNode, error) {
	return Build(depts, func(d model.Department, ch []OptionNode) OptionNode {
		return OptionNode{Value: d.ID, Label: d.Name, Order: d.Order, Children: ch}
	})
}
