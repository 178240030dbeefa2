package tree

import "go-rbacadmin/internal/pkg/errs"

// Mode 列表接口的输出形态
type Mode int

const (
	ModeFull           Mode = 1 // 管理页完整树
	ModeOptions        Mode = 2 // 选择组件
	ModeEnabledOptions Mode = 3 // 仅启用节点的选择组件
)

func ParseMode(v int) (Mode, error) {
	switch Mode(v) {
	case ModeFull, ModeOptions, ModeEnabledOptions:
		return Mode(v), nil
	}
	return 0, errs.InvalidArgument("mode", "unsupported tree mode %d", v)
}

// OnlyEnabled 是否只取未禁用节点
func (m Mode) OnlyEnabled() bool { return m == ModeEnabledOptions }
