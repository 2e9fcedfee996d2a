package crawler

import (
	"regexp"

	"nac_patrimony_crawler/internal/model"
	"nac_patrimony_crawler/internal/query"
)

// State 是加载状态机的状态
type State int

const (
	StateIdle State = iota
	StateLoading
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Machine 逐个推进标识列表：Idle -> Loading (-> Loading)* -> Done
// 任一时刻只有当前索引对应的页面处于加载中
type Machine struct {
	ids        []model.Identifier
	index      int
	state      State
	detailURL  string
	contextArg string
	expect     *regexp.Regexp
}

// NewMachine 创建状态机；expect 为加载完成地址必须匹配的模式
func NewMachine(ids []model.Identifier, detailURL, contextArg string, expect *regexp.Regexp) *Machine {
	return &Machine{
		ids:        ids,
		detailURL:  detailURL,
		contextArg: contextArg,
		expect:     expect,
	}
}

// Start 进入 Loading 并返回第一个目标地址；列表为空时直接进入 Done
func (m *Machine) Start() (string, bool) {
	if m.state != StateIdle {
		return "", false
	}
	if len(m.ids) == 0 {
		m.state = StateDone
		return "", false
	}
	m.state = StateLoading
	return m.Target(), true
}

// Target 返回当前标识的详情页地址
func (m *Machine) Target() string {
	if m.index >= len(m.ids) {
		return ""
	}
	return query.BuildDetailURL(m.detailURL, string(m.ids[m.index]), m.contextArg)
}

// Current 返回当前标识
func (m *Machine) Current() model.Identifier {
	if m.index >= len(m.ids) {
		return ""
	}
	return m.ids[m.index]
}

// Ready 判断一次加载完成事件是否有效：必须处于 Loading 且地址匹配详情页模式
func (m *Machine) Ready(loadedURL string) bool {
	if m.state != StateLoading {
		return false
	}
	return m.expect == nil || m.expect.MatchString(loadedURL)
}

// Advance 当前标识处理完毕后推进索引，返回下一个目标地址；
// 列表耗尽时进入 Done 并返回 false
func (m *Machine) Advance() (string, bool) {
	if m.state != StateLoading {
		return "", false
	}
	m.index++
	if m.index >= len(m.ids) {
		m.state = StateDone
		return "", false
	}
	return m.Target(), true
}

// State 返回当前状态
func (m *Machine) State() State { return m.state }

// Index 返回当前索引
func (m *Machine) Index() int { return m.index }

// Len 返回标识总数
func (m *Machine) Len() int { return len(m.ids) }
