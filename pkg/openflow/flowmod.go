package openflow

// FlowModCommand 表示flow_mod操作的命令类型
type FlowModCommand uint8

const (
	FlowAdd          FlowModCommand = iota // 添加流表项
	FlowDelete                             // 删除流表项
	FlowDeleteStrict                       // 严格删除流表项
)

// String 返回命令类型的字符串形式
func (c FlowModCommand) String() string {
	switch c {
	case FlowAdd:
		return "add"
	case FlowDelete:
		return "delete"
	case FlowDeleteStrict:
		return "delete_strict"
	default:
		return "unknown"
	}
}

// OpenFlow保留输出端口，见OpenFlow规范的OFPP_*常量
const (
	// PortNormal 表示交由交换机的正常二三层转发处理
	PortNormal uint32 = 0xfffffffa
	// PortController 表示上送控制器
	PortController uint32 = 0xfffffffd
)

// FlowMod 表示协议层面的流表修改指令
// Cookie由规则ID确定性编码，异步完成通知靠它回溯到原始规则
type FlowMod struct {
	Cookie      uint64         `json:"cookie"`
	Command     FlowModCommand `json:"command"`
	Priority    uint16         `json:"priority"`
	IdleTimeout uint16         `json:"idle_timeout"`
	HardTimeout uint16         `json:"hard_timeout"`
	TableID     *uint8         `json:"table_id,omitempty"`
	OutPorts    []uint32       `json:"out_ports,omitempty"` // 输出端口列表，空表示隐式丢弃
}
