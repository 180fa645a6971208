package types

import (
	"net"
	"time"
)

// RuleType 表示规则的处理动作
// 可能的动作：
// 1. RuleDrop: 丢弃匹配的流量
// 2. RuleWhitelist: 放行，交给交换机的正常二三层转发
// 3. RuleRedirect: 重定向到指定输出端口
type RuleType uint8

const (
	RuleDrop RuleType = iota + 1 // 丢弃流量
	RuleWhitelist                // 放行流量
	RuleRedirect                 // 重定向流量
)

// String 返回规则动作的字符串形式
func (t RuleType) String() string {
	switch t {
	case RuleDrop:
		return "drop"
	case RuleWhitelist:
		return "whitelist"
	case RuleRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// TargetType 表示规则的目标类别
type TargetType uint8

const (
	TargetMonitor TargetType = iota + 1 // 监控类规则
	TargetForward                       // 转发类规则
)

// String 返回目标类别的字符串形式
func (t TargetType) String() string {
	switch t {
	case TargetMonitor:
		return "monitor"
	case TargetForward:
		return "forward"
	default:
		return "unknown"
	}
}

// Rule 表示一条抽象的网络控制规则
// 规则由外部的规则管理器创建并持有，本模块只在安装/卸载期间引用它
type Rule struct {
	ID       uint32        `json:"id"`                 // 规则唯一ID，cookie由它确定性编码
	Target   TargetType    `json:"target"`             // 目标类别 monitor/forward
	Type     RuleType      `json:"type"`               // 规则动作 drop/whitelist/redirect
	Entity   *Entity       `json:"entity"`             // 规则匹配的网络实体
	Priority int32         `json:"priority"`           // 规则优先级，后端可叠加偏移
	Expire   time.Duration `json:"expire,omitempty"`   // 过期时间，0表示不过期
	OutPort  uint32        `json:"out_port,omitempty"` // 重定向输出端口，仅redirect有效
}

// TransportProto 表示端口携带的传输层协议标签
type TransportProto uint8

const (
	ProtoTCP  TransportProto = iota + 1 // TCP协议（默认）
	ProtoUDP                            // UDP协议
	ProtoICMP                           // ICMP协议
)

// String 返回传输层协议的字符串形式
func (p TransportProto) String() string {
	switch p {
	case ProtoUDP:
		return "udp"
	case ProtoICMP:
		return "icmp"
	default:
		return "tcp"
	}
}

// Port 表示带协议标签的传输层端口
type Port struct {
	Number uint16         `json:"number"` // 端口号
	Proto  TransportProto `json:"proto"`  // 传输层协议标签
}

// Connection 表示一条连接的五元组描述
type Connection struct {
	OrigHost net.IP `json:"orig_host"` // 发起方地址
	OrigPort Port   `json:"orig_port"` // 发起方端口
	RespHost net.IP `json:"resp_host"` // 响应方地址
	RespPort Port   `json:"resp_port"` // 响应方端口
}

// FlowTemplate 表示流模板实体，所有字段都是可选的
// 未设置的字段在编译出的匹配规格中保持通配
type FlowTemplate struct {
	MacSrc  *net.HardwareAddr `json:"mac_src,omitempty"`  // 源硬件地址
	MacDst  *net.HardwareAddr `json:"mac_dst,omitempty"`  // 目的硬件地址
	IPSrc   *net.IPNet        `json:"ip_src,omitempty"`   // 源网段
	IPDst   *net.IPNet        `json:"ip_dst,omitempty"`   // 目的网段
	PortSrc *Port             `json:"port_src,omitempty"` // 源端口
	PortDst *Port             `json:"port_dst,omitempty"` // 目的端口
}
