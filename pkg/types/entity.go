package types

import "net"

// EntityType 表示规则匹配的实体类型
type EntityType uint8

const (
	EntityConnection EntityType = iota + 1 // 连接五元组
	EntityMAC                              // 硬件地址
	EntityAddress                          // IP网段
	EntityFlow                             // 流模板
)

// String 返回实体类型的字符串形式
func (t EntityType) String() string {
	switch t {
	case EntityConnection:
		return "connection"
	case EntityMAC:
		return "mac"
	case EntityAddress:
		return "address"
	case EntityFlow:
		return "flow"
	default:
		return "unknown"
	}
}

// Entity 表示规则匹配的网络实体，是一个带标签的联合体
// Type字段决定哪个载荷字段有效，实体归属于引用它的Rule且不可变
type Entity struct {
	Type EntityType       `json:"type"`
	Conn *Connection      `json:"conn,omitempty"` // Type == EntityConnection
	MAC  net.HardwareAddr `json:"mac,omitempty"`  // Type == EntityMAC
	Net  *net.IPNet       `json:"net,omitempty"`  // Type == EntityAddress
	Flow *FlowTemplate    `json:"flow,omitempty"` // Type == EntityFlow
}

// NewConnectionEntity 创建连接实体
func NewConnectionEntity(conn *Connection) *Entity {
	return &Entity{Type: EntityConnection, Conn: conn}
}

// NewMACEntity 创建硬件地址实体
func NewMACEntity(mac net.HardwareAddr) *Entity {
	return &Entity{Type: EntityMAC, MAC: mac}
}

// NewAddressEntity 创建网段实体
func NewAddressEntity(n *net.IPNet) *Entity {
	return &Entity{Type: EntityAddress, Net: n}
}

// NewFlowEntity 创建流模板实体
func NewFlowEntity(flow *FlowTemplate) *Entity {
	return &Entity{Type: EntityFlow, Flow: flow}
}
