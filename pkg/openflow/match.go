package openflow

import (
	"net"

	"github.com/gopacket/gopacket/layers"
)

// Match 表示协议层面的报文匹配规格
// 只包含本后端用到的OpenFlow匹配字段子集，nil表示该字段通配
type Match struct {
	EthType *layers.EthernetType `json:"eth_type,omitempty"` // 以太网类型
	MacSrc  net.HardwareAddr     `json:"mac_src,omitempty"`  // 源硬件地址
	MacDst  net.HardwareAddr     `json:"mac_dst,omitempty"`  // 目的硬件地址
	IPSrc   *net.IPNet           `json:"ip_src,omitempty"`   // 源网络地址
	IPDst   *net.IPNet           `json:"ip_dst,omitempty"`   // 目的网络地址
	IPProto *layers.IPProtocol   `json:"ip_proto,omitempty"` // IP协议号
	TPSrc   *uint16              `json:"tp_src,omitempty"`   // 传输层源端口
	TPDst   *uint16              `json:"tp_dst,omitempty"`   // 传输层目的端口
}

// IsWildcard 判断是否为全通配匹配（所有字段均未设置）
func (m *Match) IsWildcard() bool {
	return m.EthType == nil && m.MacSrc == nil && m.MacDst == nil &&
		m.IPSrc == nil && m.IPDst == nil && m.IPProto == nil &&
		m.TPSrc == nil && m.TPDst == nil
}

// EthTypePtr 返回以太网类型的指针，便于逐字段构造Match
func EthTypePtr(t layers.EthernetType) *layers.EthernetType {
	return &t
}

// IPProtoPtr 返回IP协议号的指针
func IPProtoPtr(p layers.IPProtocol) *layers.IPProtocol {
	return &p
}

// PortPtr 返回端口号的指针
func PortPtr(p uint16) *uint16 {
	return &p
}
