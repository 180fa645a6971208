package backend

import (
	"net"

	"github.com/gopacket/gopacket/layers"

	"github.com/peter992013/bro/pkg/types"
)

// etherTypeOfNet 根据网段的地址族得到以太网类型
func etherTypeOfNet(n *net.IPNet) layers.EthernetType {
	if n.IP.To4() == nil {
		return layers.EthernetTypeIPv6
	}
	return layers.EthernetTypeIPv4
}

// etherTypeOfIP 根据主机地址的地址族得到以太网类型
func etherTypeOfIP(ip net.IP) layers.EthernetType {
	if ip.To4() == nil {
		return layers.EthernetTypeIPv6
	}
	return layers.EthernetTypeIPv4
}

// ipProtoOfPort 根据端口的协议标签得到IP协议号
// 未知标签默认按TCP处理，没有错误路径
func ipProtoOfPort(p types.Port) layers.IPProtocol {
	switch p.Proto {
	case types.ProtoUDP:
		return layers.IPProtocolUDP
	case types.ProtoICMP:
		return layers.IPProtocolICMPv4
	default:
		return layers.IPProtocolTCP
	}
}

// hostNet 把主机地址转成全掩码网段，便于填充匹配规格的网络地址字段
func hostNet(ip net.IP) *net.IPNet {
	if v4 := ip.To4(); v4 != nil {
		return &net.IPNet{IP: v4, Mask: net.CIDRMask(32, 32)}
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}
}
