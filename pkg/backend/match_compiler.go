package backend

import (
	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

// entityToMatch 把抽象实体编译为一条或多条协议层匹配规格
// 除不支持的实体类型外结果总是非空，返回前一定经过配置的后处理钩子
func (b *Backend) entityToMatch(entity *types.Entity) []*openflow.Match {
	var matches []*openflow.Match

	switch {
	case entity == nil:
		// 外部规则管理器送来的规则可能没带实体，按不支持处理而不是崩溃
		logrus.Error("Rule without entity in match compilation")
		b.metrics.IncrementUnsupportedEntities()
	case entity.Type == types.EntityConnection && entity.Conn != nil:
		// 连接实体产生正反两个方向的五元组匹配
		matches = []*openflow.Match{
			connMatch(entity.Conn, false),
			connMatch(entity.Conn, true),
		}
	case entity.Type == types.EntityMAC && entity.MAC != nil:
		// 硬件地址实体分别按源和目的各产生一条匹配
		matches = []*openflow.Match{
			{MacSrc: entity.MAC},
			{MacDst: entity.MAC},
		}
	case entity.Type == types.EntityAddress && entity.Net != nil:
		// 网段实体分别按源和目的各产生一条匹配，以太网类型由地址族决定
		ethType := etherTypeOfNet(entity.Net)
		matches = []*openflow.Match{
			{EthType: openflow.EthTypePtr(ethType), IPSrc: entity.Net},
			{EthType: openflow.EthTypePtr(ethType), IPDst: entity.Net},
		}
	case entity.Type == types.EntityFlow && entity.Flow != nil:
		matches = []*openflow.Match{flowMatch(entity.Flow)}
	default:
		// 不支持的实体类型或载荷缺失：记录错误后继续，返回经钩子处理的空结果
		logrus.Errorf("Unsupported entity type %d in match compilation", entity.Type)
		b.metrics.IncrementUnsupportedEntities()
	}

	if b.cfg.MatchHook != nil {
		matches = b.cfg.MatchHook(matches)
	}
	return matches
}

// connMatch 构造连接五元组匹配，reverse为真时交换源目的
func connMatch(conn *types.Connection, reverse bool) *openflow.Match {
	srcHost, srcPort := conn.OrigHost, conn.OrigPort
	dstHost, dstPort := conn.RespHost, conn.RespPort
	if reverse {
		srcHost, srcPort, dstHost, dstPort = dstHost, dstPort, srcHost, srcPort
	}

	return &openflow.Match{
		EthType: openflow.EthTypePtr(etherTypeOfIP(srcHost)),
		IPProto: openflow.IPProtoPtr(ipProtoOfPort(srcPort)),
		IPSrc:   hostNet(srcHost),
		TPSrc:   openflow.PortPtr(srcPort.Number),
		IPDst:   hostNet(dstHost),
		TPDst:   openflow.PortPtr(dstPort.Number),
	}
}

// flowMatch 从流模板逐字段构造单条匹配，缺省字段保持通配
func flowMatch(flow *types.FlowTemplate) *openflow.Match {
	m := &openflow.Match{}

	if flow.MacSrc != nil {
		m.MacSrc = *flow.MacSrc
	}
	if flow.MacDst != nil {
		m.MacDst = *flow.MacDst
	}
	if flow.IPSrc != nil {
		m.EthType = openflow.EthTypePtr(etherTypeOfNet(flow.IPSrc))
		m.IPSrc = flow.IPSrc
	}
	if flow.IPDst != nil {
		m.EthType = openflow.EthTypePtr(etherTypeOfNet(flow.IPDst))
		m.IPDst = flow.IPDst
	}
	if flow.PortSrc != nil {
		m.IPProto = openflow.IPProtoPtr(ipProtoOfPort(*flow.PortSrc))
		m.TPSrc = openflow.PortPtr(flow.PortSrc.Number)
	}
	if flow.PortDst != nil {
		m.IPProto = openflow.IPProtoPtr(ipProtoOfPort(*flow.PortDst))
		m.TPDst = openflow.PortPtr(flow.PortDst.Number)
	}
	return m
}
