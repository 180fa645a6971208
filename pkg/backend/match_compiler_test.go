package backend

import (
	"net"
	"testing"

	"github.com/gopacket/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/peter992013/bro/pkg/openflow"
	"github.com/peter992013/bro/pkg/types"
)

func newTestBackend(cfg *Config) *Backend {
	return New(cfg, newFakeTransport(), newRecordingHandler())
}

// 测试连接实体编译为正反两个方向的五元组匹配
func TestEntityToMatchConnection(t *testing.T) {
	b := newTestBackend(&Config{})

	conn := &types.Connection{
		OrigHost: net.ParseIP("192.168.1.10"),
		OrigPort: types.Port{Number: 1234, Proto: types.ProtoTCP},
		RespHost: net.ParseIP("10.0.0.5"),
		RespPort: types.Port{Number: 80, Proto: types.ProtoTCP},
	}
	matches := b.entityToMatch(types.NewConnectionEntity(conn))
	require.Len(t, matches, 2)

	forward, reverse := matches[0], matches[1]

	// 正向匹配
	assert.Equal(t, layers.EthernetTypeIPv4, *forward.EthType)
	assert.Equal(t, layers.IPProtocolTCP, *forward.IPProto)
	assert.Equal(t, "192.168.1.10/32", forward.IPSrc.String())
	assert.Equal(t, uint16(1234), *forward.TPSrc)
	assert.Equal(t, "10.0.0.5/32", forward.IPDst.String())
	assert.Equal(t, uint16(80), *forward.TPDst)

	// 反向匹配是正向的源目的互换
	assert.Equal(t, forward.IPSrc.String(), reverse.IPDst.String())
	assert.Equal(t, forward.IPDst.String(), reverse.IPSrc.String())
	assert.Equal(t, *forward.TPSrc, *reverse.TPDst)
	assert.Equal(t, *forward.TPDst, *reverse.TPSrc)
}

// 测试硬件地址实体编译为源和目的各一条匹配
func TestEntityToMatchMAC(t *testing.T) {
	b := newTestBackend(&Config{})

	mac, err := net.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)

	matches := b.entityToMatch(types.NewMACEntity(mac))
	require.Len(t, matches, 2)
	assert.Equal(t, mac, matches[0].MacSrc)
	assert.Nil(t, matches[0].MacDst)
	assert.Equal(t, mac, matches[1].MacDst)
	assert.Nil(t, matches[1].MacSrc)
}

// 测试网段实体的地址族分类
func TestEntityToMatchAddress(t *testing.T) {
	b := newTestBackend(&Config{})

	_, v4net, err := net.ParseCIDR("10.0.0.0/24")
	require.NoError(t, err)
	matches := b.entityToMatch(types.NewAddressEntity(v4net))
	require.Len(t, matches, 2)
	assert.Equal(t, layers.EthernetTypeIPv4, *matches[0].EthType)
	assert.Equal(t, v4net, matches[0].IPSrc)
	assert.Nil(t, matches[0].IPDst)
	assert.Equal(t, layers.EthernetTypeIPv4, *matches[1].EthType)
	assert.Equal(t, v4net, matches[1].IPDst)
	assert.Nil(t, matches[1].IPSrc)

	// IPv6网段得到IPv6以太网类型
	_, v6net, err := net.ParseCIDR("2001:db8::/48")
	require.NoError(t, err)
	matches = b.entityToMatch(types.NewAddressEntity(v6net))
	require.Len(t, matches, 2)
	assert.Equal(t, layers.EthernetTypeIPv6, *matches[0].EthType)
	assert.Equal(t, layers.EthernetTypeIPv6, *matches[1].EthType)
}

// 测试空流模板编译为一条全通配匹配
func TestEntityToMatchEmptyFlow(t *testing.T) {
	b := newTestBackend(&Config{})

	matches := b.entityToMatch(types.NewFlowEntity(&types.FlowTemplate{}))
	require.Len(t, matches, 1)
	assert.True(t, matches[0].IsWildcard())
}

// 测试流模板只按存在的字段构造匹配
func TestEntityToMatchFlowFields(t *testing.T) {
	b := newTestBackend(&Config{})

	_, subnet, err := net.ParseCIDR("172.16.0.0/16")
	require.NoError(t, err)
	dstPort := types.Port{Number: 53, Proto: types.ProtoUDP}

	matches := b.entityToMatch(types.NewFlowEntity(&types.FlowTemplate{
		IPDst:   subnet,
		PortDst: &dstPort,
	}))
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, layers.EthernetTypeIPv4, *m.EthType)
	assert.Equal(t, subnet, m.IPDst)
	assert.Equal(t, layers.IPProtocolUDP, *m.IPProto)
	assert.Equal(t, uint16(53), *m.TPDst)
	// 未出现在模板里的字段保持通配
	assert.Nil(t, m.IPSrc)
	assert.Nil(t, m.TPSrc)
	assert.Nil(t, m.MacSrc)
	assert.Nil(t, m.MacDst)
}

// 测试不支持的实体类型返回空结果且不中断处理
func TestEntityToMatchUnsupported(t *testing.T) {
	b := newTestBackend(&Config{})

	matches := b.entityToMatch(&types.Entity{Type: types.EntityType(99)})
	assert.Empty(t, matches)
	assert.Equal(t, uint64(1), b.metrics.UnsupportedEntities)
}

// 测试缺失实体或载荷的畸形规则走不支持路径，不会让进程崩溃
func TestEntityToMatchMalformed(t *testing.T) {
	b := newTestBackend(&Config{})

	cases := []*types.Entity{
		nil,
		{Type: types.EntityConnection}, // 载荷缺失
		{Type: types.EntityMAC},
		{Type: types.EntityAddress},
		{Type: types.EntityFlow},
	}
	for _, entity := range cases {
		assert.Empty(t, b.entityToMatch(entity))
	}
	assert.Equal(t, uint64(len(cases)), b.metrics.UnsupportedEntities)
}

// 测试编译结果一定经过配置的后处理钩子
func TestEntityToMatchHook(t *testing.T) {
	marker := &openflow.Match{TPSrc: openflow.PortPtr(9999)}
	b := newTestBackend(&Config{
		MatchHook: func(matches []*openflow.Match) []*openflow.Match {
			return append(matches, marker)
		},
	})

	mac, err := net.ParseMAC("00:11:22:33:44:55")
	require.NoError(t, err)
	matches := b.entityToMatch(types.NewMACEntity(mac))
	require.Len(t, matches, 3)
	assert.Same(t, marker, matches[2])

	// 不支持的实体类型也要过钩子
	matches = b.entityToMatch(&types.Entity{Type: types.EntityType(99)})
	require.Len(t, matches, 1)
	assert.Same(t, marker, matches[0])
}
