package rules

import (
	"fmt"
	"net"
	"time"

	"github.com/peter992013/bro/pkg/types"
)

// RuleSpec 表示一条规则的配置，可来自YAML规则文件或API的JSON请求体
type RuleSpec struct {
	ID       uint32     `yaml:"id" json:"id"`             // 规则ID
	Target   string     `yaml:"target" json:"target"`     // 目标类别 monitor/forward
	Type     string     `yaml:"type" json:"type"`         // 规则动作 drop/whitelist/redirect
	Priority int32      `yaml:"priority" json:"priority"` // 优先级
	Expire   float64    `yaml:"expire" json:"expire"`     // 过期时间（秒），0表示不过期
	OutPort  uint32     `yaml:"out_port" json:"out_port"` // 重定向输出端口
	Entity   EntitySpec `yaml:"entity" json:"entity"`     // 匹配实体
}

// EntitySpec 表示实体的配置
type EntitySpec struct {
	Type    string    `yaml:"type" json:"type"`       // 实体类型 connection/mac/address/flow
	MAC     string    `yaml:"mac" json:"mac"`         // 硬件地址，type == mac
	Address string    `yaml:"address" json:"address"` // CIDR网段，type == address
	Conn    *ConnSpec `yaml:"conn" json:"conn"`       // 连接五元组，type == connection
	Flow    *FlowSpec `yaml:"flow" json:"flow"`       // 流模板，type == flow
}

// ConnSpec 连接五元组配置
type ConnSpec struct {
	OrigHost string   `yaml:"orig_host" json:"orig_host"`
	OrigPort PortSpec `yaml:"orig_port" json:"orig_port"`
	RespHost string   `yaml:"resp_host" json:"resp_host"`
	RespPort PortSpec `yaml:"resp_port" json:"resp_port"`
}

// FlowSpec 流模板配置，所有字段可选
type FlowSpec struct {
	MacSrc  string    `yaml:"mac_src" json:"mac_src"`
	MacDst  string    `yaml:"mac_dst" json:"mac_dst"`
	IPSrc   string    `yaml:"ip_src" json:"ip_src"`
	IPDst   string    `yaml:"ip_dst" json:"ip_dst"`
	PortSrc *PortSpec `yaml:"port_src" json:"port_src"`
	PortDst *PortSpec `yaml:"port_dst" json:"port_dst"`
}

// PortSpec 带协议标签的端口配置
type PortSpec struct {
	Port  uint16 `yaml:"port" json:"port"`
	Proto string `yaml:"proto" json:"proto"` // tcp/udp/icmp，默认tcp
}

// ToRule 把YAML配置转换为核心规则类型
func (s *RuleSpec) ToRule() (*types.Rule, error) {
	target, err := parseTarget(s.Target)
	if err != nil {
		return nil, err
	}
	ruleType, err := parseRuleType(s.Type)
	if err != nil {
		return nil, err
	}
	entity, err := s.Entity.toEntity()
	if err != nil {
		return nil, fmt.Errorf("rule %d: %w", s.ID, err)
	}

	return &types.Rule{
		ID:       s.ID,
		Target:   target,
		Type:     ruleType,
		Entity:   entity,
		Priority: s.Priority,
		Expire:   time.Duration(s.Expire * float64(time.Second)),
		OutPort:  s.OutPort,
	}, nil
}

func parseTarget(s string) (types.TargetType, error) {
	switch s {
	case "monitor":
		return types.TargetMonitor, nil
	case "forward":
		return types.TargetForward, nil
	default:
		return 0, fmt.Errorf("unknown rule target %q", s)
	}
}

func parseRuleType(s string) (types.RuleType, error) {
	switch s {
	case "drop":
		return types.RuleDrop, nil
	case "whitelist":
		return types.RuleWhitelist, nil
	case "redirect":
		return types.RuleRedirect, nil
	default:
		return 0, fmt.Errorf("unknown rule type %q", s)
	}
}

func parseProto(s string) (types.TransportProto, error) {
	switch s {
	case "udp":
		return types.ProtoUDP, nil
	case "icmp":
		return types.ProtoICMP, nil
	case "tcp", "":
		return types.ProtoTCP, nil
	default:
		return 0, fmt.Errorf("unknown transport proto %q", s)
	}
}

func (s *PortSpec) toPort() (types.Port, error) {
	proto, err := parseProto(s.Proto)
	if err != nil {
		return types.Port{}, err
	}
	return types.Port{Number: s.Port, Proto: proto}, nil
}

func (s *EntitySpec) toEntity() (*types.Entity, error) {
	switch s.Type {
	case "connection":
		if s.Conn == nil {
			return nil, fmt.Errorf("connection entity requires conn section")
		}
		conn, err := s.Conn.toConnection()
		if err != nil {
			return nil, err
		}
		return types.NewConnectionEntity(conn), nil
	case "mac":
		mac, err := net.ParseMAC(s.MAC)
		if err != nil {
			return nil, fmt.Errorf("invalid mac address %q: %w", s.MAC, err)
		}
		return types.NewMACEntity(mac), nil
	case "address":
		_, subnet, err := net.ParseCIDR(s.Address)
		if err != nil {
			return nil, fmt.Errorf("invalid subnet %q: %w", s.Address, err)
		}
		return types.NewAddressEntity(subnet), nil
	case "flow":
		if s.Flow == nil {
			return nil, fmt.Errorf("flow entity requires flow section")
		}
		flow, err := s.Flow.toTemplate()
		if err != nil {
			return nil, err
		}
		return types.NewFlowEntity(flow), nil
	default:
		return nil, fmt.Errorf("unknown entity type %q", s.Type)
	}
}

func (s *ConnSpec) toConnection() (*types.Connection, error) {
	origHost := net.ParseIP(s.OrigHost)
	if origHost == nil {
		return nil, fmt.Errorf("invalid orig host %q", s.OrigHost)
	}
	respHost := net.ParseIP(s.RespHost)
	if respHost == nil {
		return nil, fmt.Errorf("invalid resp host %q", s.RespHost)
	}
	origPort, err := s.OrigPort.toPort()
	if err != nil {
		return nil, err
	}
	respPort, err := s.RespPort.toPort()
	if err != nil {
		return nil, err
	}
	return &types.Connection{
		OrigHost: origHost,
		OrigPort: origPort,
		RespHost: respHost,
		RespPort: respPort,
	}, nil
}

func (s *FlowSpec) toTemplate() (*types.FlowTemplate, error) {
	flow := &types.FlowTemplate{}

	if s.MacSrc != "" {
		mac, err := net.ParseMAC(s.MacSrc)
		if err != nil {
			return nil, fmt.Errorf("invalid mac_src %q: %w", s.MacSrc, err)
		}
		flow.MacSrc = &mac
	}
	if s.MacDst != "" {
		mac, err := net.ParseMAC(s.MacDst)
		if err != nil {
			return nil, fmt.Errorf("invalid mac_dst %q: %w", s.MacDst, err)
		}
		flow.MacDst = &mac
	}
	if s.IPSrc != "" {
		_, subnet, err := net.ParseCIDR(s.IPSrc)
		if err != nil {
			return nil, fmt.Errorf("invalid ip_src %q: %w", s.IPSrc, err)
		}
		flow.IPSrc = subnet
	}
	if s.IPDst != "" {
		_, subnet, err := net.ParseCIDR(s.IPDst)
		if err != nil {
			return nil, fmt.Errorf("invalid ip_dst %q: %w", s.IPDst, err)
		}
		flow.IPDst = subnet
	}
	if s.PortSrc != nil {
		port, err := s.PortSrc.toPort()
		if err != nil {
			return nil, err
		}
		flow.PortSrc = &port
	}
	if s.PortDst != nil {
		port, err := s.PortDst.toPort()
		if err != nil {
			return nil, err
		}
		flow.PortDst = &port
	}
	return flow, nil
}
