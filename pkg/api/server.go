package api

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/peter992013/bro/pkg/config"
)

// Server HTTP 服务器
type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer 创建一个新的 HTTP 服务器
func NewServer(cfg *config.Config) *Server {
	e := echo.New()
	e.HideBanner = true

	addr := fmt.Sprintf("%s:%s", cfg.API.Host, cfg.API.Port)

	return &Server{
		echo: e,
		addr: addr,
	}
}

// Start 启动 HTTP 服务器
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Stop 停止 HTTP 服务器
func (s *Server) Stop(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// GetEcho 获取Echo实例
func (s *Server) GetEcho() *echo.Echo {
	return s.echo
}

// RegisterBackendService 注册后端管理服务
func (s *Server) RegisterBackendService(bs *BackendService) {
	s.echo.GET("/netcontrol/rules", bs.GetRules)                      // 获取所有规则配置
	s.echo.GET("/netcontrol/rules/:rule_id", bs.GetRule)              // 获取指定规则配置
	s.echo.POST("/netcontrol/rules", bs.CreateRule)                   // 创建规则并安装
	s.echo.POST("/netcontrol/rules/:rule_id/install", bs.InstallRule) // 安装规则
	s.echo.POST("/netcontrol/rules/:rule_id/remove", bs.RemoveRule)   // 卸载规则
	s.echo.GET("/netcontrol/pending", bs.GetPending)                  // 获取待决操作
	s.echo.GET("/netcontrol/stats", bs.GetStats)                      // 获取后端指标
}
