package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/backend"
	"github.com/peter992013/bro/pkg/config"
	"github.com/peter992013/bro/pkg/rules"
)

// 响应结构体
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BackendService 后端管理服务
type BackendService struct {
	loader  *rules.RuleLoader
	backend *backend.Backend
	config  *config.Config
}

// NewBackendService 创建一个新的后端管理服务
func NewBackendService(cfg *config.Config, b *backend.Backend, loader *rules.RuleLoader) *BackendService {
	return &BackendService{
		loader:  loader,
		backend: b,
		config:  cfg,
	}
}

// GetRules 获取所有规则配置
func (bs *BackendService) GetRules(c echo.Context) error {
	allRules := bs.loader.GetAllRules()

	logrus.WithFields(logrus.Fields{
		"rule_count": len(allRules),
		"operation":  "get_all_rules",
	}).Debug("获取所有规则")

	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "获取规则配置成功",
		Data:    allRules,
	})
}

// GetRule 获取指定规则配置
func (bs *BackendService) GetRule(c echo.Context) error {
	ruleID, err := parseRuleID(c)
	if err != nil {
		return HandleError(c, err)
	}

	spec, exists := bs.loader.GetRule(ruleID)
	if !exists {
		return HandleError(c, NewRuleNotFoundError(ruleID))
	}

	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "获取规则配置成功",
		Data:    spec,
	})
}

// CreateRule 创建规则并安装
func (bs *BackendService) CreateRule(c echo.Context) error {
	var spec rules.RuleSpec
	if err := c.Bind(&spec); err != nil {
		return HandleError(c, NewInvalidRuleError(err))
	}

	rule, err := spec.ToRule()
	if err != nil {
		return HandleError(c, NewInvalidRuleError(err))
	}

	if !bs.backend.Install(rule) {
		return HandleError(c, NewNotAdmittedError(rule.ID))
	}
	bs.loader.AddRule(&spec)

	logrus.Infof("规则 %d 已提交安装", rule.ID)
	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "规则安装已提交",
		Data:    spec,
	})
}

// InstallRule 安装已加载的规则
func (bs *BackendService) InstallRule(c echo.Context) error {
	ruleID, err := parseRuleID(c)
	if err != nil {
		return HandleError(c, err)
	}

	spec, exists := bs.loader.GetRule(ruleID)
	if !exists {
		return HandleError(c, NewRuleNotFoundError(ruleID))
	}

	rule, err := spec.ToRule()
	if err != nil {
		return HandleError(c, NewInvalidRuleError(err))
	}

	if !bs.backend.Install(rule) {
		return HandleError(c, NewNotAdmittedError(ruleID))
	}

	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "规则安装已提交",
	})
}

// RemoveRule 卸载规则
func (bs *BackendService) RemoveRule(c echo.Context) error {
	ruleID, err := parseRuleID(c)
	if err != nil {
		return HandleError(c, err)
	}

	spec, exists := bs.loader.GetRule(ruleID)
	if !exists {
		return HandleError(c, NewRuleNotFoundError(ruleID))
	}

	rule, err := spec.ToRule()
	if err != nil {
		return HandleError(c, NewInvalidRuleError(err))
	}

	if !bs.backend.Uninstall(rule) {
		return HandleError(c, NewNotAdmittedError(ruleID))
	}
	bs.loader.RemoveRule(ruleID)

	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "规则卸载已提交",
	})
}

// GetPending 获取待决操作
func (bs *BackendService) GetPending(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "获取待决操作成功",
		Data:    bs.backend.Pending(),
	})
}

// GetStats 获取后端指标
func (bs *BackendService) GetStats(c echo.Context) error {
	return c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "获取后端指标成功",
		Data:    bs.backend.Metrics().GetStats(),
	})
}

// parseRuleID 解析路径参数中的规则ID
func parseRuleID(c echo.Context) (uint32, error) {
	id, err := strconv.ParseUint(c.Param("rule_id"), 10, 32)
	if err != nil {
		return 0, NewInvalidRuleError(err)
	}
	return uint32(id), nil
}
