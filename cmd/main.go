package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	rotates "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/peter992013/bro/pkg/api"
	"github.com/peter992013/bro/pkg/backend"
	"github.com/peter992013/bro/pkg/config"
	"github.com/peter992013/bro/pkg/rules"
	"github.com/peter992013/bro/pkg/transport"
	"github.com/peter992013/bro/pkg/types"
)

func InitLogger(cfg *config.Config) error {
	formatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	}
	logrus.SetFormatter(formatter)

	var level logrus.Level
	switch cfg.Log.Level {
	case "DEBUG":
		level = logrus.DebugLevel
	case "WARN":
		level = logrus.WarnLevel
	case "INFO":
		level = logrus.InfoLevel
	case "ERROR":
		level = logrus.ErrorLevel
	case "FATAL":
		level = logrus.FatalLevel
	case "PANIC":
		level = logrus.PanicLevel
	default:
		level = logrus.WarnLevel //默认
	}
	logrus.SetLevel(level)

	//1、判断文件路径和文件是否存在，不存在则创建
	if _, err := os.Stat(cfg.Log.Dir); os.IsNotExist(err) {
		if err := os.MkdirAll(cfg.Log.Dir, 0755); err != nil {
			return err
		}
	}
	logFileName := path.Join(cfg.Log.Dir, cfg.Log.Filename)

	//2、日志切割功能，按时间来切割
	logWriter, err := rotates.New(
		logFileName+".%Y%m%d%H%M",
		rotates.WithLinkName(logFileName),   //文件软链接
		rotates.WithMaxAge(24*time.Hour),    //文件最大保存时间
		rotates.WithRotationTime(time.Hour), //文件切割间隔
	)
	if err != nil {
		return err
	}

	//创建 local file system hook
	lfHook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: logWriter,
		logrus.InfoLevel:  logWriter,
		logrus.WarnLevel:  logWriter,
		logrus.ErrorLevel: logWriter,
		logrus.FatalLevel: logWriter,
		logrus.PanicLevel: logWriter,
	}, &logrus.TextFormatter{})

	logrus.AddHook(lfHook)
	return nil
}

// logHandler 把规则终态结果写入日志
// 接入外部规则管理器时由其实现backend.EventHandler
type logHandler struct{}

func (h *logHandler) RuleAdded(rule *types.Rule, msg string) {
	logrus.Infof("Rule %d added: %s", rule.ID, msg)
}

func (h *logHandler) RuleRemoved(rule *types.Rule, msg string) {
	logrus.Infof("Rule %d removed: %s", rule.ID, msg)
}

func (h *logHandler) RuleError(rule *types.Rule, msg string) {
	logrus.Errorf("Rule %d error: %s", rule.ID, msg)
}

// buildBackendConfig 把文件配置组装为后端配置
func buildBackendConfig(cfg *config.Config) (*backend.Config, error) {
	bc := &backend.Config{
		Monitor:        cfg.Backend.Monitor,
		Forward:        cfg.Backend.Forward,
		IdleTimeout:    cfg.Backend.IdleTimeout,
		TableID:        cfg.Backend.TableID,
		PriorityOffset: cfg.Backend.PriorityOffset,
		PendingTimeout: time.Duration(cfg.Backend.PendingTimeout) * time.Second,
	}

	// 配置了CEL表达式时用它替换默认的准入判定
	if cfg.Backend.AdmissionExpr != "" {
		admit, err := backend.CompileAdmissionExpr(cfg.Backend.AdmissionExpr)
		if err != nil {
			return nil, fmt.Errorf("failed to compile admission expression: %w", err)
		}
		bc.Admit = admit
	}
	return bc, nil
}

func main() {
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := InitLogger(cfg); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	logrus.Info("Starting netcontrol openflow backend...")

	backendCfg, err := buildBackendConfig(cfg)
	if err != nil {
		logrus.Fatalf("Failed to build backend config: %v", err)
	}

	// 回环transport：接受所有提交并回送成功通知
	// 接真实控制器时替换为对应的openflow.Transport实现
	loopback := transport.NewLoopback()

	b := backend.New(backendCfg, loopback, &logHandler{})
	loopback.SetHandler(b)
	b.Start()

	// 加载规则目录并逐条安装
	loader := rules.NewRuleLoader()
	if cfg.Rules.RuleDirectory != "" {
		if err := loader.LoadRulesFromDirectory(cfg.Rules.RuleDirectory); err != nil {
			logrus.Errorf("Failed to load rule directory: %v", err)
		}
		for id, spec := range loader.GetAllRules() {
			rule, err := spec.ToRule()
			if err != nil {
				logrus.Errorf("Skipping invalid rule %d: %v", id, err)
				continue
			}
			if !b.Install(rule) {
				logrus.Warnf("Rule %d not admitted by backend", id)
			}
		}
	}

	// 启动管理API
	server := api.NewServer(cfg)
	server.RegisterBackendService(api.NewBackendService(cfg, b, loader))
	go func() {
		if err := server.Start(); err != nil {
			logrus.Errorf("API server stopped: %v", err)
		}
	}()

	logrus.Info("Backend started successfully")

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	logrus.Infof("Received signal %v, shutting down...", sig)

	// 优雅退出
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logrus.Errorf("Error stopping API server: %v", err)
	}
	b.Stop()

	logrus.Info("Shutdown complete")
}
