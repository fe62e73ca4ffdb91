package main

import (
	"encoding/base64"
	"flag"
	"os"
	"os/signal"
	"syscall"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/vosui/vps-go/task"
	"github.com/vosui/vps-go/utils/config"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 工作线程数，覆盖配置文件中的值，0表示按硬件并发度解析
	workers = flag.Int("workers", -1, "worker thread count override (-1 means use config value)")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "vps")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var c config.Config
	var file []byte
	var err error
	if *configPath != "" {
		file, err = os.ReadFile(*configPath)
		if err != nil {
			log.Panicf("config file load err: %v", err)
		}
	} else if *configData != "" {
		file, err = base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	if err := yaml.UnmarshalStrict(file, &c); err != nil {
		log.Panicf("config file load err: %v", err)
	}
	if *workers >= 0 {
		c.Control.Workers = *workers
	}
	log.Infof("%+v", c)

	co, err := task.NewCoordinator(c)
	if err != nil {
		log.Panicf("coordinator init err: %v", err)
	}
	if err := co.Start(); err != nil {
		log.Panicf("coordinator start err: %v", err)
	}

	// 致命事件监听：任一Fab停机即记录，等待操作员处理
	go func() {
		for ev := range co.Events() {
			log.Errorf("fab %s halted: %s", ev.Fab, ev)
		}
	}()

	// 信号或全部Fab完成时退出
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	doneCh := make(chan struct{})
	go func() {
		co.Wait()
		close(doneCh)
	}()
	select {
	case sig := <-sigCh:
		log.Infof("received %v, disposing", sig)
	case <-doneCh:
		log.Infof("all fabs finished")
	}
	co.Dispose()
}
