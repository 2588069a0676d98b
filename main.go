package main

import (
	"encoding/base64"
	"flag"
	"os"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/traffic-complexity/gridca-sim/task"
	"github.com/traffic-complexity/gridca-sim/utils/config"
)

var (
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")
	// 指标输出文件路径，设置为空则只打印摘要
	outputPath = flag.String("output", "", "metrics output file path (empty means summary only)")

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

	log = logrus.WithField("module", "gridca")
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
	log.Infof("%+v", c)

	t, err := task.NewContext(c)
	if err != nil {
		log.Panicf("config err: %v", err)
	}
	if err := t.Init(); err != nil {
		log.Panicf("init err: %v", err)
	}
	if err := t.Run(); err != nil {
		log.Panicf("run err: %v", err)
	}

	// 指标输出
	collector := t.Collector()
	if *outputPath != "" {
		f, err := os.Create(*outputPath)
		if err != nil {
			log.Panicf("output file create err: %v", err)
		}
		defer f.Close()
		if err := collector.WriteResults(f); err != nil {
			log.Panicf("output write err: %v", err)
		}
		log.Infof("metrics written to %s", *outputPath)
	}
	if history := collector.History(); len(history) > 0 {
		log.Infof("last sample: %v", history[len(history)-1])
	}
	waits := collector.Waits()
	log.Infof("wait time: mean=%.2f max=%.0f p95=%.0f", waits.Mean, waits.Max, waits.P95)
}
