package nasch

import "github.com/sirupsen/logrus"

// log 一维NaSch模型的日志记录器
var log = logrus.WithField("module", "nasch")
