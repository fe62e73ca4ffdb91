package edge

import "github.com/sirupsen/logrus"

// log Edge模块的日志记录器
var log = logrus.WithField("module", "edge")
