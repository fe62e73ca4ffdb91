package fab

import "github.com/sirupsen/logrus"

// log Fab模块的日志记录器
var log = logrus.WithField("module", "fab")
