package lock

import "github.com/sirupsen/logrus"

// log 锁模块的日志记录器
var log = logrus.WithField("module", "lock")
