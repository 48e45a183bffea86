// Package autoload initializes the global logger from the environment
// as a side effect of being imported:
//
//	import _ "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger/autoload"
//
// It reads LOG_DEBUG and LOG_PRETTY_FORMAT through envconfig and falls
// back to the defaults when they are unset or malformed.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "github.com/ishaanxgupta/BabyNest-sub001/pkg/logger"
)

func init() {
	var conf logx.Config
	if err := envconfig.Process("log", &conf); err != nil {
		logx.Init()
		return
	}
	logx.Init(conf)
}
