package main

import (
	"os"

	"github.com/ralt/coprctl/internal/cli"
	"github.com/ralt/coprctl/internal/models"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		// 2 means the run succeeded but changed something under --fail-on-change
		if models.IsErrorType(err, models.ErrChangesPending) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
