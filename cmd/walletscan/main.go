package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"walletscan/internal/cli"
	"walletscan/pkg/appcfg"
	"walletscan/pkg/chaincfg"
	"walletscan/pkg/logx"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "getwd: %v\n", err)
		os.Exit(2)
	}

	appConf, err := appcfg.Load(filepath.Join(cwd, "configs", "app.yaml"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config: %v (use defaults: en/info)\n", err)
		appConf = &appcfg.Config{Language: "en", LogLevel: "info", Workers: 16, ResultsBase: "results", ChainsFile: "configs/chains.yaml"}
	}

	if err := logx.Init(logx.Config{
		Level:                appConf.LogLevel,
		ConsoleOnly:          true,
		HideSecretsInConsole: appConf.HideSecretsInConsole,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "log init: %v\n", err)
		os.Exit(1)
	}
	defer logx.Close()

	chains, err := chaincfg.Load(appConf.ChainsFile)
	if err != nil {
		logx.S().Errorw("load chains config failed", "err", err)
		os.Exit(1)
	}

	logx.S().Infow("walletscan started",
		"cwd", cwd,
		"lang", appConf.Language,
		"log_level", appConf.LogLevel,
		"workers", appConf.Workers,
		"chains", len(chains.RPCs),
		"hide_secrets_in_console", appConf.HideSecretsInConsole,
	)

	r, err := cli.NewRunner(context.Background(), appConf, chains)
	if err != nil {
		logx.S().Errorw("startup failed", "err", err)
		os.Exit(1)
	}
	defer r.Close()
	r.Run()
}
