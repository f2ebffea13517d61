package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/klinvill/substring-search/pkg/cli"
)

const (
	AppName        = "substring"
	AppVersion     = "1.0.0"
	AppDescription = "基于滚动哈希的 k 字符公共子串查找工具"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	// 创建CLI应用程序
	app := cli.NewApp(AppName, AppVersion, AppDescription, cli.NewEngineAdapter())

	// 运行应用程序
	err := app.RunContext(ctx, os.Args)

	// 创建错误处理器
	errorHandler := cli.NewErrorHandler(app.GetLogger(), app.GetConfig().Verbose)
	exitCode := errorHandler.Handle(err)

	app.Close()
	stop()
	os.Exit(exitCode)
}
