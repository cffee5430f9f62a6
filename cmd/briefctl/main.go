package main

import (
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/lk2023060901/databrief-go/cmd/briefctl/cmd"
	"github.com/lk2023060901/databrief-go/pkg/log"
)

func main() {
	// 容器环境下按 CPU 配额设置 GOMAXPROCS，批量编解码的协程池容量依赖该值。
	undo, _ := maxprocs.Set(maxprocs.Logger(log.S().Debugf))
	defer undo()

	cmd.Execute()
}
