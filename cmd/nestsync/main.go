package main

import (
	"github.com/nestsync/nestsync/internal/cli"
	"github.com/nestsync/nestsync/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
