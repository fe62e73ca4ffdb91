// vpslog Edge通行二进制日志工具
// 功能：离线生成与分析仿真器写出的28字节定长通行记录
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vpslog",
	Short: "Edge transit binary log toolkit",
}

func main() {
	rootCmd.AddCommand(parseCmd, genCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
