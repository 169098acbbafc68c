// riskctl 离线工具：文本对比、单分数分级、风险名册导出。
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
