/*
animerec 是番剧内容推荐引擎的命令行入口。

Usage:

	animerec [command]

Available Commands:

	serve        启动 HTTP 推荐服务
	recommend    按标题（或自由文本）推荐相似番剧
	genre        按体裁重合 + 评分推荐，或按体裁子串检索
	import       把抓取结果导入 SQLite
	build-cache  重建稠密特征矩阵并写入缓存

Examples:

	animerec recommend "Naruto" --top-n 5
	animerec genre --text romance
	animerec import anime.json --db anime.db
	ANIMEREC_ENCODER__KIND=dense animerec build-cache
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// 版本信息（构建时通过 ldflags 注入）
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags 所有子命令共享的参数
type globalFlags struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "animerec",
		Short:         "Content-based anime recommendation engine",
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (YAML); defaults to $ANIMEREC_CONFIG")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level")

	root.AddCommand(
		newServeCmd(g),
		newRecommendCmd(g),
		newGenreCmd(g),
		newImportCmd(g),
		newBuildCacheCmd(g),
	)
	return root
}
