package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/optimizer"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/predictor"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/seed"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/snapshot"
)

var rootCmd = &cobra.Command{
	Use:   "allocctl",
	Short: "离线运行资源分配优化",
	Long:  "allocctl 读取 TOML 格式的项目快照，在本地运行遗传算法并输出资源分配方案，不依赖数据库与消息队列。",
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "对快照运行一次优化",
	RunE:  runOptimize,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "校验快照与参数",
	RunE:  runValidate,
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", "snapshot.toml", "快照文件路径")
	_ = rootCmd.MarkPersistentFlagFilename("file", "toml")

	optimizeCmd.Flags().Int64("seed", 0, "随机种子，为 0 时使用快照或当前时间")
	optimizeCmd.Flags().Int("workers", 0, "并行评估的协程数，为 0 时取 CPU 数")
	optimizeCmd.Flags().Bool("json", false, "以 JSON 输出完整的分配方案")
	optimizeCmd.Flags().Bool("verbose", false, "输出每一代的日志")
	optimizeCmd.Flags().String("history", "", "历史成本 csv，设置后启用成本预测")
	optimizeCmd.Flags().Float64("predictor-weight", 0.2, "成本预测在适应度中的权重")

	rootCmd.AddCommand(optimizeCmd)
	rootCmd.AddCommand(validateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadSnapshot(cmd *cobra.Command) (*snapshot.File, optimizer.Parameters, error) {
	path, _ := cmd.Flags().GetString("file")

	f, err := snapshot.Load(path)
	if err != nil {
		return nil, optimizer.Parameters{}, err
	}

	params := f.Parameters(optimizer.DefaultParameters())
	if cmd.Flags().Changed("seed") {
		params.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cmd.Flags().Changed("workers") {
		params.Workers, _ = cmd.Flags().GetInt("workers")
	}

	return f, params, nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	f, params, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}

	if _, err := optimizer.New(params, f.Snapshot()); err != nil {
		return fmt.Errorf("快照校验失败: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Render(fmt.Sprintf("✓ 快照有效：%d 个任务，%d 个资源", len(f.Tasks), len(f.Resources))))
	return nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	f, params, err := loadSnapshot(cmd)
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	snap := f.Snapshot()
	opts := []optimizer.Option{optimizer.WithLogger(logger)}

	if history, _ := cmd.Flags().GetString("history"); history != "" {
		model, err := trainPredictor(history, snap.Resources)
		if err != nil {
			return err
		}
		params.Weights.Predictor, _ = cmd.Flags().GetFloat64("predictor-weight")
		opts = append(opts, optimizer.WithPredictor(model))
	}

	o, err := optimizer.New(params, snap, opts...)
	if err != nil {
		return err
	}

	// CTRL+C 时提前结束并输出当前最优方案
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	result, err := o.Run(ctx)
	if err != nil {
		return err
	}

	plan, err := optimizer.Synthesize(result, snap, o.Evaluator(), nil)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderReport(f.ProjectID, plan))
	return nil
}

func trainPredictor(path string, resources []domain.Resource) (*predictor.CostModel, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开历史成本文件失败: %w", err)
	}
	defer file.Close()

	records, err := seed.ParseCostHistory(file)
	if err != nil {
		return nil, err
	}

	model, err := predictor.Train(records, resources, predictor.DefaultOptions())
	if err != nil {
		return nil, fmt.Errorf("训练成本预测模型失败: %w", err)
	}
	return model, nil
}
