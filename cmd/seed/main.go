package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/config"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/domain"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/repository"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/seed"
	"github.com/sysu-ecnc-dev/resource-allocator/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var projectID int64
	var csvPath string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机资源, 2: 插入随机任务, 3: 插入随机历史成本, 4: 从 csv 导入历史成本, 5: 按配置插入全部数据)")
	flag.IntVar(&n, "n", 0, "要插入的记录数量，为 0 时使用配置中的数量")
	flag.Int64Var(&projectID, "project-id", 0, "插入任务的项目 ID，为 0 时使用配置中的项目")
	flag.StringVar(&csvPath, "csv", "./internal/seed/data/cost_history.csv", "历史成本 csv 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if projectID <= 0 {
		projectID = cfg.Seed.ProjectID
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 所有随机数据都以明天零点为起点
	base := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		seedResources(repo, base, orDefault(n, cfg.Seed.WorkerCount), orDefault(n, cfg.Seed.EquipmentCount))
	case 2:
		seedTasks(repo, projectID, base, orDefault(n, cfg.Seed.TaskCount))
	case 3:
		seedCostRecords(repo, orDefault(n, cfg.Seed.CostRecordCount))
	case 4:
		seed.SeedCostHistory(repo, csvPath)
	case 5:
		seedResources(repo, base, cfg.Seed.WorkerCount, cfg.Seed.EquipmentCount)
		seedTasks(repo, projectID, base, cfg.Seed.TaskCount)
		seedCostRecords(repo, cfg.Seed.CostRecordCount)
	default:
		slog.Error("指定的操作非法")
	}
}

func orDefault(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

func seedResources(repo *repository.Repository, base time.Time, workers, equipment int) {
	if workers <= 0 && equipment <= 0 {
		slog.Error("请输入合法的资源数量")
		return
	}

	cnt := 0
	for i := 0; i < workers+equipment; i++ {
		var resource *domain.Resource
		if i < workers {
			resource = utils.GenerateRandomWorker(base, 120)
		} else {
			resource = utils.GenerateRandomEquipment(base, 120)
		}

		if err := repo.CreateResource(resource); err != nil {
			slog.Error("无法插入资源", slog.String("error", err.Error()))
			continue
		}

		cnt++
	}

	slog.Info("插入资源成功", slog.Int("count", cnt))
}

func seedTasks(repo *repository.Repository, projectID int64, base time.Time, n int) {
	if n <= 0 {
		slog.Error("请输入合法的任务数量")
		return
	}

	cnt := 0
	var prev *domain.Task
	for i := 0; i < n; i++ {
		// 大约三分之二的任务紧接在上一个任务之后
		start := base.AddDate(0, 0, rand.Intn(5))
		chained := prev != nil && rand.Intn(3) != 0
		if chained {
			start = prev.EndDate
		}

		task := utils.GenerateRandomTask(projectID, i, start)
		if chained {
			task.Dependencies = append(task.Dependencies, prev.ID)
		}

		if err := repo.CreateTask(task); err != nil {
			slog.Error("无法插入任务", slog.String("error", err.Error()))
			continue
		}

		prev = task
		cnt++
	}

	slog.Info("插入任务成功", slog.Int64("project_id", projectID), slog.Int("count", cnt))
}

func seedCostRecords(repo *repository.Repository, n int) {
	if n <= 0 {
		slog.Error("请输入合法的历史成本数量")
		return
	}

	records := make([]domain.CostRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, utils.GenerateRandomCostRecord())
	}

	if err := repo.InsertCostRecords(records); err != nil {
		slog.Error("无法插入历史成本", slog.String("error", err.Error()))
		return
	}

	slog.Info("插入历史成本成功", slog.Int("count", n))
}
