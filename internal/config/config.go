package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"120"` // 优化请求是同步返回的，需要比较长的写超时
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD,required"`
		FullName string `env:"FULL_NAME" envDefault:"管理员"`
		Email    string `env:"EMAIL,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 14 天，单位为小时
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		ProjectID       int64 `env:"PROJECT_ID" envDefault:"1"`
		WorkerCount     int   `env:"WORKER_COUNT" envDefault:"20"`
		EquipmentCount  int   `env:"EQUIPMENT_COUNT" envDefault:"6"`
		TaskCount       int   `env:"TASK_COUNT" envDefault:"12"`
		CostRecordCount int   `env:"COST_RECORD_COUNT" envDefault:"200"`
	} `envPrefix:"SEED_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD,required"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	Optimizer struct {
		PopulationSize       int     `env:"POPULATION_SIZE" envDefault:"100"`
		MaxGenerations       int     `env:"MAX_GENERATIONS" envDefault:"200"`
		MutationRate         float64 `env:"MUTATION_RATE" envDefault:"0.1"`
		CrossoverRate        float64 `env:"CROSSOVER_RATE" envDefault:"0.8"`
		ElitismRate          float64 `env:"ELITISM_RATE" envDefault:"0.1"`
		TournamentSize       int     `env:"TOURNAMENT_SIZE" envDefault:"5"`
		ConvergenceThreshold float64 `env:"CONVERGENCE_THRESHOLD" envDefault:"0.001"`
		ConvergenceWindow    int     `env:"CONVERGENCE_WINDOW" envDefault:"10"`
		Workers              int     `env:"WORKERS" envDefault:"0"` // 0 表示使用全部 CPU
		RunTimeout           int     `env:"RUN_TIMEOUT" envDefault:"60"`
		LockTTL              int     `env:"LOCK_TTL" envDefault:"90"`
		Weights              struct {
			Cost             float64 `env:"COST" envDefault:"0.4"`
			Utilization      float64 `env:"UTILIZATION" envDefault:"0.4"`
			ViolationPenalty float64 `env:"VIOLATION_PENALTY" envDefault:"0.1"`
			Baseline         float64 `env:"BASELINE" envDefault:"0.2"`
			NeutralCostScore float64 `env:"NEUTRAL_COST_SCORE" envDefault:"0.5"`
			Predictor        float64 `env:"PREDICTOR" envDefault:"0"`
		} `envPrefix:"WEIGHT_"`
		Predictor struct {
			MinSamples     int     `env:"MIN_SAMPLES" envDefault:"20"`
			LearningRate   float64 `env:"LEARNING_RATE" envDefault:"0.1"`
			Regularization float64 `env:"REGULARIZATION" envDefault:"0"`
			Iterations     int     `env:"ITERATIONS" envDefault:"1000"`
		} `envPrefix:"PREDICTOR_"`
	} `envPrefix:"OPTIMIZER_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
