package provider

import (
	"github.com/studentperks/internal/cache"
	"github.com/studentperks/internal/config"
	"github.com/studentperks/internal/logger"
	"github.com/studentperks/internal/models"
	"github.com/studentperks/internal/queue"
	"github.com/studentperks/internal/repository"
	"github.com/studentperks/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	StudentRepo      repository.StudentRepository
	BranchRepo       repository.BranchRepository
	StaffRepo        repository.BranchStaffRepository
	OfferRepo        repository.OfferRepository
	BonusSettingRepo repository.BonusSettingRepository
	RedemptionRepo   repository.RedemptionRepository
	StatsRepo        repository.StatsRepository

	// Services
	StaffAuthService   *service.StaffAuthService
	EligibilityService *service.EligibilityService
	DiscountService    *service.DiscountService
	RedemptionService  *service.RedemptionService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.StudentRepo = repository.NewStudentRepository(db)
	c.BranchRepo = repository.NewBranchRepository(db)
	c.StaffRepo = repository.NewBranchStaffRepository(db)
	c.OfferRepo = repository.NewOfferRepository(db)
	c.BonusSettingRepo = repository.NewBonusSettingRepository(db)
	c.RedemptionRepo = repository.NewRedemptionRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
}

func (c *Container) initServices() {
	c.StaffAuthService = service.NewStaffAuthService(c.Config, c.StaffRepo)
	c.EligibilityService = service.NewEligibilityService(c.OfferRepo, c.RedemptionRepo)
	c.DiscountService = service.NewDiscountService(
		c.RedemptionRepo,
		c.BonusSettingRepo,
		c.StatsRepo,
		service.NewStreakStrategy(),
	)
	c.RedemptionService = service.NewRedemptionService(
		c.RedemptionRepo,
		c.OfferRepo,
		c.StudentRepo,
		c.BranchRepo,
		c.StatsRepo,
		c.EligibilityService,
		c.DiscountService,
		c.QueueClient,
		service.RedemptionPolicy{
			DuplicateWindowSeconds: c.Config.Redemption.DuplicateWindowSeconds,
			TxTimeoutSeconds:       c.Config.Redemption.TxTimeoutSeconds,
			AllowSameDayRepeat:     c.Config.Redemption.AllowSameDayRepeat,
		},
	)
}
