package provider

import (
	"time"

	"github.com/akiranaka1984/affiliate/internal/cache"
	"github.com/akiranaka1984/affiliate/internal/config"
	"github.com/akiranaka1984/affiliate/internal/logger"
	"github.com/akiranaka1984/affiliate/internal/models"
	"github.com/akiranaka1984/affiliate/internal/queue"
	"github.com/akiranaka1984/affiliate/internal/repository"
	"github.com/akiranaka1984/affiliate/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	CampaignRepo         repository.CampaignRepository
	AffiliateProfileRepo repository.AffiliateProfileRepository
	LinkRepo             repository.AffiliateLinkRepository
	ClickRepo            repository.ClickRepository
	ConversionRepo       repository.ConversionRepository
	CommissionEntryRepo  repository.CommissionEntryRepository
	StatsRepo            repository.StatsRepository

	// Services
	AuthService       *service.AuthService
	LinkService       *service.LinkService
	ClickService      *service.ClickService
	ConversionService *service.ConversionService
	StatsService      *service.StatsService
	FraudScorer       service.FraudScorer
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
	c.CampaignRepo = repository.NewCampaignRepository(db)
	c.AffiliateProfileRepo = repository.NewAffiliateProfileRepository(db)
	c.LinkRepo = repository.NewAffiliateLinkRepository(db)
	c.ClickRepo = repository.NewClickRepository(db)
	c.ConversionRepo = repository.NewConversionRepository(db)
	c.CommissionEntryRepo = repository.NewCommissionEntryRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
}

func (c *Container) initServices() {
	c.AuthService = service.NewAuthService(c.Config)
	c.LinkService = service.NewLinkService(c.LinkRepo, c.CampaignRepo, c.AffiliateProfileRepo, c.Config.Tracking)
	c.FraudScorer = service.NewThresholdFraudScorer(
		c.ClickRepo,
		c.Config.Tracking.FraudClickThreshold,
		time.Duration(c.Config.Tracking.FraudClickWindowSeconds)*time.Second,
	)
	c.ClickService = service.NewClickService(c.ClickRepo, c.LinkRepo, c.LinkService, c.FraudScorer, c.QueueClient)
	c.ConversionService = service.NewConversionService(
		c.ConversionRepo,
		c.ClickRepo,
		c.LinkRepo,
		c.AffiliateProfileRepo,
		c.CommissionEntryRepo,
		c.LinkService,
	)
	c.StatsService = service.NewStatsService(c.StatsRepo, c.CommissionEntryRepo, c.LinkService)
}
